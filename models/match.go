package models

import "time"

// Match records a single reported result. Rows are append-only and are only
// removed by the purge operations (or by cascade when a player is deleted).
type Match struct {
	ID        uint      `gorm:"column:match_id;primaryKey;autoIncrement" json:"id"`
	WinnerID  uint      `gorm:"not null;index;check:chk_matches_distinct_players,winner_id <> loser_id" json:"winner_id"`
	LoserID   uint      `gorm:"not null;index" json:"loser_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Winner *Player `gorm:"foreignKey:WinnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Loser  *Player `gorm:"foreignKey:LoserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}
