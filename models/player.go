package models

import "time"

// Player is a registered entrant. Wins and Matches are denormalized counters
// maintained by match reporting; Matches is never lower than Wins.
type Player struct {
	ID        uint      `gorm:"column:player_id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Slug      string    `gorm:"type:text;index" json:"slug"`
	Wins      int       `gorm:"not null;default:0" json:"wins"`
	Matches   int       `gorm:"not null;default:0" json:"matches"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
