package models

// Standing is one row of the standings view: (id, name, wins, matches).
type Standing struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Wins    int    `json:"wins"`
	Matches int    `json:"matches"`
}

// Pairing is one matchup for the next round. MatchNumber is 1-based and
// follows standings order.
type Pairing struct {
	Player1ID   uint   `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   uint   `json:"player2_id"`
	Player2Name string `json:"player2_name"`
	MatchNumber int    `json:"match_number"`
}

// Revision identifies a state of the tournament tables. Any registration,
// report or purge produces a different Revision.
type Revision struct {
	Players      int64 `json:"players"`
	Matches      int64 `json:"matches"`
	LastPlayerID uint  `json:"last_player_id"`
	LastMatchID  uint  `json:"last_match_id"`
}
