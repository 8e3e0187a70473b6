package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory SQLite database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenDatabase("sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenDatabase error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB error = %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate error = %v", err)
	}
	return db
}

func registerAll(t *testing.T, s *TournamentService, names ...string) []uint {
	t.Helper()
	ids := make([]uint, len(names))
	for i, name := range names {
		p, err := s.RegisterPlayer(context.Background(), name)
		if err != nil {
			t.Fatalf("RegisterPlayer(%q) error = %v", name, err)
		}
		ids[i] = p.ID
	}
	return ids
}

func standingsByID(t *testing.T, s *TournamentService) map[uint][2]int {
	t.Helper()
	standings, err := s.Standings(context.Background())
	if err != nil {
		t.Fatalf("Standings error = %v", err)
	}
	out := make(map[uint][2]int, len(standings))
	for _, st := range standings {
		out[st.ID] = [2]int{st.Wins, st.Matches}
	}
	return out
}
