package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"swiss-tournament/models"
	"swiss-tournament/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Uploader is the object store the snapshots are published to.
type Uploader interface {
	PutJSON(ctx context.Context, key string, body []byte) (string, error)
}

// SnapshotEntry is a standings row as published for external scoreboards.
type SnapshotEntry struct {
	Rank        int    `json:"rank"`
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Matches     int    `json:"matches"`
}

type Snapshot struct {
	TakenAt      time.Time        `json:"taken_at"`
	PlayerCount  int              `json:"player_count"`
	Standings    []SnapshotEntry  `json:"standings"`
	Pairings     []models.Pairing `json:"pairings,omitempty"`
	PairingError string           `json:"pairing_error,omitempty"`
}

// SnapshotWorker periodically publishes the standings and the next-round
// pairings to object storage.
type SnapshotWorker struct {
	Standings services.StandingsProvider
	Uploader  Uploader
	Now       func() time.Time
}

func NewSnapshotWorker(standings services.StandingsProvider, uploader Uploader) *SnapshotWorker {
	return &SnapshotWorker{
		Standings: standings,
		Uploader:  uploader,
		Now:       time.Now,
	}
}

// Build reads the current standings and derives the pairings from them. A
// player count that cannot be paired is recorded in PairingError rather than
// failing the snapshot.
func (w *SnapshotWorker) Build(ctx context.Context) (*Snapshot, error) {
	standings, err := w.Standings.Standings(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TakenAt:     w.Now().UTC(),
		PlayerCount: len(standings),
		Standings:   make([]SnapshotEntry, len(standings)),
	}
	for i, st := range standings {
		snap.Standings[i] = SnapshotEntry{
			Rank:        i + 1,
			ID:          st.ID,
			Name:        st.Name,
			DisplayName: models.ASCIIName(st.Name),
			Wins:        st.Wins,
			Matches:     st.Matches,
		}
	}

	pairs, err := services.PairAdjacent(standings)
	switch {
	case err == nil:
		snap.Pairings = pairs
	case errors.Is(err, services.ErrInsufficientPlayers), errors.Is(err, services.ErrOddPlayerCount):
		snap.PairingError = err.Error()
	default:
		return nil, err
	}
	return snap, nil
}

// RunOnce builds and uploads a single snapshot, returning its public URL.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (string, error) {
	snap, err := w.Build(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build snapshot: %w", err)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	url, err := w.Uploader.PutJSON(ctx, SnapshotKey(snap.TakenAt), body)
	if err != nil {
		return "", err
	}
	return url, nil
}

// SnapshotKey lays snapshots out per day; the uuid keeps keys unique when two
// snapshots land in the same second.
func SnapshotKey(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("snapshots/%s/%d-%s.json", at.Format("2006-01-02"), at.Unix(), uuid.NewString())
}

// Start schedules RunOnce every interval until ctx is cancelled. Failures are
// logged and never stop the schedule.
func (w *SnapshotWorker) Start(ctx context.Context, interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			url, err := w.RunOnce(ctx)
			if err != nil {
				log.Printf("❌ [SNAPSHOT] %v", err)
				return
			}
			log.Printf("✅ [SNAPSHOT] Published standings to %s", url)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[SNAPSHOT] Scheduler shutdown error: %v", err)
		}
	}()
	return nil
}
