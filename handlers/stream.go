package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"swiss-tournament/models"
	"swiss-tournament/services"

	"github.com/gofiber/fiber/v2"
)

// StreamPollInterval is how often an open standings stream checks for changes.
var StreamPollInterval = 2 * time.Second

// streamStandings sends a "standings" event on connect and whenever the
// tournament revision changes. Idle ticks send a comment so dead clients are
// noticed on the next flush.
func streamStandings(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		ctx := c.UserContext()
		done := c.Context().Done()

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ticker := time.NewTicker(StreamPollInterval)
			defer ticker.Stop()
			streamLoop(ctx, w, svc, ticker.C, done)
		})

		return nil
	}
}

// streamLoop writes the first event immediately and then checks the revision
// on every tick until done is closed or a flush fails.
func streamLoop(ctx context.Context, w *bufio.Writer, svc *services.TournamentService, ticks <-chan time.Time, done <-chan struct{}) {
	var last models.Revision
	sent := false
	for {
		rev, err := svc.Revision(ctx)
		switch {
		case err != nil:
			log.Printf("[STANDINGS] Stream revision error: %v", err)
			w.WriteString(":\n\n")
		case !sent || rev != last:
			rows, err := svc.Standings(ctx)
			if err != nil {
				log.Printf("[STANDINGS] Stream query error: %v", err)
				w.WriteString(":\n\n")
				break
			}
			if err := writeStandingsEvent(w, rev, rows); err != nil {
				log.Printf("[STANDINGS] Stream encode error: %v", err)
				return
			}
			last, sent = rev, true
		default:
			w.WriteString(":\n\n")
		}

		if err := w.Flush(); err != nil {
			// Client disconnected
			return
		}

		select {
		case <-ticks:
		case <-done:
			return
		}
	}
}

func writeStandingsEvent(w io.Writer, rev models.Revision, rows []models.Standing) error {
	payload, err := json.Marshal(fiber.Map{"revision": rev, "standings": rows})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: standings\ndata: %s\n\n", payload)
	return err
}
