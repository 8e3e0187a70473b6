package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swiss-tournament/middleware"
	"swiss-tournament/models"
	"swiss-tournament/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const testToken = "admin-token"

func newTestServices(t *testing.T) (*services.TournamentService, *services.PairingService) {
	t.Helper()

	db, err := services.OpenDatabase("sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenDatabase error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB error = %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate error = %v", err)
	}

	tournamentService := services.NewTournamentService(db)
	return tournamentService, services.NewPairingService(tournamentService)
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	tournamentService, pairingService := newTestServices(t)
	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware())
	SetupTournamentRoutes(app, tournamentService, pairingService, testToken)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}, authed bool) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal error = %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func register(t *testing.T, app *fiber.App, name string) models.Player {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/players", map[string]string{"name": name}, true)
	if status != http.StatusCreated {
		t.Fatalf("POST /players %q status = %d body=%s", name, status, body)
	}
	var p models.Player
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}
	return p
}

func TestRegisterPlayerRoute(t *testing.T) {
	app := newTestApp(t)

	p := register(t, app, "Ada Lovelace")
	if p.ID == 0 || p.Name != "Ada Lovelace" {
		t.Fatalf("registered player = %+v", p)
	}

	if status, _ := do(t, app, http.MethodPost, "/players", map[string]string{"name": "  "}, true); status != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/players", map[string]string{"name": "Bob"}, false); status != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", status)
	}

	status, body := do(t, app, http.MethodGet, "/players/count", nil, false)
	if status != http.StatusOK || !strings.Contains(string(body), `"count":1`) {
		t.Fatalf("GET /players/count = %d %s", status, body)
	}
}

func TestReportMatchRoute(t *testing.T) {
	app := newTestApp(t)
	a := register(t, app, "A")
	b := register(t, app, "B")

	cases := []struct {
		name string
		body map[string]uint
		want int
	}{
		{"missing ids", map[string]uint{"winner_id": a.ID}, http.StatusBadRequest},
		{"same player", map[string]uint{"winner_id": a.ID, "loser_id": a.ID}, http.StatusBadRequest},
		{"unknown player", map[string]uint{"winner_id": a.ID, "loser_id": b.ID + 50}, http.StatusNotFound},
		{"valid", map[string]uint{"winner_id": a.ID, "loser_id": b.ID}, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if status, body := do(t, app, http.MethodPost, "/matches", tc.body, true); status != tc.want {
				t.Fatalf("POST /matches status = %d, want %d (body=%s)", status, tc.want, body)
			}
		})
	}

	status, body := do(t, app, http.MethodGet, "/standings", nil, false)
	if status != http.StatusOK {
		t.Fatalf("GET /standings status = %d", status)
	}
	var resp struct {
		Standings []models.Standing `json:"standings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}
	want := []models.Standing{
		{ID: a.ID, Name: "A", Wins: 1, Matches: 1},
		{ID: b.ID, Name: "B", Wins: 0, Matches: 1},
	}
	if len(resp.Standings) != 2 || resp.Standings[0] != want[0] || resp.Standings[1] != want[1] {
		t.Fatalf("standings = %+v, want %+v", resp.Standings, want)
	}

	status, body = do(t, app, http.MethodGet, "/matches", nil, false)
	if status != http.StatusOK || !strings.Contains(string(body), `"count":1`) {
		t.Fatalf("GET /matches = %d %s", status, body)
	}
}

func TestPairingsRoute(t *testing.T) {
	app := newTestApp(t)

	if status, _ := do(t, app, http.MethodGet, "/pairings", nil, false); status != http.StatusConflict {
		t.Fatalf("pairings with no players status = %d, want 409", status)
	}

	for i := 1; i <= 3; i++ {
		register(t, app, fmt.Sprintf("P%d", i))
	}
	if status, body := do(t, app, http.MethodGet, "/pairings", nil, false); status != http.StatusConflict || !strings.Contains(string(body), "odd") {
		t.Fatalf("pairings with three players = %d %s, want 409 odd", status, body)
	}

	register(t, app, "P4")
	status, body := do(t, app, http.MethodGet, "/pairings", nil, false)
	if status != http.StatusOK {
		t.Fatalf("GET /pairings status = %d body=%s", status, body)
	}
	var resp struct {
		Pairings   []models.Pairing `json:"pairings"`
		TotalPairs int              `json:"total_pairs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}
	if resp.TotalPairs != 2 || resp.Pairings[0].Player1Name != "P1" || resp.Pairings[0].Player2Name != "P2" ||
		resp.Pairings[1].Player1Name != "P3" || resp.Pairings[1].Player2Name != "P4" {
		t.Fatalf("pairings = %+v", resp)
	}
}

func TestPurgeRoutes(t *testing.T) {
	app := newTestApp(t)
	a := register(t, app, "A")
	b := register(t, app, "B")
	do(t, app, http.MethodPost, "/matches", map[string]uint{"winner_id": a.ID, "loser_id": b.ID}, true)

	if status, _ := do(t, app, http.MethodDelete, "/matches", nil, false); status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated DELETE /matches status = %d, want 401", status)
	}
	if status, _ := do(t, app, http.MethodDelete, "/matches", nil, true); status != http.StatusNoContent {
		t.Fatalf("DELETE /matches status = %d, want 204", status)
	}
	_, body := do(t, app, http.MethodGet, "/standings", nil, false)
	if strings.Contains(string(body), `"wins":1`) || strings.Contains(string(body), `"matches":1`) {
		t.Fatalf("counters not reset: %s", body)
	}

	if status, _ := do(t, app, http.MethodDelete, "/players", nil, true); status != http.StatusNoContent {
		t.Fatalf("DELETE /players status = %d, want 204", status)
	}
	_, body = do(t, app, http.MethodGet, "/players/count", nil, false)
	if !strings.Contains(string(body), `"count":0`) {
		t.Fatalf("players remain after purge: %s", body)
	}
}

func TestSearchRoute(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Zoë Smith")
	register(t, app, "Bob Stone")

	status, body := do(t, app, http.MethodGet, "/players/search?q=zoe", nil, false)
	if status != http.StatusOK {
		t.Fatalf("GET /players/search status = %d", status)
	}
	var resp struct {
		Players []models.Player `json:"players"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}
	if len(resp.Players) != 1 || resp.Players[0].Slug != "zoe-smith" {
		t.Fatalf("search result = %+v", resp.Players)
	}
}

func TestWriteStandingsEvent(t *testing.T) {
	var buf bytes.Buffer
	rows := []models.Standing{{ID: 1, Name: "A", Wins: 1, Matches: 1}}
	if err := writeStandingsEvent(&buf, models.Revision{Players: 1, Matches: 1}, rows); err != nil {
		t.Fatalf("writeStandingsEvent error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "event: standings\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Fatalf("unexpected event framing: %q", out)
	}
	if !strings.Contains(out, `"name":"A"`) || !strings.Contains(out, `"players":1`) {
		t.Fatalf("event payload missing fields: %q", out)
	}
}

// chunkWriter hands every flushed chunk to the reading side of the test.
type chunkWriter chan string

func (c chunkWriter) Write(p []byte) (int, error) {
	c <- string(p)
	return len(p), nil
}

func nextChunk(t *testing.T, chunks chunkWriter) string {
	t.Helper()
	select {
	case chunk := <-chunks:
		return chunk
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for stream output")
		return ""
	}
}

func TestStreamLoopEmitsOnConnectAndOnChange(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	a, err := svc.RegisterPlayer(ctx, "A")
	if err != nil {
		t.Fatalf("RegisterPlayer error = %v", err)
	}
	b, err := svc.RegisterPlayer(ctx, "B")
	if err != nil {
		t.Fatalf("RegisterPlayer error = %v", err)
	}

	chunks := make(chunkWriter)
	ticks := make(chan time.Time)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		streamLoop(ctx, bufio.NewWriter(chunks), svc, ticks, done)
	}()

	first := nextChunk(t, chunks)
	if !strings.HasPrefix(first, "event: standings\n") || !strings.Contains(first, `"players":2`) {
		t.Fatalf("first chunk = %q, want standings event for 2 players", first)
	}

	for i := 0; i < 2; i++ {
		ticks <- time.Now()
		if idle := nextChunk(t, chunks); idle != ":\n\n" {
			t.Fatalf("idle tick %d wrote %q, want comment only", i, idle)
		}
	}

	if _, err := svc.ReportMatch(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("ReportMatch error = %v", err)
	}
	ticks <- time.Now()
	changed := nextChunk(t, chunks)
	if !strings.HasPrefix(changed, "event: standings\n") || !strings.Contains(changed, `"matches":1`) {
		t.Fatalf("chunk after report = %q, want standings event with 1 match", changed)
	}

	ticks <- time.Now()
	if idle := nextChunk(t, chunks); idle != ":\n\n" {
		t.Fatalf("tick after event wrote %q, want comment only", idle)
	}

	close(done)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("streamLoop did not return after done was closed")
	}
}
