package services

import (
	"context"
	"fmt"

	"swiss-tournament/models"
)

// StandingsProvider is the read side the pairing engine depends on.
type StandingsProvider interface {
	Standings(ctx context.Context) ([]models.Standing, error)
}

// PairingService computes next-round Swiss pairings from the current
// standings. Pairings are never persisted; every call recomputes them.
type PairingService struct {
	Provider StandingsProvider
}

func NewPairingService(provider StandingsProvider) *PairingService {
	return &PairingService{Provider: provider}
}

// SwissPairings pairs each player with the neighbour directly below them in
// the standings.
func (ps *PairingService) SwissPairings(ctx context.Context) ([]models.Pairing, error) {
	standings, err := ps.Provider.Standings(ctx)
	if err != nil {
		return nil, err
	}
	return PairAdjacent(standings)
}

// PairAdjacent partitions an ordered standings list into consecutive pairs:
// pair k holds positions 2k and 2k+1. Odd counts are rejected instead of
// leaving the last player out.
func PairAdjacent(standings []models.Standing) ([]models.Pairing, error) {
	n := len(standings)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d registered", ErrInsufficientPlayers, n)
	}
	if n%2 != 0 {
		return nil, fmt.Errorf("%w: %d registered", ErrOddPlayerCount, n)
	}

	pairs := make([]models.Pairing, 0, n/2)
	for i := 0; i < n; i += 2 {
		p1 := standings[i]
		p2 := standings[i+1]

		pairs = append(pairs, models.Pairing{
			Player1ID:   p1.ID,
			Player1Name: p1.Name,
			Player2ID:   p2.ID,
			Player2Name: p2.Name,
			MatchNumber: i/2 + 1,
		})
	}
	return pairs, nil
}
