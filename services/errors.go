package services

import (
	"errors"
	"fmt"
)

var (
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrInvalidMatch        = errors.New("winner and loser must be different players")
	ErrInvalidName         = errors.New("player name must not be empty")
	ErrInsufficientPlayers = errors.New("not enough players for pairing")
	ErrOddPlayerCount      = errors.New("odd number of players cannot be paired")
)

// storageErr tags a driver/transaction failure so callers can match both the
// category and the underlying error.
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
