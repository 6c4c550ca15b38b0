package game

import (
	"errors"
	"time"
)

// ErrInsufficientFunds is returned by Ledger.Debit when the player's
// balance does not cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger is the coin-balance collaborator. The engine only calls it
// at room finalization, fire-and-forget, so ledger latency or failure
// never blocks the session loop.
type Ledger interface {
	Credit(playerID string, amount float64, reason string) error
	Debit(playerID string, amount float64, reason string) error
}

// GameResult is the permanent record handed to the archive when a
// room finishes with a winner.
type GameResult struct {
	RoomID        string
	WinnerID      string
	WinnerName    string
	CalledNumbers []int
	Patterns      []MatchedPattern
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Archive persists finished-game results.
type Archive interface {
	SaveResult(res GameResult) error
}
