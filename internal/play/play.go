// Package play runs the live game sessions of every account. It wires the
// scoring engines to the roster, the history and a session store so an
// interrupted game can be resumed exactly where it stopped.
package play

import (
	"context"
	"errors"

	"github.com/playperu/scoreboard/internal/game"
)

var (
	ErrNoSession     = errors.New("no game in progress")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Blob is the persisted form of a live session. Unrecorded holds finished
// games whose result the history refused; they are retried whenever the
// blob is loaded again and survive the session itself.
type Blob struct {
	GameID        string        `json:"gameId,omitempty"`
	Session       *game.Session `json:"session"`
	TempPlayerIDs []string      `json:"tempIds,omitempty"`
	Unrecorded    []game.Result `json:"unrecorded,omitempty"`
}

// SessionStore keeps one saved session per account. Load returns
// ErrNoSession when nothing is saved.
type SessionStore interface {
	Save(ctx context.Context, accountID string, data []byte) error
	Load(ctx context.Context, accountID string) ([]byte, error)
	Clear(ctx context.Context, accountID string) error
}

// Roster resolves the players of an account.
type Roster interface {
	// GamePlayers returns the players with the given ids in the same order,
	// or ErrUnknownPlayer.
	GamePlayers(ctx context.Context, accountID string, ids []string) ([]game.Player, error)
	DeletePlayer(ctx context.Context, accountID, id string) error
}

// HistorySink receives every finished game exactly once.
type HistorySink interface {
	RecordResult(ctx context.Context, accountID string, r game.Result) error
}

// StartRequest describes a new game.
type StartRequest struct {
	GameID        string      `json:"gameId"`
	PlayerIDs     []string    `json:"playerIds"`
	TempPlayerIDs []string    `json:"tempPlayerIds,omitempty"`
	Config        game.Config `json:"config"`
}

// View is the state of a live session as shown to clients.
type View struct {
	Game          game.Info     `json:"game"`
	Session       *game.Session `json:"session"`
	Status        game.Status   `json:"status"`
	CanUndo       bool          `json:"canUndo"`
	TempPlayerIDs []string      `json:"tempPlayerIds,omitempty"`
}

// Outcome is returned after an action. Once Commit.Result is set the
// session is no longer live and View shows its final state.
type Outcome struct {
	View   View        `json:"view"`
	Commit game.Commit `json:"commit"`
}
