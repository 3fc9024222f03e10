package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/scoreboard"
)

var ErrNotFound = errors.New("not found")

// authSession is a bearer token bound to an account, or to the admin.
type authSession struct {
	Token     string
	AccountID string
	IsAdmin   bool
	ExpiresAt time.Time
}

// AdminStats is the response for GET /api/admin/stats.
type AdminStats struct {
	Accounts int `json:"accounts"`
	Players  int `json:"players"`
	Games    int `json:"games"`
	Sessions int `json:"sessions"`
}

type Store interface {
	AccountExists(ctx context.Context, name string) (bool, error)
	CreateAccount(ctx context.Context, name, pinHash string) (scoreboard.Account, error)
	AccountByName(ctx context.Context, name string) (scoreboard.Account, error)
	Account(ctx context.Context, id string) (scoreboard.Account, error)
	ListAccounts(ctx context.Context) ([]scoreboard.AccountSummary, error)
	DeleteAccount(ctx context.Context, id string) error

	CreateSession(ctx context.Context, accountID string, isAdmin bool, ttl time.Duration) (authSession, error)
	SessionFromToken(ctx context.Context, token string) (authSession, error)
	DeleteSession(ctx context.Context, token string) error
	// PurgeSessions removes expired sessions, of one account or of all
	// accounts when accountID is empty, and reports how many went away.
	PurgeSessions(ctx context.Context, accountID string) (int, error)

	ListPlayers(ctx context.Context, accountID string) ([]scoreboard.Player, error)
	// CreatePlayer returns the existing player together with
	// scoreboard.ErrExists when the name is already taken.
	CreatePlayer(ctx context.Context, accountID string, in scoreboard.PlayerInput) (scoreboard.Player, error)
	UpdatePlayer(ctx context.Context, accountID, id string, in scoreboard.PlayerInput) (scoreboard.Player, error)
	GetPlayer(ctx context.Context, accountID, id string) (scoreboard.Player, error)
	PlayersByID(ctx context.Context, accountID string, ids []string) ([]scoreboard.Player, error)
	DeletePlayer(ctx context.Context, accountID, id string) error

	ListHistory(ctx context.Context, accountID, gameID string, limit int) ([]scoreboard.HistoryEntry, error)
	AddHistory(ctx context.Context, accountID string, r game.Result) (scoreboard.HistoryEntry, error)
	DeleteHistory(ctx context.Context, accountID, id string) error

	AdminStats(ctx context.Context) (AdminStats, error)
}
