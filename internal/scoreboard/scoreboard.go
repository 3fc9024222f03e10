// Package scoreboard defines the account, roster and history types shared by
// the storage and HTTP layers, together with their validation rules.
package scoreboard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/playperu/scoreboard/internal/game"
)

var (
	ErrInvalid = errors.New("invalid")
	ErrExists  = errors.New("already exists")
)

const (
	MaxAccountName = 32
	MinAccountName = 2
	MaxPlayerName  = 24
	MaxAvatar      = 4
	MaxGameID      = 32
	PINLength      = 4

	DefaultAvatar = "😀"
	DefaultColor  = "#6366f1"

	// ReservedName cannot be registered; it identifies admin sessions.
	ReservedName = "admin"
)

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PINHash   string    `json:"pinHash"`
	CreatedAt time.Time `json:"createdAt"`
}

// AccountSummary is the admin view of an account.
type AccountSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Players   int       `json:"players"`
	Games     int       `json:"games"`
}

type Player struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Color     string    `json:"color"`
	Temp      bool      `json:"temp,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GamePlayer returns the identity copied into a game session.
func (p Player) GamePlayer() game.Player {
	return game.Player{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Color: p.Color}
}

// HistoryEntry is a finished game kept for an account.
type HistoryEntry struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	game.Result
	PlayedAt time.Time `json:"playedAt"`
}

// Stats summarises the history of one player.
type Stats struct {
	Played  int `json:"played"`
	Wins    int `json:"wins"`
	WinRate int `json:"winRate"`
}

var (
	accountNameRe = regexp.MustCompile(`(?i)^[a-z0-9 _\-àâéèêëîïôùûüç]+$`)
	colorRe       = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	fold          = cases.Fold()
)

// NameKey is the case-insensitive uniqueness key of an account or player name.
func NameKey(name string) string {
	return fold.String(strings.TrimSpace(name))
}

// truncate trims s and cuts it to at most n runes.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// AccountName validates and normalises a name chosen at registration.
func AccountName(name string) (string, error) {
	name = truncate(name, MaxAccountName)
	switch {
	case utf8.RuneCountInString(name) < MinAccountName:
		return "", fmt.Errorf("%w: name must be at least %d characters", ErrInvalid, MinAccountName)
	case NameKey(name) == ReservedName:
		return "", fmt.Errorf("%w: name is reserved", ErrInvalid)
	case !accountNameRe.MatchString(name):
		return "", fmt.Errorf("%w: name contains invalid characters", ErrInvalid)
	}
	return name, nil
}

// PIN keeps the digits of pin and requires exactly four of them.
func PIN(pin string) (string, error) {
	digits := make([]rune, 0, PINLength)
	for _, r := range pin {
		if r >= '0' && r <= '9' && len(digits) < PINLength {
			digits = append(digits, r)
		}
	}
	if len(digits) != PINLength {
		return "", fmt.Errorf("%w: PIN must be %d digits", ErrInvalid, PINLength)
	}
	return string(digits), nil
}

// PlayerInput is the editable part of a roster player.
type PlayerInput struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
	Temp   bool   `json:"temp"`
}

// Normalize applies the roster limits and defaults.
func (in PlayerInput) Normalize() (PlayerInput, error) {
	in.Name = truncate(in.Name, MaxPlayerName)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	in.Avatar = truncate(in.Avatar, MaxAvatar)
	if in.Avatar == "" {
		in.Avatar = DefaultAvatar
	}
	if !colorRe.MatchString(in.Color) {
		in.Color = DefaultColor
	}
	return in, nil
}

// CheckResult validates a result posted by hand and fills defaults.
func CheckResult(r *game.Result) error {
	r.GameID = strings.TrimSpace(r.GameID)
	if r.GameID == "" || len(r.GameID) > MaxGameID {
		return fmt.Errorf("%w: gameId must be 1 to %d characters", ErrInvalid, MaxGameID)
	}
	if len(r.Players) == 0 {
		return fmt.Errorf("%w: players are required", ErrInvalid)
	}
	switch r.WinCondition {
	case game.Lowest, game.Highest:
	case "":
		r.WinCondition = game.Highest
	default:
		return fmt.Errorf("%w: unknown win condition %q", ErrInvalid, r.WinCondition)
	}
	for _, p := range r.Players {
		if p.PlayerID == "" {
			return fmt.Errorf("%w: every player needs a playerId", ErrInvalid)
		}
	}
	r.Players = game.Rank(r.Players, r.WinCondition)
	return nil
}
