// Package game implements the scoring engines behind every game on the
// scoreboard. A Session holds the full mutable state of one game; engines
// mutate it in response to Actions and never perform I/O.
package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrIllegalAction = errors.New("illegal action")
	ErrGameOver      = errors.New("game is over")
	ErrUnknownGame   = errors.New("unknown game")
)

type WinCondition string

const (
	Lowest  WinCondition = "lowest"
	Highest WinCondition = "highest"
)

type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"
)

// Stage is the sub-phase of a round for games that sweep the table more
// than once per round.
type Stage string

const (
	StageBid    Stage = "bid"
	StageResult Stage = "result"
)

// Info describes a registered game.
type Info struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Emoji        string       `json:"emoji"`
	Color        string       `json:"color"`
	ColorDark    string       `json:"colorDark"`
	Description  string       `json:"description"`
	MinPlayers   int          `json:"minPlayers"`
	MaxPlayers   int          `json:"maxPlayers"`
	WinCondition WinCondition `json:"winCondition"`
	TargetScore  int          `json:"targetScore,omitempty"`
}

// Player is a roster identity copied into a session at creation.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Cell is one filled box of a score grid. Crossed cells are worth zero.
type Cell struct {
	Value   int  `json:"value"`
	Crossed bool `json:"crossed,omitempty"`
}

// Entry is a scoring participant: a single player or a team sharing one
// score. Fields below Eliminated are only used by some rulesets.
type Entry struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Avatar     string   `json:"avatar,omitempty"`
	Color      string   `json:"color,omitempty"`
	Members    []Player `json:"members"`
	Member     int      `json:"member"`
	Base       int      `json:"base"`
	Score      int      `json:"score"`
	Eliminated bool     `json:"eliminated,omitempty"`

	Fails  int             `json:"fails,omitempty"`
	Opened bool            `json:"opened,omitempty"`
	Marks  map[string]int  `json:"marks,omitempty"`
	Cells  map[string]Cell `json:"cells,omitempty"`
	Filled int             `json:"filled,omitempty"`
	Bid    *int            `json:"bid,omitempty"`
	Won    *int            `json:"won,omitempty"`
	Bonus  int             `json:"bonus,omitempty"`
}

// IsTeam reports whether the entry aggregates several players.
func (e *Entry) IsTeam() bool { return len(e.Members) > 1 }

// Config holds the ruleset options chosen at setup. Each engine reads the
// fields it understands and ignores the rest.
type Config struct {
	StartScore       int    `json:"startScore,omitempty"`
	DoubleIn         bool   `json:"doubleIn,omitempty"`
	DoubleOut        bool   `json:"doubleOut,omitempty"`
	Variant          string `json:"variant,omitempty"`
	TeamSize         int    `json:"teamSize,omitempty"`
	TargetScore      int    `json:"targetScore,omitempty"`
	EliminationScore int    `json:"eliminationScore,omitempty"`
}

// FinalLap tracks the last lap granted to the other entries once one
// entry has reached the target.
type FinalLap struct {
	Trigger   int `json:"trigger"`
	Remaining int `json:"remaining"`
}

// Session is the full state of one game in progress. Entry order is the
// turn order and never changes after setup.
type Session struct {
	GameID     string    `json:"gameId"`
	Config     Config    `json:"config"`
	Entries    []Entry   `json:"entries"`
	Turn       int       `json:"turn"`
	Round      int       `json:"round"`
	Stage      Stage     `json:"stage,omitempty"`
	Phase      Phase     `json:"phase"`
	Targets    []string  `json:"targets,omitempty"`
	Throws     []Throw   `json:"throws,omitempty"`
	FinalLap   *FinalLap `json:"finalLap,omitempty"`
	History    []Record  `json:"history"`
	Checkpoint *Snapshot `json:"checkpoint,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
}

// Commit reports the outcome of an applied action.
type Commit struct {
	// Committed is false when the action was only buffered (a dart
	// before the third of the turn).
	Committed     bool    `json:"committed"`
	Record        *Record `json:"record,omitempty"`
	RoundComplete bool    `json:"roundComplete,omitempty"`
	// Result is set exactly once, by the commit that ended the game.
	Result *Result `json:"result,omitempty"`
}

// Engine is implemented by every game ruleset.
type Engine interface {
	Info() Info
	NewSession(cfg Config, players []Player) (*Session, error)
	Apply(s *Session, a Action) (Commit, error)
	Undo(s *Session) bool
	Result(s *Session) (*Result, bool)
}

// NewSession validates the player list against info and returns a session
// with one solo entry per player.
func NewSession(info Info, cfg Config, players []Player) (*Session, error) {
	if err := CheckPlayers(info, players); err != nil {
		return nil, err
	}
	entries := make([]Entry, len(players))
	for i, p := range players {
		entries[i] = SoloEntry(p)
	}
	return &Session{
		GameID:  info.ID,
		Config:  cfg,
		Entries: entries,
		Round:   1,
		Phase:   PhasePlaying,
		History: []Record{},
	}, nil
}

// CheckPlayers enforces the player count bounds and unique ids.
func CheckPlayers(info Info, players []Player) error {
	if len(players) < info.MinPlayers {
		return fmt.Errorf("%w: %s needs at least %d players", ErrInvalidInput, info.Name, info.MinPlayers)
	}
	if info.MaxPlayers > 0 && len(players) > info.MaxPlayers {
		return fmt.Errorf("%w: %s allows at most %d players", ErrInvalidInput, info.Name, info.MaxPlayers)
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.ID == "" {
			return fmt.Errorf("%w: player id is required", ErrInvalidInput)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: player %s listed twice", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// SoloEntry wraps a single player in an entry.
func SoloEntry(p Player) Entry {
	return Entry{
		ID:      p.ID,
		Name:    p.Name,
		Avatar:  p.Avatar,
		Color:   p.Color,
		Members: []Player{p},
	}
}

// SetBase sets every entry's starting score.
func (s *Session) SetBase(score int) {
	for i := range s.Entries {
		s.Entries[i].Base = score
		s.Entries[i].Score = score
	}
}

// CheckPlaying returns ErrGameOver once the session has ended.
func (s *Session) CheckPlaying() error {
	if s.Phase == PhaseOver {
		return ErrGameOver
	}
	return nil
}

// Index returns the position of the entry with the given id, or -1.
func (s *Session) Index(id string) int {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Required dereferences a mandatory numeric action field.
func Required(v *int, name string) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	return *v, nil
}

// Unsupported is returned for action kinds an engine does not handle.
func Unsupported(gameID string, k Kind) error {
	return fmt.Errorf("%w: %q is not an action of %s", ErrIllegalAction, k, gameID)
}
