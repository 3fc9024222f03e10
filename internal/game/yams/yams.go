// Package yams implements the Yams (Yahtzee) score grid.
package yams

import (
	"fmt"
	"slices"

	"github.com/playperu/scoreboard/internal/game"
)

const (
	UpperBonus     = 35
	UpperThreshold = 63
)

var (
	Upper = []string{"ones", "twos", "threes", "fours", "fives", "sixes"}
	Lower = []string{"three-of-a-kind", "four-of-a-kind", "full-house", "small-straight", "large-straight", "yams", "chance"}

	// Fixed cells accept only their value or a cross.
	Fixed = map[string]int{
		"full-house":     25,
		"small-straight": 30,
		"large-straight": 40,
		"yams":           50,
	}

	Cells = slices.Concat(Upper, Lower)
)

type Engine struct {
	info game.Info
}

func New() *Engine {
	return &Engine{info: game.Info{
		ID:           "yams",
		Name:         "Yams",
		Emoji:        "🎲",
		Color:        "#a855f7",
		ColorDark:    "#4a044e",
		Description:  "Dice • fill your grid of combinations",
		MinPlayers:   1,
		MaxPlayers:   6,
		WinCondition: game.Highest,
	}}
}

func (g *Engine) Info() game.Info { return g.info }

func (g *Engine) NewSession(cfg game.Config, players []game.Player) (*game.Session, error) {
	s, err := game.NewSession(g.info, cfg, players)
	if err != nil {
		return nil, err
	}
	for i := range s.Entries {
		s.Entries[i].Cells = make(map[string]game.Cell, len(Cells))
	}
	return s, nil
}

// Totals breaks down the grid of an entry.
type Totals struct {
	Upper int `json:"upper"`
	Bonus int `json:"bonus"`
	Lower int `json:"lower"`
	Total int `json:"total"`
}

func Sum(cells map[string]game.Cell) Totals {
	var t Totals
	for _, c := range Upper {
		t.Upper += cells[c].Value
	}
	if t.Upper >= UpperThreshold {
		t.Bonus = UpperBonus
	}
	for _, c := range Lower {
		t.Lower += cells[c].Value
	}
	t.Total = t.Upper + t.Bonus + t.Lower
	return t
}

func remaining(e *game.Entry) int { return len(Cells) - len(e.Cells) }

func (g *Engine) Apply(s *game.Session, a game.Action) (game.Commit, error) {
	if err := s.CheckPlaying(); err != nil {
		return game.Commit{}, err
	}
	if a.Kind != game.KindFill {
		return game.Commit{}, game.Unsupported(g.info.ID, a.Kind)
	}
	cell, err := parseCell(a)
	if err != nil {
		return game.Commit{}, err
	}
	e := s.Current()
	if _, ok := e.Cells[a.Cell]; ok {
		return game.Commit{}, fmt.Errorf("%w: %s is already filled", game.ErrIllegalAction, a.Cell)
	}

	s.SaveCheckpoint()
	i := s.Turn
	before := Sum(e.Cells)
	e.Cells[a.Cell] = cell
	e.Filled++
	after := Sum(e.Cells)

	var flags []game.Flag
	if cell.Crossed {
		flags = append(flags, game.FlagCrossed)
	}
	if before.Bonus == 0 && after.Bonus > 0 {
		flags = append(flags, game.FlagBonus)
	}
	rec := s.Append(game.Record{
		Actor:   e.ID,
		Action:  a,
		Changes: []game.Change{s.ApplyDelta(i, after.Total-before.Total)},
		Flags:   flags,
	})

	c := game.Commit{Committed: true, Record: rec}
	if g.over(s) {
		c.Result = game.Finish(s, g.info, game.Highest, len(Cells))
		return c, nil
	}
	c.RoundComplete = advance(s)
	return c, nil
}

func parseCell(a game.Action) (game.Cell, error) {
	if !slices.Contains(Cells, a.Cell) {
		return game.Cell{}, fmt.Errorf("%w: unknown cell %q", game.ErrInvalidInput, a.Cell)
	}
	if a.Cross {
		return game.Cell{Crossed: true}, nil
	}
	v, err := game.Required(a.Value, "value")
	if err != nil {
		return game.Cell{}, err
	}
	if fixed, ok := Fixed[a.Cell]; ok && v != fixed {
		return game.Cell{}, fmt.Errorf("%w: %s scores %d or is crossed", game.ErrInvalidInput, a.Cell, fixed)
	}
	if v < 0 {
		return game.Cell{}, fmt.Errorf("%w: value cannot be negative", game.ErrInvalidInput)
	}
	return game.Cell{Value: v}, nil
}

func (g *Engine) over(s *game.Session) bool {
	for i := range s.Entries {
		if remaining(&s.Entries[i]) > 0 {
			return false
		}
	}
	return true
}

// advance moves to the next entry that still owes cells this round. In
// round r every entry fills r cells; when nobody owes any, the round
// increments and the search restarts from the first unfinished entry.
func advance(s *game.Session) bool {
	n := len(s.Entries)
	for k := 1; k <= n; k++ {
		j := (s.Turn + k) % n
		e := &s.Entries[j]
		if e.Filled < s.Round && remaining(e) > 0 {
			s.Turn = j
			return false
		}
	}

	s.Round++
	for i := range s.Entries {
		s.Entries[i].Filled = 0
	}
	for i := range s.Entries {
		if remaining(&s.Entries[i]) > 0 {
			s.Turn = i
			break
		}
	}
	return true
}

func (g *Engine) Undo(s *game.Session) bool { return s.Undo() }

func (g *Engine) Result(s *game.Session) (*game.Result, bool) {
	if s.Phase != game.PhaseOver {
		return nil, false
	}
	return game.BuildResult(s, g.info, game.Highest, len(Cells)), true
}
