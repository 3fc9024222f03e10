package darts

import (
	"fmt"
	"slices"

	"github.com/playperu/scoreboard/internal/game"
)

// X01 counts down from 301, 501 or 701; the first entry to reach exactly
// zero wins.
type X01 struct {
	info game.Info
}

func NewX01() *X01 {
	return &X01{info: game.Info{
		ID:           "darts301",
		Name:         "Darts 301",
		Emoji:        "🎯",
		Color:        "#ef4444",
		ColorDark:    "#7f1d1d",
		Description:  "Darts • 301 / 501 / 701 countdown to zero",
		MinPlayers:   2,
		MaxPlayers:   8,
		WinCondition: game.Lowest,
	}}
}

func (g *X01) Info() game.Info { return g.info }

func (g *X01) NewSession(cfg game.Config, players []game.Player) (*game.Session, error) {
	switch cfg.StartScore {
	case 0:
		cfg.StartScore = 301
	case 301, 501, 701:
	default:
		return nil, fmt.Errorf("%w: start score must be 301, 501 or 701", game.ErrInvalidInput)
	}
	s, err := newSession(g.info, cfg, players)
	if err != nil {
		return nil, err
	}
	s.SetBase(cfg.StartScore)
	for i := range s.Entries {
		s.Entries[i].Opened = !cfg.DoubleIn
	}
	return s, nil
}

func (g *X01) Apply(s *game.Session, a game.Action) (game.Commit, error) {
	if err := s.CheckPlaying(); err != nil {
		return game.Commit{}, err
	}
	switch a.Kind {
	case game.KindThrow:
		if a.Throw == nil {
			return game.Commit{}, fmt.Errorf("%w: throw is required", game.ErrInvalidInput)
		}
		if len(s.Throws) >= maxThrows {
			return game.Commit{}, fmt.Errorf("%w: three darts already thrown", game.ErrIllegalAction)
		}
		t, err := normalize(*a.Throw)
		if err != nil {
			return game.Commit{}, err
		}
		s.Throws = append(s.Throws, t)
		if len(s.Throws) < maxThrows {
			return game.Commit{}, nil
		}
		return g.commit(s, a), nil
	case game.KindCommit:
		if len(s.Throws) == 0 {
			return game.Commit{}, fmt.Errorf("%w: no dart thrown this turn", game.ErrIllegalAction)
		}
		return g.commit(s, a), nil
	default:
		return game.Commit{}, game.Unsupported(g.info.ID, a.Kind)
	}
}

// Remaining previews the score of the current entry after the buffered
// darts, ignoring bust rules.
func (g *X01) Remaining(s *game.Session) int {
	e := s.Current()
	total, _, _ := score(s.Throws, e.Opened)
	return e.Score - total
}

// score applies the double-in rule to throws and returns the counted total.
func score(throws []game.Throw, opened bool) (int, []game.Throw, bool) {
	out := slices.Clone(throws)
	total := 0
	for i := range out {
		if !opened {
			if !out[i].Ring.IsDouble() {
				out[i].DoubleInMiss = true
				out[i].Value = 0
				continue
			}
			opened = true
		}
		total += out[i].Value
	}
	return total, out, opened
}

func (g *X01) commit(s *game.Session, a game.Action) game.Commit {
	s.SaveCheckpoint()

	i := s.Turn
	e := &s.Entries[i]
	total, throws, opened := score(s.Throws, e.Opened)
	e.Opened = opened

	remaining := e.Score - total
	last := throws[len(throws)-1]
	bust := remaining < 0 ||
		(s.Config.DoubleOut && remaining == 1) ||
		(s.Config.DoubleOut && remaining == 0 && !last.Ring.IsDouble())

	var flags []game.Flag
	if slices.ContainsFunc(throws, func(t game.Throw) bool { return t.DoubleInMiss }) {
		flags = append(flags, game.FlagDoubleInMiss)
	}
	delta := -total
	switch {
	case bust:
		delta = 0
		flags = append(flags, game.FlagBust)
	case remaining == 0:
		flags = append(flags, game.FlagCheckout)
	}

	rec := s.Append(game.Record{
		Actor:   e.ID,
		Member:  member(e),
		Action:  a,
		Throws:  throws,
		Changes: []game.Change{s.ApplyDelta(i, delta)},
		Flags:   flags,
	})
	s.Throws = nil

	c := game.Commit{Committed: true, Record: rec}
	if !bust && remaining == 0 {
		c.Result = game.Finish(s, g.info, game.Lowest, len(s.History))
		return c
	}
	if s.Advance() {
		s.Round++
		c.RoundComplete = true
	}
	return c
}

func (g *X01) Undo(s *game.Session) bool { return s.Undo() }

func (g *X01) Result(s *game.Session) (*game.Result, bool) {
	if s.Phase != game.PhaseOver {
		return nil, false
	}
	return game.BuildResult(s, g.info, game.Lowest, len(s.History)), true
}
