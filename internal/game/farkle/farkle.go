// Package farkle implements Farkle with manual round entry.
package farkle

import (
	"fmt"

	"github.com/playperu/scoreboard/internal/game"
)

const (
	DefaultTarget = 10000
	MinTarget     = 500
	Penalty       = 1000
	maxFails      = 3
)

type Engine struct {
	info game.Info
}

func New() *Engine {
	return &Engine{info: game.Info{
		ID:           "farkle",
		Name:         "Farkle",
		Emoji:        "🎲",
		Color:        "#f97316",
		ColorDark:    "#7c2d06",
		Description:  "Dice • manual entry • any number of players",
		MinPlayers:   2,
		MaxPlayers:   20,
		WinCondition: game.Highest,
		TargetScore:  DefaultTarget,
	}}
}

func (g *Engine) Info() game.Info { return g.info }

func (g *Engine) NewSession(cfg game.Config, players []game.Player) (*game.Session, error) {
	if cfg.TargetScore == 0 {
		cfg.TargetScore = DefaultTarget
	}
	cfg.TargetScore = max(cfg.TargetScore, MinTarget)
	return game.NewSession(g.info, cfg, players)
}

func (g *Engine) Apply(s *game.Session, a game.Action) (game.Commit, error) {
	if err := s.CheckPlaying(); err != nil {
		return game.Commit{}, err
	}
	points, err := game.Required(a.Points, "points")
	if err != nil {
		return game.Commit{}, err
	}
	if points < 0 {
		return game.Commit{}, fmt.Errorf("%w: points cannot be negative", game.ErrInvalidInput)
	}

	switch a.Kind {
	case game.KindHotHand:
		if points == 0 {
			return game.Commit{}, fmt.Errorf("%w: a hot hand needs points", game.ErrInvalidInput)
		}
		return g.hotHand(s, a, points), nil
	case game.KindScore:
		return g.endTurn(s, a, points), nil
	default:
		return game.Commit{}, game.Unsupported(g.info.ID, a.Kind)
	}
}

// hotHand banks points and keeps the turn with the same entry.
func (g *Engine) hotHand(s *game.Session, a game.Action, points int) game.Commit {
	s.SaveCheckpoint()
	i := s.Turn
	e := &s.Entries[i]
	e.Fails = 0
	rec := s.Append(game.Record{
		Actor:   e.ID,
		Action:  a,
		Changes: []game.Change{s.ApplyDelta(i, points)},
		Flags:   []game.Flag{game.FlagHotHand},
	})
	return game.Commit{Committed: true, Record: rec}
}

func (g *Engine) endTurn(s *game.Session, a game.Action, points int) game.Commit {
	s.SaveCheckpoint()
	i := s.Turn
	e := &s.Entries[i]

	var flags []game.Flag
	delta := points
	if points == 0 {
		e.Fails++
		flags = append(flags, game.FlagFarkle)
		if e.Fails >= maxFails {
			delta = -Penalty
			e.Fails = 0
			flags = append(flags, game.FlagPenalty)
		}
	} else {
		e.Fails = 0
	}
	change := s.ApplyDelta(i, delta)

	c := game.Commit{Committed: true}
	over := false
	switch {
	case s.FinalLap == nil && e.Score >= s.Config.TargetScore:
		s.FinalLap = &game.FinalLap{Trigger: i, Remaining: len(s.Entries) - 1}
		flags = append(flags, game.FlagFinalLap)
	case s.FinalLap != nil:
		s.FinalLap.Remaining--
		over = s.FinalLap.Remaining <= 0
	}

	c.Record = s.Append(game.Record{
		Actor:   e.ID,
		Action:  a,
		Changes: []game.Change{change},
		Flags:   flags,
	})
	if !over && s.Advance() {
		s.Round++
		c.RoundComplete = true
	}
	if over || (s.FinalLap != nil && s.Turn == s.FinalLap.Trigger) {
		c.Result = game.Finish(s, g.info, game.Highest, s.Round)
	}
	return c
}

func (g *Engine) Undo(s *game.Session) bool { return s.Undo() }

func (g *Engine) Result(s *game.Session) (*game.Result, bool) {
	if s.Phase != game.PhaseOver {
		return nil, false
	}
	return game.BuildResult(s, g.info, game.Highest, s.Round), true
}
