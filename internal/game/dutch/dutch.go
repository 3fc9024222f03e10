// Package dutch implements the Dutch card game scoresheet: players collect
// round scores until they reach the elimination threshold, and the caller
// pays a penalty when someone undercuts them.
package dutch

import (
	"fmt"

	"github.com/playperu/scoreboard/internal/game"
)

const (
	DefaultElimination = 100
	MaxRoundScore      = 52
	CallerPenalty      = 10
)

type Engine struct {
	info game.Info
}

func New() *Engine {
	return &Engine{info: game.Info{
		ID:           "dutch",
		Name:         "Dutch",
		Emoji:        "🃏",
		Color:        "#0ea5e9",
		ColorDark:    "#0c4a6e",
		Description:  "Cards • as few points as possible",
		MinPlayers:   2,
		MaxPlayers:   6,
		WinCondition: game.Lowest,
		TargetScore:  DefaultElimination,
	}}
}

func (g *Engine) Info() game.Info { return g.info }

func (g *Engine) NewSession(cfg game.Config, players []game.Player) (*game.Session, error) {
	if cfg.EliminationScore == 0 {
		cfg.EliminationScore = DefaultElimination
	}
	if cfg.EliminationScore < 0 {
		return nil, fmt.Errorf("%w: elimination score must be positive", game.ErrInvalidInput)
	}
	return game.NewSession(g.info, cfg, players)
}

func (g *Engine) Apply(s *game.Session, a game.Action) (game.Commit, error) {
	if err := s.CheckPlaying(); err != nil {
		return game.Commit{}, err
	}
	if a.Kind != game.KindRound {
		return game.Commit{}, game.Unsupported(g.info.ID, a.Kind)
	}
	if err := g.validate(s, a); err != nil {
		return game.Commit{}, err
	}

	s.SaveCheckpoint()

	low := -1
	for _, v := range a.Scores {
		if low < 0 || v < low {
			low = v
		}
	}

	var flags []game.Flag
	var changes []game.Change
	for i := range s.Entries {
		e := &s.Entries[i]
		if e.Eliminated {
			continue
		}
		v := a.Scores[e.ID]
		if e.ID == a.Caller && v > low {
			v += CallerPenalty
			flags = game.AddFlag(flags, game.FlagCallerPenalty)
		}
		changes = append(changes, s.ApplyDelta(i, v))
		if e.Score >= s.Config.EliminationScore {
			e.Eliminated = true
			flags = game.AddFlag(flags, game.FlagEliminated)
		}
	}

	rec := s.Append(game.Record{
		Actor:   a.Caller,
		Action:  a,
		Changes: changes,
		Flags:   flags,
	})
	s.Round++

	c := game.Commit{Committed: true, Record: rec, RoundComplete: true}
	if s.Alive() <= 1 {
		c.Result = game.Finish(s, g.info, game.Lowest, s.Round-1)
		return c, nil
	}
	s.Advance()
	return c, nil
}

func (g *Engine) validate(s *game.Session, a game.Action) error {
	for id, v := range a.Scores {
		i := s.Index(id)
		if i < 0 {
			return fmt.Errorf("%w: unknown player %s", game.ErrInvalidInput, id)
		}
		if s.Entries[i].Eliminated {
			return fmt.Errorf("%w: %s is eliminated", game.ErrIllegalAction, s.Entries[i].Name)
		}
		if v < 0 || v > MaxRoundScore {
			return fmt.Errorf("%w: round score must be between 0 and %d", game.ErrInvalidInput, MaxRoundScore)
		}
	}
	for i := range s.Entries {
		e := &s.Entries[i]
		if _, ok := a.Scores[e.ID]; !ok && !e.Eliminated {
			return fmt.Errorf("%w: missing score for %s", game.ErrInvalidInput, e.Name)
		}
	}
	if a.Caller != "" {
		i := s.Index(a.Caller)
		if i < 0 || s.Entries[i].Eliminated {
			return fmt.Errorf("%w: caller must be a player still in the game", game.ErrInvalidInput)
		}
	}
	return nil
}

func (g *Engine) Undo(s *game.Session) bool { return s.Undo() }

func (g *Engine) Result(s *game.Session) (*game.Result, bool) {
	if s.Phase != game.PhaseOver {
		return nil, false
	}
	return game.BuildResult(s, g.info, game.Lowest, s.Round-1), true
}
