// Package skullking implements the Skull King bidding scoresheet.
//
// Each of the ten rounds deals as many cards as the round number. Every
// player first bids, then the table enters tricks won and bonus points; the
// round is scored once the last result is entered.
package skullking

import (
	"fmt"

	"github.com/playperu/scoreboard/internal/game"
)

const Rounds = 10

type Engine struct {
	info game.Info
}

func New() *Engine {
	return &Engine{info: game.Info{
		ID:           "skull-king",
		Name:         "Skull King",
		Emoji:        "💀",
		Color:        "#0ea5e9",
		ColorDark:    "#0c4a6e",
		Description:  "Cards • bid on your tricks, win big or sink",
		MinPlayers:   2,
		MaxPlayers:   8,
		WinCondition: game.Highest,
	}}
}

func (g *Engine) Info() game.Info { return g.info }

func (g *Engine) NewSession(cfg game.Config, players []game.Player) (*game.Session, error) {
	s, err := game.NewSession(g.info, cfg, players)
	if err != nil {
		return nil, err
	}
	s.Stage = game.StageBid
	return s, nil
}

// Score returns the points of one player for a round.
func Score(round, bid, won, bonus int) int {
	switch {
	case bid == 0 && won == 0:
		return 10 * round
	case bid == 0:
		return -10 * round
	case won == bid:
		return 20*bid + bonus
	default:
		return -10 * abs(won-bid)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (g *Engine) Apply(s *game.Session, a game.Action) (game.Commit, error) {
	if err := s.CheckPlaying(); err != nil {
		return game.Commit{}, err
	}
	switch {
	case a.Kind == game.KindBid && s.Stage == game.StageBid:
		bid, err := game.Required(a.Bid, "bid")
		if err != nil {
			return game.Commit{}, err
		}
		if bid < 0 || bid > s.Round {
			return game.Commit{}, fmt.Errorf("%w: bid must be between 0 and %d", game.ErrInvalidInput, s.Round)
		}
		return g.bid(s, a, bid), nil
	case a.Kind == game.KindResult && s.Stage == game.StageResult:
		won, err := game.Required(a.Won, "won")
		if err != nil {
			return game.Commit{}, err
		}
		if won < 0 || won > s.Round {
			return game.Commit{}, fmt.Errorf("%w: tricks won must be between 0 and %d", game.ErrInvalidInput, s.Round)
		}
		if a.Bonus < 0 {
			return game.Commit{}, fmt.Errorf("%w: bonus cannot be negative", game.ErrInvalidInput)
		}
		return g.result(s, a, won), nil
	case a.Kind == game.KindBid || a.Kind == game.KindResult:
		return game.Commit{}, fmt.Errorf("%w: waiting for %s entries", game.ErrIllegalAction, s.Stage)
	default:
		return game.Commit{}, game.Unsupported(g.info.ID, a.Kind)
	}
}

func (g *Engine) bid(s *game.Session, a game.Action, bid int) game.Commit {
	s.SaveCheckpoint()
	e := s.Current()
	e.Bid = &bid
	rec := s.Append(game.Record{Actor: e.ID, Action: a})

	s.Turn++
	if s.Turn == len(s.Entries) {
		s.Turn = 0
		s.Stage = game.StageResult
	}
	return game.Commit{Committed: true, Record: rec}
}

func (g *Engine) result(s *game.Session, a game.Action, won int) game.Commit {
	s.SaveCheckpoint()
	e := s.Current()
	e.Won = &won
	e.Bonus = a.Bonus

	r := game.Record{Actor: e.ID, Action: a}
	s.Turn++
	if s.Turn < len(s.Entries) {
		return game.Commit{Committed: true, Record: s.Append(r)}
	}

	for i := range s.Entries {
		p := &s.Entries[i]
		pts := Score(s.Round, *p.Bid, *p.Won, p.Bonus)
		if *p.Bid > 0 && *p.Won == *p.Bid && p.Bonus > 0 {
			r.Flags = game.AddFlag(r.Flags, game.FlagBonus)
		}
		r.Changes = append(r.Changes, s.ApplyDelta(i, pts))
	}
	c := game.Commit{Committed: true, Record: s.Append(r), RoundComplete: true}

	for i := range s.Entries {
		s.Entries[i].Bid, s.Entries[i].Won, s.Entries[i].Bonus = nil, nil, 0
	}
	s.Turn = 0
	if s.Round == Rounds {
		c.Result = game.Finish(s, g.info, game.Highest, Rounds)
		return c
	}
	s.Round++
	s.Stage = game.StageBid
	return c
}

func (g *Engine) Undo(s *game.Session) bool { return s.Undo() }

func (g *Engine) Result(s *game.Session) (*game.Result, bool) {
	if s.Phase != game.PhaseOver {
		return nil, false
	}
	return game.BuildResult(s, g.info, game.Highest, Rounds), true
}
