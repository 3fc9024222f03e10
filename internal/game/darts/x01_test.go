package darts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/playperu/scoreboard/internal/game"
)

func players(n int) []game.Player {
	out := make([]game.Player, n)
	for i := range out {
		out[i] = game.Player{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
	}
	return out
}

func dart(sector int, ring game.Ring) game.Action {
	return game.Action{Kind: game.KindThrow, Throw: &game.Throw{Sector: sector, Ring: ring}}
}

var (
	s20  = dart(20, game.RingSingle)
	t20  = dart(20, game.RingTriple)
	miss = dart(0, game.RingMiss)
)

// throwAll applies the darts and returns the last commit.
func throwAll(t *testing.T, e game.Engine, s *game.Session, darts ...game.Action) game.Commit {
	t.Helper()
	var c game.Commit
	for _, d := range darts {
		var err error
		c, err = e.Apply(s, d)
		if err != nil {
			t.Fatalf("Apply(%+v): %v", d.Throw, err)
		}
	}
	return c
}

func checkLedger(t *testing.T, s *game.Session) {
	t.Helper()
	for _, e := range s.Entries {
		if got := s.Tally(e.ID); got != e.Score {
			t.Errorf("%s: tally = %d, score = %d", e.ID, got, e.Score)
		}
	}
}

func newX01(t *testing.T, cfg game.Config, n int) (*X01, *game.Session) {
	t.Helper()
	g := NewX01()
	s, err := g.NewSession(cfg, players(n))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return g, s
}

func TestX01StartScore(t *testing.T) {
	tests := []struct {
		start   int
		want    int
		wantErr bool
	}{
		{0, 301, false},
		{301, 301, false},
		{501, 501, false},
		{701, 701, false},
		{400, 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.start), func(t *testing.T) {
			s, err := NewX01().NewSession(game.Config{StartScore: tt.start}, players(2))
			if tt.wantErr {
				if !errors.Is(err, game.ErrInvalidInput) {
					t.Fatalf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSession: %v", err)
			}
			if got := s.Entries[1].Score; got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestX01BustLeavesScore(t *testing.T) {
	g, s := newX01(t, game.Config{DoubleOut: true}, 2)
	s.Entries[0].Score = 40

	c := throwAll(t, g, s, s20, s20, s20)

	if !c.Committed || !c.Record.Has(game.FlagBust) {
		t.Fatalf("commit = %+v, want committed bust", c)
	}
	if got := s.Entries[0].Score; got != 40 {
		t.Errorf("score = %d, want 40", got)
	}
	if s.Turn != 1 {
		t.Errorf("turn = %d, want 1", s.Turn)
	}
}

func TestX01DoubleOut(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		darts     []game.Action
		wantBust  bool
		wantScore int
	}{
		{"finish on double", 40, []game.Action{dart(20, game.RingDouble)}, false, 0},
		{"finish on bull", 50, []game.Action{dart(0, game.RingBull)}, false, 0},
		{"finish on single", 20, []game.Action{s20}, true, 20},
		{"leave one", 21, []game.Action{s20}, true, 21},
		{"below zero", 10, []game.Action{s20}, true, 10},
		{"leave two", 22, []game.Action{s20}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newX01(t, game.Config{DoubleOut: true}, 2)
			s.Entries[0].Score = tt.remaining
			throwAll(t, g, s, tt.darts...)
			c, err := g.Apply(s, game.Action{Kind: game.KindCommit})
			if err != nil {
				t.Fatalf("commit: %v", err)
			}
			if got := c.Record.Has(game.FlagBust); got != tt.wantBust {
				t.Errorf("bust = %v, want %v", got, tt.wantBust)
			}
			if got := s.Entries[0].Score; got != tt.wantScore {
				t.Errorf("score = %d, want %d", got, tt.wantScore)
			}
			if (tt.wantScore == 0) != (c.Result != nil) {
				t.Errorf("result = %v, want game over %v", c.Result, tt.wantScore == 0)
			}
		})
	}
}

func TestX01DoubleIn(t *testing.T) {
	g, s := newX01(t, game.Config{DoubleIn: true}, 2)

	c := throwAll(t, g, s, s20, dart(10, game.RingDouble), dart(5, game.RingSingle))

	if got := s.Entries[0].Score; got != 301-25 {
		t.Errorf("score = %d, want %d", got, 301-25)
	}
	if !c.Record.Has(game.FlagDoubleInMiss) {
		t.Error("missing double-in flag")
	}
	if th := c.Record.Throws[0]; !th.DoubleInMiss || th.Value != 0 {
		t.Errorf("first dart = %+v, want zero-valued double-in miss", th)
	}
	if !s.Entries[0].Opened || s.Entries[1].Opened {
		t.Errorf("opened = %v/%v, want true/false", s.Entries[0].Opened, s.Entries[1].Opened)
	}
	checkLedger(t, s)
}

func TestX01FullGame(t *testing.T) {
	g, s := newX01(t, game.Config{}, 2)

	throwAll(t, g, s, t20, t20, t20)
	throwAll(t, g, s, miss, miss, miss)
	c := throwAll(t, g, s, t20, dart(19, game.RingTriple), dart(2, game.RingDouble))

	if c.Result == nil {
		t.Fatal("expected game over")
	}
	if c.Result.WinCondition != game.Lowest || c.Result.Rounds != 3 {
		t.Errorf("result = %+v", c.Result)
	}
	if w := c.Result.Players[0]; w.PlayerID != "p1" || w.FinalScore != 0 || w.Rank != 1 {
		t.Errorf("winner = %+v, want p1 at 0", w)
	}
	if _, err := g.Apply(s, s20); !errors.Is(err, game.ErrGameOver) {
		t.Errorf("throw after end err = %v, want ErrGameOver", err)
	}
	if r, ok := g.Result(s); !ok || r.Players[1].FinalScore != 301 {
		t.Errorf("Result() = %+v, %v", r, ok)
	}
	checkLedger(t, s)
}

func TestX01Undo(t *testing.T) {
	g, s := newX01(t, game.Config{}, 2)

	throwAll(t, g, s, s20, s20)
	if !g.Undo(s) || len(s.Throws) != 1 {
		t.Fatalf("throws after undo = %d, want 1", len(s.Throws))
	}
	g.Undo(s)
	if g.Undo(s) {
		t.Fatal("undo with empty turn and no checkpoint should be a no-op")
	}

	throwAll(t, g, s, t20, t20, t20)
	if s.Entries[0].Score != 121 || s.Turn != 1 {
		t.Fatalf("score/turn = %d/%d, want 121/1", s.Entries[0].Score, s.Turn)
	}
	if !g.Undo(s) {
		t.Fatal("undo of committed turn returned false")
	}
	if s.Entries[0].Score != 301 || s.Turn != 0 || len(s.History) != 0 || len(s.Throws) != 0 {
		t.Errorf("after undo: score %d turn %d history %d throws %d",
			s.Entries[0].Score, s.Turn, len(s.History), len(s.Throws))
	}
}

func TestX01InvalidActions(t *testing.T) {
	tests := []struct {
		name   string
		action game.Action
		want   error
	}{
		{"sector too high", dart(21, game.RingDouble), game.ErrInvalidInput},
		{"sector zero", dart(0, game.RingSingle), game.ErrInvalidInput},
		{"unknown ring", dart(5, "quadruple"), game.ErrInvalidInput},
		{"missing throw", game.Action{Kind: game.KindThrow}, game.ErrInvalidInput},
		{"empty commit", game.Action{Kind: game.KindCommit}, game.ErrIllegalAction},
		{"wrong game", game.Action{Kind: game.KindBid}, game.ErrIllegalAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newX01(t, game.Config{}, 2)
			if _, err := g.Apply(s, tt.action); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(s.History) != 0 || len(s.Throws) != 0 {
				t.Error("rejected action mutated the session")
			}
		})
	}
}

func TestX01Teams(t *testing.T) {
	g, s := newX01(t, game.Config{TeamSize: 2}, 4)

	if len(s.Entries) != 2 || s.Entries[0].ID != "team1" || len(s.Entries[1].Members) != 2 {
		t.Fatalf("entries = %+v", s.Entries)
	}

	var members []string
	for range 3 {
		c := throwAll(t, g, s, miss, miss, miss)
		members = append(members, c.Record.Member)
	}
	if got := fmt.Sprint(members); got != "[p1 p3 p2]" {
		t.Errorf("throwing order = %s, want [p1 p3 p2]", got)
	}
}

func TestX01TeamSizes(t *testing.T) {
	tests := []struct {
		players, size int
		wantErr       bool
	}{
		{4, 2, false},
		{6, 3, false},
		{8, 4, false},
		{5, 2, true},
		{3, 3, true},
		{8, 5, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d by %d", tt.players, tt.size), func(t *testing.T) {
			_, err := NewX01().NewSession(game.Config{TeamSize: tt.size}, players(tt.players))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
