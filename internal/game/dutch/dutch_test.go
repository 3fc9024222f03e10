package dutch

import (
	"errors"
	"testing"

	"github.com/playperu/scoreboard/internal/game"
)

func newGame(t *testing.T, threshold int, ids ...string) (*Engine, *game.Session) {
	t.Helper()
	var players []game.Player
	for _, id := range ids {
		players = append(players, game.Player{ID: id, Name: id})
	}
	g := New()
	s, err := g.NewSession(game.Config{EliminationScore: threshold}, players)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return g, s
}

func round(caller string, scores map[string]int) game.Action {
	return game.Action{Kind: game.KindRound, Caller: caller, Scores: scores}
}

func scores(s *game.Session) map[string]int {
	out := make(map[string]int)
	for _, e := range s.Entries {
		out[e.ID] = e.Score
	}
	return out
}

func TestCallerPenalty(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		want   map[string]int
		flag   bool
	}{
		{"caller undercut", "A", map[string]int{"A": 15, "B": 5, "C": 2}, true},
		{"caller lowest", "C", map[string]int{"A": 5, "B": 5, "C": 2}, false},
		{"no caller", "", map[string]int{"A": 5, "B": 5, "C": 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newGame(t, 0, "A", "B", "C")
			c, err := g.Apply(s, round(tt.caller, map[string]int{"A": 5, "B": 5, "C": 2}))
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			got := scores(s)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s = %d, want %d", id, got[id], want)
				}
			}
			if c.Record.Has(game.FlagCallerPenalty) != tt.flag {
				t.Errorf("flags = %v, want caller penalty %v", c.Record.Flags, tt.flag)
			}
			if c.Record.Delta("A") != got["A"] {
				t.Errorf("record delta = %d, want %d", c.Record.Delta("A"), got["A"])
			}
		})
	}
}

func TestTiedCallerNotPenalised(t *testing.T) {
	g, s := newGame(t, 0, "A", "B")
	if _, err := g.Apply(s, round("A", map[string]int{"A": 3, "B": 3})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := s.Entries[0].Score; got != 3 {
		t.Errorf("A = %d, want 3", got)
	}
}

func TestElimination(t *testing.T) {
	g, s := newGame(t, 20, "A", "B", "C")

	steps := []struct {
		action   game.Action
		wantErr  error
		wantOver bool
	}{
		{round("", map[string]int{"A": 19, "B": 0, "C": 0}), nil, false},
		{round("", map[string]int{"A": 1, "B": 10, "C": 0}), nil, false},
		{round("", map[string]int{"A": 0, "B": 0, "C": 0}), game.ErrIllegalAction, false},
		{round("", map[string]int{"C": 0}), game.ErrInvalidInput, false},
		{round("A", map[string]int{"B": 0, "C": 0}), game.ErrInvalidInput, false},
		{round("", map[string]int{"B": 10, "C": 4}), nil, true},
	}
	for i, st := range steps {
		c, err := g.Apply(s, st.action)
		if !errors.Is(err, st.wantErr) {
			t.Fatalf("step %d: err = %v, want %v", i, err, st.wantErr)
		}
		if got := c.Result != nil; got != st.wantOver {
			t.Fatalf("step %d: over = %v, want %v", i, got, st.wantOver)
		}
		if s.Phase == game.PhasePlaying && s.Entries[s.Turn].Eliminated {
			t.Fatalf("step %d: turn points at eliminated entry %d", i, s.Turn)
		}
	}

	if !s.Entries[0].Eliminated || !s.Entries[1].Eliminated || s.Entries[2].Eliminated {
		t.Errorf("eliminated = %v/%v/%v, want true/true/false",
			s.Entries[0].Eliminated, s.Entries[1].Eliminated, s.Entries[2].Eliminated)
	}
	r, ok := g.Result(s)
	if !ok {
		t.Fatal("Result() not available after game over")
	}
	if r.Players[0].PlayerID != "C" || r.Rounds != 3 || r.WinCondition != game.Lowest {
		t.Errorf("result = %+v", r)
	}
	for _, e := range s.Entries {
		if got := s.Tally(e.ID); got != e.Score {
			t.Errorf("%s: tally = %d, score = %d", e.ID, got, e.Score)
		}
	}
}

func TestRoundScoreRange(t *testing.T) {
	tests := []struct {
		name  string
		score int
		ok    bool
	}{
		{"zero", 0, true},
		{"max", MaxRoundScore, true},
		{"too high", MaxRoundScore + 1, false},
		{"negative", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newGame(t, 0, "A", "B")
			_, err := g.Apply(s, round("", map[string]int{"A": tt.score, "B": 0}))
			if (err == nil) != tt.ok {
				t.Errorf("err = %v, want ok %v", err, tt.ok)
			}
		})
	}
}

func TestUndoRound(t *testing.T) {
	g, s := newGame(t, 10, "A", "B", "C")
	if _, err := g.Apply(s, round("", map[string]int{"A": 12, "B": 1, "C": 1})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !s.Entries[0].Eliminated {
		t.Fatal("A should be eliminated")
	}
	g.Undo(s)
	if s.Entries[0].Eliminated || s.Entries[0].Score != 0 || s.Round != 1 {
		t.Errorf("after undo: eliminated %v score %d round %d", s.Entries[0].Eliminated, s.Entries[0].Score, s.Round)
	}
}
