package darts

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/playperu/scoreboard/internal/game"
)

func newCricket(t *testing.T, variant string, n int) (*Cricket, *game.Session) {
	t.Helper()
	g := NewCricket()
	s, err := g.NewSession(game.Config{Variant: variant}, players(n))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return g, s
}

func TestCricketTargets(t *testing.T) {
	_, s := newCricket(t, "", 2)
	if !slices.Equal(s.Targets, classicTargets) {
		t.Errorf("targets = %v, want %v", s.Targets, classicTargets)
	}
	if s.Config.Variant != VariantClassic {
		t.Errorf("variant = %q, want classic", s.Config.Variant)
	}
	if _, err := NewCricket().NewSession(game.Config{Variant: "bogus"}, players(2)); !errors.Is(err, game.ErrInvalidInput) {
		t.Errorf("bogus variant err = %v, want ErrInvalidInput", err)
	}
}

func TestCricketRandomTargets(t *testing.T) {
	g := NewCricket(WithShuffle(rand.New(rand.NewPCG(1, 2)).Shuffle))
	s, err := g.NewSession(game.Config{Variant: VariantRandom}, players(2))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if len(s.Targets) != 7 || s.Targets[6] != bull {
		t.Fatalf("targets = %v, want 6 sectors and Bull", s.Targets)
	}
	prev := 21
	for _, tg := range s.Targets[:6] {
		n, err := strconv.Atoi(tg)
		if err != nil || n < 1 || n >= prev {
			t.Fatalf("targets = %v, want distinct sectors in descending order", s.Targets)
		}
		prev = n
	}

	var off int
	for n := 1; n <= 20; n++ {
		if !slices.Contains(s.Targets, strconv.Itoa(n)) {
			off = n
			break
		}
	}
	c := throwAll(t, g, s, dart(off, game.RingTriple), miss, miss)
	if th := c.Record.Throws[0]; th.Marks != 0 {
		t.Errorf("off-target dart marks = %d, want 0", th.Marks)
	}
}

func TestCricketClassicBonus(t *testing.T) {
	g, s := newCricket(t, VariantClassic, 2)
	a, b := &s.Entries[0], &s.Entries[1]

	c := throwAll(t, g, s, t20, s20, miss)
	if a.Marks["20"] != 3 || a.Score != 20 {
		t.Fatalf("A marks/score = %d/%d, want 3/20", a.Marks["20"], a.Score)
	}
	if !c.Record.Has(game.FlagClosed) || !c.Record.Has(game.FlagBonus) {
		t.Errorf("flags = %v, want closed and bonus", c.Record.Flags)
	}

	throwAll(t, g, s, s20, miss, miss)
	if b.Marks["20"] != 1 {
		t.Fatalf("B marks = %d, want 1", b.Marks["20"])
	}

	throwAll(t, g, s, s20, miss, miss)
	if a.Score != 40 {
		t.Errorf("A score = %d, want 40 while B has not closed", a.Score)
	}

	// B closes with one extra mark, but A already closed: no points.
	throwAll(t, g, s, t20, miss, miss)
	if b.Marks["20"] != 3 || b.Score != 0 {
		t.Errorf("B marks/score = %d/%d, want 3/0", b.Marks["20"], b.Score)
	}

	throwAll(t, g, s, t20, t20, t20)
	if a.Score != 40 {
		t.Errorf("A score = %d, want 40 once everyone closed", a.Score)
	}
	checkLedger(t, s)
}

func TestCricketClosingWithinTurn(t *testing.T) {
	tests := []struct {
		name  string
		darts []game.Action
		want  int
	}{
		{"exactly three over two darts", []game.Action{dart(19, game.RingSingle), dart(19, game.RingDouble), miss}, 0},
		{"third dart scores", []game.Action{dart(19, game.RingSingle), dart(19, game.RingDouble), dart(19, game.RingSingle)}, 19},
		{"double crosses the line", []game.Action{dart(18, game.RingDouble), dart(18, game.RingDouble), miss}, 18},
		{"triple then triple", []game.Action{dart(17, game.RingTriple), dart(17, game.RingTriple), miss}, 51},
		{"bull pair", []game.Action{dart(0, game.RingBull), dart(0, game.RingBull), miss}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newCricket(t, VariantClassic, 2)
			throwAll(t, g, s, tt.darts...)
			if got := s.Entries[0].Score; got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
			checkLedger(t, s)
		})
	}
}

func TestCricketCutThroat(t *testing.T) {
	g, s := newCricket(t, VariantCutThroat, 3)
	s.Entries[2].Marks["20"] = 3

	c := throwAll(t, g, s, t20, t20, miss)

	if got := s.Entries[0].Score; got != 0 {
		t.Errorf("thrower score = %d, want 0", got)
	}
	if got := s.Entries[1].Score; got != 60 {
		t.Errorf("open opponent score = %d, want 60", got)
	}
	if got := s.Entries[2].Score; got != 0 {
		t.Errorf("closed opponent score = %d, want 0", got)
	}
	if got := c.Record.Delta("p2"); got != 60 {
		t.Errorf("record delta for p2 = %d, want 60", got)
	}
	checkLedger(t, s)
}

func closeAllBut(s *game.Session, i int, target string, marks int) {
	for _, tg := range s.Targets {
		s.Entries[i].Marks[tg] = 3
	}
	s.Entries[i].Marks[target] = marks
}

func TestCricketWin(t *testing.T) {
	tests := []struct {
		name     string
		variant  string
		scores   [2]int
		wantOver bool
		wantWC   game.WinCondition
		winner   string
	}{
		{"classic leader closes", VariantClassic, [2]int{25, 0}, true, game.Highest, "p1"},
		{"classic trailer closes", VariantClassic, [2]int{0, 25}, false, "", ""},
		{"cutthroat low closes", VariantCutThroat, [2]int{0, 25}, true, game.Lowest, "p1"},
		{"cutthroat high closes", VariantCutThroat, [2]int{25, 0}, true, game.Lowest, "p2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newCricket(t, tt.variant, 2)
			closeAllBut(s, 0, bull, 2)
			for i, sc := range tt.scores {
				s.Entries[i].Base, s.Entries[i].Score = sc, sc
			}

			c := throwAll(t, g, s, dart(0, game.RingOuterBull), miss, miss)

			if got := c.Result != nil; got != tt.wantOver {
				t.Fatalf("game over = %v, want %v", got, tt.wantOver)
			}
			if !tt.wantOver {
				return
			}
			if c.Result.WinCondition != tt.wantWC || c.Result.Players[0].PlayerID != tt.winner {
				t.Errorf("result = %+v", c.Result)
			}
		})
	}
}

func TestCricketCutThroatClosedAcrossEntries(t *testing.T) {
	g, s := newCricket(t, VariantCutThroat, 2)
	for _, tg := range []string{"20", "19", "18", "17"} {
		s.Entries[0].Marks[tg] = 3
	}
	s.Entries[1].Marks["16"] = 3
	s.Entries[1].Marks["15"] = 3
	s.Entries[1].Marks[bull] = 2
	s.Entries[1].Base, s.Entries[1].Score = 30, 30
	s.Turn = 1

	c := throwAll(t, g, s, dart(0, game.RingOuterBull), miss, miss)

	if c.Result == nil {
		t.Fatalf("expected game over, phase = %q", s.Phase)
	}
	if c.Result.WinCondition != game.Lowest || c.Result.Players[0].PlayerID != "p1" {
		t.Errorf("result = %+v", c.Result)
	}
	checkLedger(t, s)
}

func TestCricketEverythingClosedEnds(t *testing.T) {
	g, s := newCricket(t, VariantClassic, 2)
	closeAllBut(s, 0, bull, 2)
	closeAllBut(s, 1, bull, 3)
	s.Entries[1].Base, s.Entries[1].Score = 100, 100

	c := throwAll(t, g, s, dart(0, game.RingOuterBull), miss, miss)

	if c.Result == nil {
		t.Fatal("expected game over once every target is closed by everyone")
	}
	if c.Result.Players[0].PlayerID != "p2" {
		t.Errorf("winner = %s, want p2", c.Result.Players[0].PlayerID)
	}
}

func TestCricketUndoRestoresMarks(t *testing.T) {
	g, s := newCricket(t, VariantClassic, 2)
	throwAll(t, g, s, t20, t20, t20)

	if !g.Undo(s) {
		t.Fatal("undo returned false")
	}
	if got := s.Entries[0].Marks["20"]; got != 0 {
		t.Errorf("marks = %d, want 0", got)
	}
	if got := s.Entries[0].Score; got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}
