package darts

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/playperu/scoreboard/internal/game"
)

const (
	VariantClassic   = "classic"
	VariantCutThroat = "cutthroat"
	VariantRandom    = "random"

	bull       = "Bull"
	closeMarks = 3
)

var classicTargets = []string{"20", "19", "18", "17", "16", "15", bull}

// Cricket is played on a set of targets that each need three marks to
// close. Classic and random score for the thrower; cut-throat scores
// against the opponents and the lowest total wins.
type Cricket struct {
	info    game.Info
	shuffle func(n int, swap func(i, j int))
}

type CricketOption func(*Cricket)

// WithShuffle replaces the shuffler used to draw random targets.
func WithShuffle(fn func(n int, swap func(i, j int))) CricketOption {
	return func(c *Cricket) { c.shuffle = fn }
}

func NewCricket(opts ...CricketOption) *Cricket {
	c := &Cricket{
		info: game.Info{
			ID:           "dartscricket",
			Name:         "Cricket",
			Emoji:        "🎯",
			Color:        "#14b8a6",
			ColorDark:    "#134e4a",
			Description:  "Darts • classic, cut-throat or random Cricket",
			MinPlayers:   2,
			MaxPlayers:   8,
			WinCondition: game.Highest,
		},
		shuffle: rand.Shuffle,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (g *Cricket) Info() game.Info { return g.info }

func (g *Cricket) NewSession(cfg game.Config, players []game.Player) (*game.Session, error) {
	switch cfg.Variant {
	case "":
		cfg.Variant = VariantClassic
	case VariantClassic, VariantCutThroat, VariantRandom:
	default:
		return nil, fmt.Errorf("%w: unknown cricket variant %q", game.ErrInvalidInput, cfg.Variant)
	}
	s, err := newSession(g.info, cfg, players)
	if err != nil {
		return nil, err
	}
	s.Targets = slices.Clone(classicTargets)
	if cfg.Variant == VariantRandom {
		s.Targets = g.randomTargets()
	}
	for i := range s.Entries {
		s.Entries[i].Marks = make(map[string]int, len(s.Targets))
		for _, t := range s.Targets {
			s.Entries[i].Marks[t] = 0
		}
	}
	return s, nil
}

// randomTargets draws six distinct sectors, highest first, plus the bull.
func (g *Cricket) randomTargets() []string {
	pool := make([]int, 20)
	for i := range pool {
		pool[i] = i + 1
	}
	g.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	picked := pool[:6]
	slices.SortFunc(picked, func(a, b int) int { return b - a })

	out := make([]string, 0, 7)
	for _, n := range picked {
		out = append(out, strconv.Itoa(n))
	}
	return append(out, bull)
}

func (g *Cricket) Apply(s *game.Session, a game.Action) (game.Commit, error) {
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
		t.Target, t.Marks = touches(s.Targets, t)
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

// touches returns the target hit and its number of marks. Darts outside
// the target set score no marks.
func touches(targets []string, t game.Throw) (string, int) {
	var target string
	var marks int
	switch t.Ring {
	case game.RingSingle:
		target, marks = strconv.Itoa(t.Sector), 1
	case game.RingDouble:
		target, marks = strconv.Itoa(t.Sector), 2
	case game.RingTriple:
		target, marks = strconv.Itoa(t.Sector), 3
	case game.RingOuterBull:
		target, marks = bull, 1
	case game.RingBull:
		target, marks = bull, 2
	default:
		return "", 0
	}
	if !slices.Contains(targets, target) {
		return target, 0
	}
	return target, marks
}

func targetValue(target string) int {
	if target == bull {
		return 25
	}
	n, _ := strconv.Atoi(target)
	return n
}

func closedByAll(s *game.Session, target string) bool {
	for i := range s.Entries {
		if s.Entries[i].Marks[target] < closeMarks {
			return false
		}
	}
	return true
}

func closedByOthers(s *game.Session, self int, target string) bool {
	for i := range s.Entries {
		if i != self && s.Entries[i].Marks[target] < closeMarks {
			return false
		}
	}
	return true
}

func (g *Cricket) commit(s *game.Session, a game.Action) game.Commit {
	s.SaveCheckpoint()

	i := s.Turn
	e := &s.Entries[i]
	throws := slices.Clone(s.Throws)
	cutThroat := s.Config.Variant == VariantCutThroat
	deltas := make([]int, len(s.Entries))
	var flags []game.Flag

	for _, t := range throws {
		if t.Marks == 0 || closedByAll(s, t.Target) {
			continue
		}
		prev := e.Marks[t.Target]
		next := prev + t.Marks
		e.Marks[t.Target] = min(next, closeMarks)
		if prev < closeMarks && next >= closeMarks {
			flags = game.AddFlag(flags, game.FlagClosed)
		}
		extra := next - max(prev, closeMarks)
		if extra <= 0 {
			continue
		}
		points := extra * targetValue(t.Target)
		if cutThroat {
			for j := range s.Entries {
				if j != i && s.Entries[j].Marks[t.Target] < closeMarks {
					deltas[j] += points
				}
			}
			continue
		}
		if !closedByOthers(s, i, t.Target) {
			deltas[i] += points
		}
	}

	changes := []game.Change{s.ApplyDelta(i, deltas[i])}
	for j, d := range deltas {
		if j != i && d != 0 {
			changes = append(changes, s.ApplyDelta(j, d))
		}
	}
	if slices.ContainsFunc(deltas, func(d int) bool { return d != 0 }) {
		flags = append(flags, game.FlagBonus)
	}

	rec := s.Append(game.Record{
		Actor:   e.ID,
		Member:  member(e),
		Action:  a,
		Throws:  throws,
		Changes: changes,
		Flags:   flags,
	})
	s.Throws = nil

	c := game.Commit{Committed: true, Record: rec}
	if g.won(s) {
		c.Result = game.Finish(s, g.info, winCondition(s), len(s.History))
		return c
	}
	if s.Advance() {
		s.Round++
		c.RoundComplete = true
	}
	return c
}

// won reports whether the game is decided. Cut-throat ends once every
// target has been closed by some entry. Classic needs an entry that has
// closed every target while leading on points, or every target closed by
// everyone.
func (g *Cricket) won(s *game.Session) bool {
	if s.Config.Variant == VariantCutThroat {
		return closedBySomeone(s)
	}
	for i := range s.Entries {
		e := &s.Entries[i]
		if !closedAll(s, e) {
			continue
		}
		leads := true
		for j := range s.Entries {
			if j == i {
				continue
			}
			if s.Entries[j].Score > e.Score {
				leads = false
				break
			}
		}
		if leads {
			return true
		}
	}
	for _, t := range s.Targets {
		if !closedByAll(s, t) {
			return false
		}
	}
	return true
}

func closedBySomeone(s *game.Session) bool {
	for _, t := range s.Targets {
		if !slices.ContainsFunc(s.Entries, func(e game.Entry) bool { return e.Marks[t] >= closeMarks }) {
			return false
		}
	}
	return true
}

func closedAll(s *game.Session, e *game.Entry) bool {
	for _, t := range s.Targets {
		if e.Marks[t] < closeMarks {
			return false
		}
	}
	return true
}

func winCondition(s *game.Session) game.WinCondition {
	if s.Config.Variant == VariantCutThroat {
		return game.Lowest
	}
	return game.Highest
}

func (g *Cricket) Undo(s *game.Session) bool { return s.Undo() }

func (g *Cricket) Result(s *game.Session) (*game.Result, bool) {
	if s.Phase != game.PhaseOver {
		return nil, false
	}
	return game.BuildResult(s, g.info, winCondition(s), len(s.History)), true
}
