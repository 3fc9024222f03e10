package game

// TurnState is the sequencer state exposed to callers.
type TurnState string

const (
	AwaitingAction TurnState = "awaiting-action"
	RoundComplete  TurnState = "round-complete"
	GameOver       TurnState = "game-over"
)

// Status describes who acts next.
type Status struct {
	State  TurnState `json:"state"`
	Entry  string    `json:"entry,omitempty"`
	Member *Player   `json:"member,omitempty"`
	Round  int       `json:"round"`
	Stage  Stage     `json:"stage,omitempty"`
	Darts  int       `json:"darts,omitempty"`
}

func (s *Session) Status() Status {
	if s.Phase == PhaseOver {
		return Status{State: GameOver, Round: s.Round}
	}
	e := &s.Entries[s.Turn]
	m := e.Members[e.Member]
	return Status{
		State:  AwaitingAction,
		Entry:  e.ID,
		Member: &m,
		Round:  s.Round,
		Stage:  s.Stage,
		Darts:  len(s.Throws),
	}
}

// Current returns the entry whose turn it is.
func (s *Session) Current() *Entry { return &s.Entries[s.Turn] }

// Advance hands the turn to the next member of the current entry and moves
// the pointer to the next entry that is not eliminated. It reports whether
// the pointer wrapped past the end of the turn order.
func (s *Session) Advance() bool {
	e := &s.Entries[s.Turn]
	if len(e.Members) > 0 {
		e.Member = (e.Member + 1) % len(e.Members)
	}
	next, wrapped, ok := s.nextActive(s.Turn)
	if ok {
		s.Turn = next
	}
	return wrapped
}

// nextActive finds the first non-eliminated entry after from.
func (s *Session) nextActive(from int) (next int, wrapped, ok bool) {
	n := len(s.Entries)
	for k := 1; k <= n; k++ {
		j := (from + k) % n
		if !s.Entries[j].Eliminated {
			return j, from+k >= n, true
		}
	}
	return from, false, false
}

// FirstActive moves the pointer to the first non-eliminated entry.
func (s *Session) FirstActive() {
	for i := range s.Entries {
		if !s.Entries[i].Eliminated {
			s.Turn = i
			return
		}
	}
}

// Alive counts the entries still in play.
func (s *Session) Alive() int {
	n := 0
	for i := range s.Entries {
		if !s.Entries[i].Eliminated {
			n++
		}
	}
	return n
}
