package game

import "slices"

type Flag string

const (
	FlagBust          Flag = "bust"
	FlagCheckout      Flag = "checkout"
	FlagDoubleInMiss  Flag = "double-in-miss"
	FlagClosed        Flag = "closed"
	FlagBonus         Flag = "bonus"
	FlagHotHand       Flag = "hot-hand"
	FlagFarkle        Flag = "farkle"
	FlagPenalty       Flag = "penalty"
	FlagFinalLap      Flag = "final-lap"
	FlagCallerPenalty Flag = "caller-penalty"
	FlagEliminated    Flag = "eliminated"
	FlagCrossed       Flag = "crossed"
)

// Change is one score movement caused by a committed action.
type Change struct {
	Entry string `json:"entry"`
	Delta int    `json:"delta"`
	Score int    `json:"score"`
}

// Record is the immutable trace of one committed action.
type Record struct {
	Seq     int      `json:"seq"`
	Actor   string   `json:"actor,omitempty"`
	Member  string   `json:"member,omitempty"`
	Round   int      `json:"round"`
	Action  Action   `json:"action"`
	Throws  []Throw  `json:"throws,omitempty"`
	Changes []Change `json:"changes,omitempty"`
	Flags   []Flag   `json:"flags,omitempty"`
}

// Delta returns the total score movement of entryID in the record.
func (r *Record) Delta(entryID string) int {
	d := 0
	for _, c := range r.Changes {
		if c.Entry == entryID {
			d += c.Delta
		}
	}
	return d
}

func (r *Record) Has(f Flag) bool { return slices.Contains(r.Flags, f) }

// AddFlag appends f unless it is already present.
func AddFlag(flags []Flag, f Flag) []Flag {
	if slices.Contains(flags, f) {
		return flags
	}
	return append(flags, f)
}

// ApplyDelta adds delta to the entry at index i and returns the change.
func (s *Session) ApplyDelta(i, delta int) Change {
	e := &s.Entries[i]
	e.Score += delta
	return Change{Entry: e.ID, Delta: delta, Score: e.Score}
}

// Append stamps r with its sequence number and round and appends it to the
// history. The returned copy is safe to hand out.
func (s *Session) Append(r Record) *Record {
	r.Seq = len(s.History) + 1
	if r.Round == 0 {
		r.Round = s.Round
	}
	s.History = append(s.History, r)
	out := r
	return &out
}

// Tally recomputes an entry's score from its base and the history.
func (s *Session) Tally(entryID string) int {
	i := s.Index(entryID)
	if i < 0 {
		return 0
	}
	total := s.Entries[i].Base
	for k := range s.History {
		total += s.History[k].Delta(entryID)
	}
	return total
}
