package game

import (
	"maps"
	"slices"
)

// Snapshot holds the mutable fields of a session as they were before the
// last commit. History is append-only, so only its length is kept.
type Snapshot struct {
	Entries  []Entry   `json:"entries"`
	Turn     int       `json:"turn"`
	Round    int       `json:"round"`
	Stage    Stage     `json:"stage,omitempty"`
	FinalLap *FinalLap `json:"finalLap,omitempty"`
	Records  int       `json:"records"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := e
	c.Members = slices.Clone(e.Members)
	c.Marks = maps.Clone(e.Marks)
	c.Cells = maps.Clone(e.Cells)
	if e.Bid != nil {
		v := *e.Bid
		c.Bid = &v
	}
	if e.Won != nil {
		v := *e.Won
		c.Won = &v
	}
	return c
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}

// Clone returns a copy of s that shares no mutable state with it.
func (s *Session) Clone() *Session {
	c := *s
	c.Entries = cloneEntries(s.Entries)
	c.Throws = slices.Clone(s.Throws)
	c.History = slices.Clone(s.History)
	if s.FinalLap != nil {
		fl := *s.FinalLap
		c.FinalLap = &fl
	}
	return &c
}

// SaveCheckpoint overwrites the undo slot with the current state. Engines
// call it right before mutating the session for a commit.
func (s *Session) SaveCheckpoint() {
	snap := &Snapshot{
		Entries: cloneEntries(s.Entries),
		Turn:    s.Turn,
		Round:   s.Round,
		Stage:   s.Stage,
		Records: len(s.History),
	}
	if s.FinalLap != nil {
		fl := *s.FinalLap
		snap.FinalLap = &fl
	}
	s.Checkpoint = snap
}

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool {
	return s.Phase == PhasePlaying && (len(s.Throws) > 0 || s.Checkpoint != nil)
}

// Undo removes the last buffered dart if any, otherwise restores the
// checkpoint and clears it. It returns false when there was nothing to undo.
func (s *Session) Undo() bool {
	if s.Phase != PhasePlaying {
		return false
	}
	if n := len(s.Throws); n > 0 {
		s.Throws = s.Throws[:n-1]
		return true
	}
	snap := s.Checkpoint
	if snap == nil {
		return false
	}
	s.Entries = cloneEntries(snap.Entries)
	s.Turn = snap.Turn
	s.Round = snap.Round
	s.Stage = snap.Stage
	s.FinalLap = nil
	if snap.FinalLap != nil {
		fl := *snap.FinalLap
		s.FinalLap = &fl
	}
	s.History = s.History[:snap.Records]
	s.Throws = nil
	s.Checkpoint = nil
	return true
}
