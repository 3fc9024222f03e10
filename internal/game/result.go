package game

import (
	"cmp"
	"slices"
)

// Standing is one ranked line of a result.
type Standing struct {
	PlayerID   string   `json:"playerId"`
	Name       string   `json:"name"`
	FinalScore int      `json:"finalScore"`
	Rank       int      `json:"rank"`
	Members    []string `json:"members,omitempty"`
}

// Result is produced once per finished session.
type Result struct {
	GameID       string       `json:"gameId"`
	GameName     string       `json:"gameName"`
	GameEmoji    string       `json:"gameEmoji"`
	WinCondition WinCondition `json:"winCondition"`
	Players      []Standing   `json:"players"`
	Rounds       int          `json:"rounds"`
	Duration     int          `json:"duration"`
}

// Rank orders standings by final score according to wc. The sort is stable
// so equal scores keep turn order; equal scores share a rank.
func Rank(standings []Standing, wc WinCondition) []Standing {
	out := slices.Clone(standings)
	slices.SortStableFunc(out, func(a, b Standing) int {
		if wc == Lowest {
			return cmp.Compare(a.FinalScore, b.FinalScore)
		}
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})
	for i := range out {
		if i > 0 && out[i].FinalScore == out[i-1].FinalScore {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

// Standings lists the entries of s in turn order.
func (s *Session) Standings() []Standing {
	out := make([]Standing, len(s.Entries))
	for i := range s.Entries {
		e := &s.Entries[i]
		st := Standing{PlayerID: e.ID, Name: e.Name, FinalScore: e.Score}
		if e.IsTeam() {
			for _, m := range e.Members {
				st.Members = append(st.Members, m.ID)
			}
		}
		out[i] = st
	}
	return out
}

// BuildResult assembles the result summary of s without touching it.
func BuildResult(s *Session, info Info, wc WinCondition, rounds int) *Result {
	return &Result{
		GameID:       info.ID,
		GameName:     info.Name,
		GameEmoji:    info.Emoji,
		WinCondition: wc,
		Players:      Rank(s.Standings(), wc),
		Rounds:       rounds,
	}
}

// Finish ends the session and returns its result. Only the first call has
// an effect; later calls return nil.
func Finish(s *Session, info Info, wc WinCondition, rounds int) *Result {
	if s.Phase == PhaseOver {
		return nil
	}
	s.Phase = PhaseOver
	s.Throws = nil
	return BuildResult(s, info, wc, rounds)
}
