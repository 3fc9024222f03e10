package scoreboard

import (
	"math"
	"slices"

	"github.com/playperu/scoreboard/internal/game"
)

// involves reports whether the standing belongs to the player, either
// directly or as a team member.
func involves(s game.Standing, playerID string) bool {
	return s.PlayerID == playerID || slices.Contains(s.Members, playerID)
}

// PlayerStats scans history for games the player took part in. The winner
// of each game is the first standing after the stable ranking, so a tie for
// first goes to the entry that played earlier.
func PlayerStats(playerID string, history []HistoryEntry) Stats {
	var st Stats
	for _, h := range history {
		if !slices.ContainsFunc(h.Players, func(s game.Standing) bool { return involves(s, playerID) }) {
			continue
		}
		st.Played++
		if ranked := game.Rank(h.Players, h.WinCondition); involves(ranked[0], playerID) {
			st.Wins++
		}
	}
	if st.Played > 0 {
		st.WinRate = int(math.Round(float64(st.Wins) / float64(st.Played) * 100))
	}
	return st
}
