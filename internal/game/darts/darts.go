// Package darts implements the X01 countdown games and Cricket.
package darts

import (
	"fmt"
	"slices"

	"github.com/playperu/scoreboard/internal/game"
)

const maxThrows = 3

var teamColors = []string{"#f97316", "#0ea5e9", "#22c55e", "#a855f7", "#f43f5e", "#fbbf24"}

// normalize validates a dart and computes its value.
func normalize(t game.Throw) (game.Throw, error) {
	out := game.Throw{Sector: t.Sector, Ring: t.Ring}
	switch t.Ring {
	case game.RingSingle, game.RingDouble, game.RingTriple:
		if t.Sector < 1 || t.Sector > 20 {
			return game.Throw{}, fmt.Errorf("%w: sector must be between 1 and 20", game.ErrInvalidInput)
		}
		mult := map[game.Ring]int{game.RingSingle: 1, game.RingDouble: 2, game.RingTriple: 3}[t.Ring]
		out.Value = t.Sector * mult
	case game.RingBull:
		out.Sector, out.Value = 25, 50
	case game.RingOuterBull:
		out.Sector, out.Value = 25, 25
	case game.RingMiss:
		out.Sector, out.Value = 0, 0
	default:
		return game.Throw{}, fmt.Errorf("%w: unknown ring %q", game.ErrInvalidInput, t.Ring)
	}
	return out, nil
}

// buildEntries returns solo entries, or teams of size players in the given
// order when size is at least 2.
func buildEntries(info game.Info, players []game.Player, size int) ([]game.Entry, error) {
	if err := game.CheckPlayers(info, players); err != nil {
		return nil, err
	}
	if size < 2 {
		out := make([]game.Entry, len(players))
		for i, p := range players {
			out[i] = game.SoloEntry(p)
		}
		return out, nil
	}
	if size > 4 {
		return nil, fmt.Errorf("%w: teams have 2 to 4 players", game.ErrInvalidInput)
	}
	if len(players) < 2*size || len(players)%size != 0 {
		return nil, fmt.Errorf("%w: %d players cannot form teams of %d", game.ErrInvalidInput, len(players), size)
	}
	var out []game.Entry
	for chunk := range slices.Chunk(players, size) {
		n := len(out)
		out = append(out, game.Entry{
			ID:      fmt.Sprintf("team%d", n+1),
			Name:    fmt.Sprintf("Team %d", n+1),
			Avatar:  "👥",
			Color:   teamColors[n%len(teamColors)],
			Members: slices.Clone(chunk),
		})
	}
	return out, nil
}

func newSession(info game.Info, cfg game.Config, players []game.Player) (*game.Session, error) {
	entries, err := buildEntries(info, players, cfg.TeamSize)
	if err != nil {
		return nil, err
	}
	return &game.Session{
		GameID:  info.ID,
		Config:  cfg,
		Entries: entries,
		Round:   1,
		Phase:   game.PhasePlaying,
		History: []game.Record{},
	}, nil
}

// member returns the id of the player throwing for entry e.
func member(e *game.Entry) string {
	return e.Members[e.Member].ID
}
