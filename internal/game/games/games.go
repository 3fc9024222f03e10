// Package games assembles the registry of every playable game.
package games

import (
	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/game/darts"
	"github.com/playperu/scoreboard/internal/game/dutch"
	"github.com/playperu/scoreboard/internal/game/farkle"
	"github.com/playperu/scoreboard/internal/game/skullking"
	"github.com/playperu/scoreboard/internal/game/yams"
)

// NewRegistry returns a registry holding every game, in menu order.
func NewRegistry() *game.Registry {
	return game.NewRegistry(
		farkle.New(),
		dutch.New(),
		yams.New(),
		darts.NewX01(),
		darts.NewCricket(),
		skullking.New(),
	)
}
