package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/play"
)

// PlayBackend exposes a Store as the roster and history of the play service.
type PlayBackend struct {
	store Store
}

func NewPlayBackend(store Store) *PlayBackend {
	return &PlayBackend{store: store}
}

func (b *PlayBackend) GamePlayers(ctx context.Context, accountID string, ids []string) ([]game.Player, error) {
	players, err := b.store.PlayersByID(ctx, accountID, ids)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", play.ErrUnknownPlayer, err)
	}
	if err != nil {
		return nil, err
	}
	out := make([]game.Player, len(players))
	for i, p := range players {
		out[i] = p.GamePlayer()
	}
	return out, nil
}

func (b *PlayBackend) DeletePlayer(ctx context.Context, accountID, id string) error {
	err := b.store.DeletePlayer(ctx, accountID, id)
	if errors.Is(err, ErrNotFound) {
		return play.ErrUnknownPlayer
	}
	return err
}

func (b *PlayBackend) RecordResult(ctx context.Context, accountID string, r game.Result) error {
	_, err := b.store.AddHistory(ctx, accountID, r)
	return err
}
