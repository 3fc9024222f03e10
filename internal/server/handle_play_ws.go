package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/play"
)

// Client message types on /api/play/ws.
const (
	wsAction = "action"
	wsUndo   = "undo"
)

// PlayMessage is sent by websocket clients.
type PlayMessage struct {
	Type   string       `json:"type"`
	Action *game.Action `json:"action,omitempty"`
}

const wsLifetime = 4 * time.Hour

// handlePlayWS streams the play events of the account and accepts actions
// and undo requests. Results are broadcast to every connection of the
// account; errors go back to the sender only.
func handlePlayWS(logger *slog.Logger, store Store, svc *play.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, store, true)
		if err != nil || sess.IsAdmin {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), wsLifetime)
		defer cancel()

		accountID := sess.AccountID
		ch := broker.Subscribe(accountID)
		defer broker.Unsubscribe(accountID, ch)

		v, err := svc.Current(ctx, accountID)
		switch {
		case err == nil:
			writeEvent(ctx, conn, PlayEvent{Type: EventState, View: &v})
		case errors.Is(err, play.ErrNoSession):
			writeEvent(ctx, conn, PlayEvent{Type: EventClosed})
		default:
			logger.Error("loading session for websocket", "account_id", accountID, "error", err)
			return
		}

		go func() {
			defer cancel()
			for {
				_, msg, err := conn.Read(ctx)
				if err != nil {
					logger.Debug("websocket read ended", "error", err)
					return
				}
				if ev, ok := handlePlayMessage(ctx, svc, broker, accountID, msg); !ok {
					writeEvent(ctx, conn, ev)
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

// handlePlayMessage applies one client message. On success the outcome is
// published and ok is true; otherwise ev is the error for the sender.
func handlePlayMessage(ctx context.Context, svc *play.Service, broker *Broker, accountID string, msg []byte) (ev PlayEvent, ok bool) {
	var m PlayMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return PlayEvent{Type: EventError, Error: "invalid message"}, false
	}

	switch m.Type {
	case wsAction:
		if m.Action == nil {
			return PlayEvent{Type: EventError, Error: "action is required"}, false
		}
		out, err := svc.Act(ctx, accountID, *m.Action)
		if err != nil {
			return PlayEvent{Type: EventError, Error: err.Error()}, false
		}
		broker.publishOutcome(accountID, out)
	case wsUndo:
		v, undone, err := svc.Undo(ctx, accountID)
		if err != nil {
			return PlayEvent{Type: EventError, Error: err.Error()}, false
		}
		broker.Publish(accountID, PlayEvent{Type: EventState, View: &v, Undone: &undone})
	default:
		return PlayEvent{Type: EventError, Error: "unknown message type"}, false
	}
	return PlayEvent{}, true
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev PlayEvent) {
	data, _ := json.Marshal(ev)
	conn.Write(ctx, websocket.MessageText, data)
}
