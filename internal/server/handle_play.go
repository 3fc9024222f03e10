package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/play"
)

// UndoResponse is the response for POST /api/play/undo.
type UndoResponse struct {
	Undone bool      `json:"undone"`
	View   play.View `json:"view"`
}

// playErrorStatus maps play and engine errors to an HTTP status. Unknown
// errors are reported as 500.
func playErrorStatus(err error) int {
	switch {
	case errors.Is(err, play.ErrNoSession), errors.Is(err, game.ErrUnknownGame):
		return http.StatusNotFound
	case errors.Is(err, play.ErrUnknownPlayer), errors.Is(err, game.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrIllegalAction), errors.Is(err, game.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writePlayError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := playErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("play request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func handleListGames(svc *play.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Games())
	}
}

func handleCurrentPlay(logger *slog.Logger, svc *play.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Current(r.Context(), sessionFrom(r).AccountID)
		if err != nil {
			writePlayError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleStartPlay(logger *slog.Logger, svc *play.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req play.StartRequest
		if err := readJSON(r, &req); err != nil {
			writeBodyError(w, err)
			return
		}

		accountID := sessionFrom(r).AccountID
		v, err := svc.Start(r.Context(), accountID, req)
		if err != nil {
			writePlayError(w, logger, err)
			return
		}

		broker.Publish(accountID, PlayEvent{Type: EventState, View: &v})
		writeJSON(w, http.StatusCreated, v)
	}
}

func handleAbandonPlay(logger *slog.Logger, svc *play.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := sessionFrom(r).AccountID
		if err := svc.Abandon(r.Context(), accountID); err != nil {
			writePlayError(w, logger, err)
			return
		}

		broker.Publish(accountID, PlayEvent{Type: EventClosed})
		writeOK(w)
	}
}

func handlePlayAction(logger *slog.Logger, svc *play.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a game.Action
		if err := readJSON(r, &a); err != nil {
			writeBodyError(w, err)
			return
		}

		accountID := sessionFrom(r).AccountID
		out, err := svc.Act(r.Context(), accountID, a)
		if err != nil {
			writePlayError(w, logger, err)
			return
		}

		broker.publishOutcome(accountID, out)
		writeJSON(w, http.StatusOK, out)
	}
}

func handlePlayUndo(logger *slog.Logger, svc *play.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := sessionFrom(r).AccountID
		v, undone, err := svc.Undo(r.Context(), accountID)
		if err != nil {
			writePlayError(w, logger, err)
			return
		}

		if undone {
			broker.Publish(accountID, PlayEvent{Type: EventState, View: &v, Undone: &undone})
		}
		writeJSON(w, http.StatusOK, UndoResponse{Undone: undone, View: v})
	}
}
