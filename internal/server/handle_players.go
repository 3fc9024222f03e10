package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/scoreboard/internal/scoreboard"
)

// PlayerExistsResponse is returned with 409 when a player name is taken.
type PlayerExistsResponse struct {
	Error  string            `json:"error"`
	Player scoreboard.Player `json:"player"`
}

func handleListPlayers(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.ListPlayers(r.Context(), sessionFrom(r).AccountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func handleCreatePlayer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in scoreboard.PlayerInput
		if err := readJSON(r, &in); err != nil {
			writeBodyError(w, err)
			return
		}
		in, err := in.Normalize()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		p, err := store.CreatePlayer(r.Context(), sessionFrom(r).AccountID, in)
		if errors.Is(err, scoreboard.ErrExists) {
			writeJSON(w, http.StatusConflict, PlayerExistsResponse{Error: "exists", Player: p})
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleUpdatePlayer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in scoreboard.PlayerInput
		if err := readJSON(r, &in); err != nil {
			writeBodyError(w, err)
			return
		}
		in, err := in.Normalize()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		p, err := store.UpdatePlayer(r.Context(), sessionFrom(r).AccountID, chi.URLParam(r, "id"), in)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "player not found")
		case errors.Is(err, scoreboard.ErrExists):
			writeError(w, http.StatusConflict, "name already used by another player")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			writeJSON(w, http.StatusOK, p)
		}
	}
}

func handleDeletePlayer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeletePlayer(r.Context(), sessionFrom(r).AccountID, chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeOK(w)
	}
}

func handlePlayerStats(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := sessionFrom(r).AccountID
		p, err := store.GetPlayer(r.Context(), accountID, chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		history, err := store.ListHistory(r.Context(), accountID, "", 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, scoreboard.PlayerStats(p.ID, history))
	}
}
