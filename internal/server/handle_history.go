package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/scoreboard"
)

// handleListHistory lists finished games newest first. limit defaults to
// defaultLimit when missing or not a positive number.
func handleListHistory(store Store, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil || limit <= 0 {
			limit = defaultLimit
		}

		entries, err := store.ListHistory(r.Context(), sessionFrom(r).AccountID, q.Get("gameId"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// handleAddHistory records a result entered by hand.
func handleAddHistory(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res game.Result
		if err := readJSON(r, &res); err != nil {
			writeBodyError(w, err)
			return
		}
		if err := scoreboard.CheckResult(&res); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entry, err := store.AddHistory(r.Context(), sessionFrom(r).AccountID, res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

func handleDeleteHistory(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteHistory(r.Context(), sessionFrom(r).AccountID, chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "history entry not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeOK(w)
	}
}
