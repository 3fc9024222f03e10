package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/scoreboard/internal/play"
)

// CleanupResponse is the response for POST /api/admin/cleanup.
type CleanupResponse struct {
	Removed int `json:"removed"`
}

func handleAdminListAccounts(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := store.ListAccounts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

// handleAdminDeleteAccount removes an account and everything it owns,
// including its game in progress.
func handleAdminDeleteAccount(logger *slog.Logger, store Store, svc *play.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := store.DeleteAccount(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		svc.Forget(id)
		logger.Info("account deleted", "account_id", id)
		writeOK(w)
	}
}

func handleAdminStats(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.AdminStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// handleAdminCleanup removes every expired auth session.
func handleAdminCleanup(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.PurgeSessions(r.Context(), "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, CleanupResponse{Removed: n})
	}
}
