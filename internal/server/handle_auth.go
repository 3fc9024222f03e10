package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/scoreboard/internal/scoreboard"
)

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

// AdminLoginRequest is the request body for POST /api/auth/admin.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AuthResponse is returned by every successful login.
type AuthResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
}

// CheckResponse is the response for GET /api/auth/check/{name}.
type CheckResponse struct {
	Exists bool `json:"exists"`
}

// MeResponse is the response for GET /api/auth/me.
type MeResponse struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
}

func handleCheckAccount(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "name"))
		if name == "" || scoreboard.NameKey(name) == scoreboard.ReservedName {
			writeJSON(w, http.StatusOK, CheckResponse{})
			return
		}

		exists, err := store.AccountExists(r.Context(), name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, CheckResponse{Exists: exists})
	}
}

func handleRegister(store Store, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if err := readJSON(r, &req); err != nil {
			writeBodyError(w, err)
			return
		}

		name, err := scoreboard.AccountName(req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		pin, err := scoreboard.PIN(req.PIN)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		account, err := store.CreateAccount(r.Context(), name, string(hash))
		if errors.Is(err, scoreboard.ErrExists) {
			writeError(w, http.StatusConflict, "name already taken")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess, err := store.CreateSession(r.Context(), account.ID, false, ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{
			Token:     sess.Token,
			AccountID: account.ID,
			Name:      account.Name,
		})
	}
}

func handleLogin(store Store, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if err := readJSON(r, &req); err != nil {
			writeBodyError(w, err)
			return
		}

		account, err := store.AccountByName(r.Context(), strings.TrimSpace(req.Name))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PINHash), []byte(req.PIN)); err != nil {
			writeError(w, http.StatusUnauthorized, "wrong PIN")
			return
		}

		// Drop this account's expired tokens.
		if _, err := store.PurgeSessions(r.Context(), account.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess, err := store.CreateSession(r.Context(), account.ID, false, ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			Token:     sess.Token,
			AccountID: account.ID,
			Name:      account.Name,
		})
	}
}

func handleAdminLogin(store Store, adminHash []byte, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeBodyError(w, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword(adminHash, []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sess, err := store.CreateSession(r.Context(), adminAccountID, true, ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			Token:     sess.Token,
			AccountID: adminAccountID,
			Name:      adminName,
		})
	}
}

func handleLogout(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSession(r.Context(), sessionFrom(r).Token); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeOK(w)
	}
}

func handleMe(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess.IsAdmin {
			writeJSON(w, http.StatusOK, MeResponse{AccountID: adminAccountID, Name: adminName, IsAdmin: true})
			return
		}

		account, err := store.Account(r.Context(), sess.AccountID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, MeResponse{AccountID: account.ID, Name: account.Name})
	}
}
