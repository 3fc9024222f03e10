package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

type ctxKey int

const (
	ctxKeySession ctxKey = iota
)

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://api.fontshare.com; " +
	"font-src 'self' https://fonts.gstatic.com https://api.fontshare.com; " +
	"script-src 'self' 'unsafe-inline'; img-src 'self' data:;"

func securityHeaders() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.SetHeader("X-Content-Type-Options", "nosniff"),
		middleware.SetHeader("X-Frame-Options", "DENY"),
		middleware.SetHeader("X-XSS-Protection", "1; mode=block"),
		middleware.SetHeader("Referrer-Policy", "strict-origin-when-cross-origin"),
		middleware.SetHeader("Content-Security-Policy", contentSecurityPolicy),
	}
}

// rateLimit allows n requests per minute and client IP.
func rateLimit(n int) func(http.Handler) http.Handler {
	return httprate.Limit(n, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many requests, try again in a minute")
		}),
	)
}

func authMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenFromRequest(r) == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := sessionFromRequest(r, store, false)
			if errors.Is(err, errNoSession) {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accountOnly rejects admin sessions on account routes.
func accountOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r).IsAdmin {
			writeError(w, http.StatusForbidden, "account session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r).IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) authSession {
	return r.Context().Value(ctxKeySession).(authSession)
}
