package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

const (
	tokenHeader = "X-Session-Token"

	adminAccountID = "admin"
	adminName      = "Admin"
)

// tokenFromRequest reads the bearer token from X-Session-Token or from the
// Authorization header.
func tokenFromRequest(r *http.Request) string {
	if tok := r.Header.Get(tokenHeader); tok != "" {
		return tok
	}
	tok, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return tok
}

// sessionFromRequest resolves the token of r. The token query parameter is
// accepted too when allowQuery is set, for browser websocket and event
// stream clients that cannot send headers.
func sessionFromRequest(r *http.Request, store Store, allowQuery bool) (authSession, error) {
	tok := tokenFromRequest(r)
	if tok == "" && allowQuery {
		tok = r.URL.Query().Get("token")
	}
	if tok == "" {
		return authSession{}, errNoSession
	}
	return store.SessionFromToken(r.Context(), tok)
}
