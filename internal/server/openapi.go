package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/handler/health"
	"github.com/playperu/scoreboard/internal/play"
	"github.com/playperu/scoreboard/internal/scoreboard"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type nameParam struct {
	Name string `path:"name"`
}

type idParam struct {
	ID string `path:"id"`
}

type historyQuery struct {
	GameID string `query:"gameId" description:"Only games with this id."`
	Limit  int    `query:"limit" description:"Maximum number of entries, newest first."`
}

type tokenQuery struct {
	Token string `query:"token" description:"Session token, for clients that cannot send headers."`
}

// operation describes one route of the API document.
type operation struct {
	method, path string
	summary      string
	description  string
	req          any
	resp         []response
}

type response struct {
	body   any
	status int
	ctype  string
}

func respOK(body any) response { return response{body: body, status: http.StatusOK} }
func respStatus(code int, body any) response { return response{body: body, status: code} }
func respErr(code int) response { return response{body: ErrorResponse{}, status: code} }

const authNote = " Requires X-Session-Token or Authorization: Bearer."

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Scoreboard API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Multi-account scoreboard for darts, Farkle, Dutch, Skull King and Yams.")

	ops := []operation{
		{
			method: http.MethodGet, path: "/healthz",
			summary:     "Health check",
			description: "Returns the health status of backend dependencies.",
			resp:        []response{respOK(health.Response{}), respStatus(http.StatusServiceUnavailable, health.Response{})},
		},

		// Auth
		{
			method: http.MethodGet, path: "/api/auth/check/{name}",
			summary:     "Check account name",
			description: "Reports whether an account with this name exists. 20 requests per minute.",
			req:         nameParam{},
			resp:        []response{respOK(CheckResponse{}), respErr(http.StatusTooManyRequests)},
		},
		{
			method: http.MethodPost, path: "/api/auth/register",
			summary:     "Register",
			description: "Creates an account protected by a 4 digit PIN and returns a session token. 10 requests per minute.",
			req:         CredentialsRequest{},
			resp: []response{
				respStatus(http.StatusCreated, AuthResponse{}),
				respErr(http.StatusBadRequest), respErr(http.StatusConflict), respErr(http.StatusTooManyRequests),
			},
		},
		{
			method: http.MethodPost, path: "/api/auth/login",
			summary:     "Login",
			description: "Exchanges an account name and PIN for a session token. 10 requests per minute.",
			req:         CredentialsRequest{},
			resp: []response{
				respOK(AuthResponse{}),
				respErr(http.StatusUnauthorized), respErr(http.StatusNotFound), respErr(http.StatusTooManyRequests),
			},
		},
		{
			method: http.MethodPost, path: "/api/auth/admin",
			summary:     "Admin login",
			description: "Exchanges the admin password for a short-lived admin token. 5 requests per minute.",
			req:         AdminLoginRequest{},
			resp:        []response{respOK(AuthResponse{}), respErr(http.StatusUnauthorized), respErr(http.StatusTooManyRequests)},
		},
		{
			method: http.MethodPost, path: "/api/auth/logout",
			summary:     "Logout",
			description: "Revokes the session token." + authNote,
			resp:        []response{respOK(OKResponse{}), respErr(http.StatusUnauthorized)},
		},
		{
			method: http.MethodGet, path: "/api/auth/me",
			summary:     "Current account",
			description: "Returns the account behind the session token." + authNote,
			resp:        []response{respOK(MeResponse{}), respErr(http.StatusUnauthorized), respErr(http.StatusNotFound)},
		},

		// Players
		{
			method: http.MethodGet, path: "/api/players",
			summary:     "List players",
			description: "Returns the roster of the account." + authNote,
			resp:        []response{respOK([]scoreboard.Player{}), respErr(http.StatusUnauthorized)},
		},
		{
			method: http.MethodPost, path: "/api/players",
			summary:     "Create player",
			description: "Adds a player to the roster. A taken name returns 409 with the existing player." + authNote,
			req:         scoreboard.PlayerInput{},
			resp: []response{
				respStatus(http.StatusCreated, scoreboard.Player{}),
				respErr(http.StatusBadRequest), respStatus(http.StatusConflict, PlayerExistsResponse{}),
			},
		},
		{
			method: http.MethodPut, path: "/api/players/{id}",
			summary:     "Update player",
			description: "Changes the name, avatar or colour of a player." + authNote,
			req: struct {
				idParam
				scoreboard.PlayerInput
			}{},
			resp: []response{
				respOK(scoreboard.Player{}),
				respErr(http.StatusBadRequest), respErr(http.StatusNotFound), respErr(http.StatusConflict),
			},
		},
		{
			method: http.MethodDelete, path: "/api/players/{id}",
			summary:     "Delete player",
			description: "Removes a player from the roster. Past results are kept." + authNote,
			req:         idParam{},
			resp:        []response{respOK(OKResponse{}), respErr(http.StatusNotFound)},
		},
		{
			method: http.MethodGet, path: "/api/players/{id}/stats",
			summary:     "Player stats",
			description: "Games played, wins and win rate of a player across the account history." + authNote,
			req:         idParam{},
			resp:        []response{respOK(scoreboard.Stats{}), respErr(http.StatusNotFound)},
		},

		// History
		{
			method: http.MethodGet, path: "/api/history",
			summary:     "List history",
			description: "Finished games of the account, newest first." + authNote,
			req:         historyQuery{},
			resp:        []response{respOK([]scoreboard.HistoryEntry{}), respErr(http.StatusUnauthorized)},
		},
		{
			method: http.MethodPost, path: "/api/history",
			summary:     "Record result",
			description: "Records a game played without the live scorer. Standings are ranked server side." + authNote,
			req:         game.Result{},
			resp:        []response{respStatus(http.StatusCreated, scoreboard.HistoryEntry{}), respErr(http.StatusBadRequest)},
		},
		{
			method: http.MethodDelete, path: "/api/history/{id}",
			summary:     "Delete result",
			description: "Removes a finished game from the history." + authNote,
			req:         idParam{},
			resp:        []response{respOK(OKResponse{}), respErr(http.StatusNotFound)},
		},

		// Play
		{
			method: http.MethodGet, path: "/api/games",
			summary:     "List games",
			description: "Returns every game the scorer supports.",
			resp:        []response{respOK([]game.Info{})},
		},
		{
			method: http.MethodGet, path: "/api/play",
			summary:     "Current game",
			description: "Returns the game in progress, resuming a saved one after a restart." + authNote,
			resp:        []response{respOK(play.View{}), respErr(http.StatusNotFound)},
		},
		{
			method: http.MethodPost, path: "/api/play",
			summary:     "Start game",
			description: "Starts a game with roster players, replacing any game in progress." + authNote,
			req:         play.StartRequest{},
			resp: []response{
				respStatus(http.StatusCreated, play.View{}),
				respErr(http.StatusBadRequest), respErr(http.StatusNotFound),
			},
		},
		{
			method: http.MethodDelete, path: "/api/play",
			summary:     "Abandon game",
			description: "Drops the game in progress without recording it." + authNote,
			resp:        []response{respOK(OKResponse{}), respErr(http.StatusNotFound)},
		},
		{
			method: http.MethodPost, path: "/api/play/actions",
			summary:     "Play action",
			description: "Applies a throw, score, bid, result or fill. The action that ends the game returns the result." + authNote,
			req:         game.Action{},
			resp: []response{
				respOK(play.Outcome{}),
				respErr(http.StatusBadRequest), respErr(http.StatusNotFound), respErr(http.StatusConflict),
			},
		},
		{
			method: http.MethodPost, path: "/api/play/undo",
			summary:     "Undo",
			description: "Reverts the last dart or the last committed turn." + authNote,
			resp:        []response{respOK(UndoResponse{}), respErr(http.StatusNotFound)},
		},
		{
			method: http.MethodGet, path: "/api/play/ws",
			summary:     "Live play websocket",
			description: "Streams play events of the account and accepts action and undo messages.",
			req:         tokenQuery{},
			resp: []response{
				{status: http.StatusSwitchingProtocols, ctype: "text/plain"},
				respErr(http.StatusUnauthorized),
			},
		},
		{
			method: http.MethodGet, path: "/api/play/events",
			summary:     "Play event stream",
			description: "Server-Sent Events feed of the account's play events.",
			req:         tokenQuery{},
			resp: []response{
				{status: http.StatusOK, ctype: "text/event-stream"},
				respErr(http.StatusUnauthorized),
			},
		},

		// Admin
		{
			method: http.MethodGet, path: "/api/admin/accounts",
			summary:     "List accounts",
			description: "Every account with its player and game counts. Requires an admin token.",
			resp:        []response{respOK([]scoreboard.AccountSummary{}), respErr(http.StatusForbidden)},
		},
		{
			method: http.MethodDelete, path: "/api/admin/accounts/{id}",
			summary:     "Delete account",
			description: "Deletes an account with its players, history, tokens and saved game. Requires an admin token.",
			req:         idParam{},
			resp:        []response{respOK(OKResponse{}), respErr(http.StatusNotFound), respErr(http.StatusForbidden)},
		},
		{
			method: http.MethodGet, path: "/api/admin/stats",
			summary:     "Usage stats",
			description: "Counts of accounts, players, games and active sessions. Requires an admin token.",
			resp:        []response{respOK(AdminStats{}), respErr(http.StatusForbidden)},
		},
		{
			method: http.MethodPost, path: "/api/admin/cleanup",
			summary:     "Purge expired sessions",
			description: "Removes expired session tokens. Requires an admin token.",
			resp:        []response{respOK(CleanupResponse{}), respErr(http.StatusForbidden)},
		},
	}

	for _, op := range ops {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for _, resp := range op.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.ctype != "" {
				opts = append(opts, openapi.WithContentType(resp.ctype))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
