package server

import (
	"net/http"
	"testing"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/play"
	"github.com/playperu/scoreboard/internal/scoreboard"
)

func intp(n int) *int { return &n }

func TestListGames(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/games", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	games := decode[[]game.Info](t, w)
	ids := make(map[string]bool)
	for _, g := range games {
		ids[g.ID] = true
	}
	for _, id := range []string{"farkle", "dutch", "yams", "darts301", "dartscricket", "skull-king"} {
		if !ids[id] {
			t.Errorf("missing game %s in %v", id, ids)
		}
	}
}

func TestPlayFlow(t *testing.T) {
	e := newTestEnv(t)
	tok := e.register("Marie", "4321").Token
	lea := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Léa"})
	tom := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Tom"})

	if w := e.do(http.MethodGet, "/api/play", tok, nil); w.Code != http.StatusNotFound {
		t.Fatalf("no game yet: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w := e.do(http.MethodPost, "/api/play", tok, play.StartRequest{
		GameID:    "farkle",
		PlayerIDs: []string{lea.ID, tom.ID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	v := decode[play.View](t, w)
	if v.Game.ID != "farkle" || len(v.Session.Entries) != 2 || v.Session.Turn != 0 || v.CanUndo {
		t.Fatalf("unexpected view: %+v", v)
	}

	w = e.do(http.MethodPost, "/api/play/actions", tok, game.Action{Kind: game.KindScore, Points: intp(550)})
	if w.Code != http.StatusOK {
		t.Fatalf("act: status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	out := decode[play.Outcome](t, w)
	if !out.Commit.Committed || out.Commit.Result != nil {
		t.Errorf("unexpected commit: %+v", out.Commit)
	}
	if got := out.View.Session.Entries[0].Score; got != 550 {
		t.Errorf("score = %d, want 550", got)
	}
	if out.View.Session.Turn != 1 || !out.View.CanUndo {
		t.Errorf("expected Tom's turn with undo available, got turn %d", out.View.Session.Turn)
	}

	w = e.do(http.MethodGet, "/api/play", tok, nil)
	if got := decode[play.View](t, w).Session.Entries[0].Score; got != 550 {
		t.Errorf("current score = %d, want 550", got)
	}

	w = e.do(http.MethodPost, "/api/play/undo", tok, nil)
	undo := decode[UndoResponse](t, w)
	if !undo.Undone || undo.View.Session.Entries[0].Score != 0 || undo.View.Session.Turn != 0 {
		t.Errorf("unexpected undo: %+v", undo)
	}
	w = e.do(http.MethodPost, "/api/play/undo", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second undo: status = %d, want %d", w.Code, http.StatusOK)
	}
	if decode[UndoResponse](t, w).Undone {
		t.Error("expected nothing left to undo")
	}

	if w := e.do(http.MethodDelete, "/api/play", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("abandon: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := e.do(http.MethodGet, "/api/play", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("after abandon: status = %d, want %d", w.Code, http.StatusNotFound)
	}
	w = e.do(http.MethodGet, "/api/history", tok, nil)
	if entries := decode[[]scoreboard.HistoryEntry](t, w); len(entries) != 0 {
		t.Errorf("abandoned game recorded %d history entries", len(entries))
	}
}

func TestPlayGameOver(t *testing.T) {
	e := newTestEnv(t)
	tok := e.register("Marie", "4321").Token
	lea := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Léa"})
	guest := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Guest"})

	w := e.do(http.MethodPost, "/api/play", tok, play.StartRequest{
		GameID:        "dutch",
		PlayerIDs:     []string{lea.ID, guest.ID},
		TempPlayerIDs: []string{guest.ID},
		Config:        game.Config{EliminationScore: 20},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: status = %d: %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/play/actions", tok, game.Action{
		Kind:   game.KindRound,
		Scores: map[string]int{lea.ID: 30, guest.ID: 3},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("act: status = %d: %s", w.Code, w.Body.String())
	}
	out := decode[play.Outcome](t, w)
	r := out.Commit.Result
	if r == nil {
		t.Fatal("expected a result")
	}
	if r.WinCondition != game.Lowest || r.Players[0].PlayerID != guest.ID || r.Players[0].Rank != 1 {
		t.Errorf("unexpected result: %+v", r)
	}

	if w := e.do(http.MethodGet, "/api/play", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("finished game still live: status = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/play/actions", tok, game.Action{Kind: game.KindRound}); w.Code != http.StatusNotFound {
		t.Errorf("act after game over: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = e.do(http.MethodGet, "/api/history", tok, nil)
	entries := decode[[]scoreboard.HistoryEntry](t, w)
	if len(entries) != 1 || entries[0].GameID != "dutch" || entries[0].Rounds != 1 {
		t.Fatalf("unexpected history: %+v", entries)
	}

	w = e.do(http.MethodGet, "/api/players", tok, nil)
	players := decode[[]scoreboard.Player](t, w)
	if len(players) != 1 || players[0].ID != lea.ID {
		t.Errorf("expected the temporary player to be removed, got %+v", players)
	}
}

func TestPlayErrors(t *testing.T) {
	e := newTestEnv(t)
	tok := e.register("Marie", "4321").Token
	lea := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Léa"})
	tom := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Tom"})

	starts := []struct {
		name       string
		req        any
		wantStatus int
	}{
		{"unknown game", play.StartRequest{GameID: "chess", PlayerIDs: []string{lea.ID, tom.ID}}, http.StatusNotFound},
		{"unknown player", play.StartRequest{GameID: "farkle", PlayerIDs: []string{lea.ID, "nope"}}, http.StatusBadRequest},
		{"too few players", play.StartRequest{GameID: "farkle", PlayerIDs: []string{lea.ID}}, http.StatusBadRequest},
		{"bad body", "[", http.StatusBadRequest},
	}
	for _, tt := range starts {
		t.Run("start "+tt.name, func(t *testing.T) {
			if w := e.do(http.MethodPost, "/api/play", tok, tt.req); w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	for _, tt := range []struct{ method, path string }{
		{http.MethodPost, "/api/play/actions"},
		{http.MethodPost, "/api/play/undo"},
		{http.MethodDelete, "/api/play"},
	} {
		t.Run("no game "+tt.method+" "+tt.path, func(t *testing.T) {
			if w := e.do(tt.method, tt.path, tok, game.Action{Kind: game.KindScore, Points: intp(50)}); w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
			}
		})
	}

	w := e.do(http.MethodPost, "/api/play", tok, play.StartRequest{GameID: "farkle", PlayerIDs: []string{lea.ID, tom.ID}})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: status = %d", w.Code)
	}
	actions := []struct {
		name       string
		action     game.Action
		wantStatus int
	}{
		{"missing points", game.Action{Kind: game.KindScore}, http.StatusBadRequest},
		{"negative points", game.Action{Kind: game.KindScore, Points: intp(-50)}, http.StatusBadRequest},
		{"wrong kind", game.Action{Kind: game.KindBid, Points: intp(50)}, http.StatusConflict},
	}
	for _, tt := range actions {
		t.Run("act "+tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/play/actions", tok, tt.action)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp := decode[ErrorResponse](t, w); resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}

	// Rejected actions leave the session untouched.
	w = e.do(http.MethodGet, "/api/play", tok, nil)
	if v := decode[play.View](t, w); v.CanUndo || v.Session.Turn != 0 {
		t.Errorf("session changed by rejected actions: %+v", v.Session)
	}
}

func TestPlayIsScopedToAccount(t *testing.T) {
	e := newTestEnv(t)
	marie := e.register("Marie", "4321").Token
	paul := e.register("Paul", "1111").Token
	lea := e.createPlayer(marie, scoreboard.PlayerInput{Name: "Léa"})
	tom := e.createPlayer(marie, scoreboard.PlayerInput{Name: "Tom"})

	// Paul cannot start a game with Marie's players.
	w := e.do(http.MethodPost, "/api/play", paul, play.StartRequest{GameID: "farkle", PlayerIDs: []string{lea.ID, tom.ID}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("foreign players: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	e.do(http.MethodPost, "/api/play", marie, play.StartRequest{GameID: "farkle", PlayerIDs: []string{lea.ID, tom.ID}})
	if w := e.do(http.MethodGet, "/api/play", paul, nil); w.Code != http.StatusNotFound {
		t.Errorf("Paul sees Marie's game: status = %d", w.Code)
	}
}
