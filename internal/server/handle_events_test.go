package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playperu/scoreboard/internal/play"
	"github.com/playperu/scoreboard/internal/scoreboard"
)

func TestPlayEvents(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	tok := e.register("Marie", "4321").Token
	lea := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Léa"})
	tom := e.createPlayer(tok, scoreboard.PlayerInput{Name: "Tom"})

	resp, err := http.Get(srv.URL + "/api/play/events")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/play/events?token="+tok, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", ct)
	}

	w := e.do(http.MethodPost, "/api/play", tok, play.StartRequest{GameID: "farkle", PlayerIDs: []string{lea.ID, tom.ID}})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: status = %d", w.Code)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	var event string
	for sc.Scan() {
		line := sc.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			event = name
			continue
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if event != "play" {
			t.Fatalf("event = %q, want play", event)
		}
		var ev PlayEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decoding %s: %v", data, err)
		}
		if ev.Type != EventState || ev.View == nil || ev.View.Game.ID != "farkle" {
			t.Errorf("unexpected event %+v", ev)
		}
		return
	}
	t.Fatalf("stream ended without an event: %v", sc.Err())
}
