package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/play"
)

// Play event types.
const (
	EventState  = "state"
	EventOver   = "over"
	EventClosed = "closed"
	EventError  = "error"
)

// PlayEvent is published to every live connection of an account.
type PlayEvent struct {
	Type   string       `json:"type"`
	View   *play.View   `json:"view,omitempty"`
	Commit *game.Commit `json:"commit,omitempty"`
	Undone *bool        `json:"undone,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Broker is an in-process pub/sub for play events, keyed by account ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the account.
func (b *Broker) Subscribe(accountID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[accountID] == nil {
		b.subs[accountID] = make(map[chan []byte]struct{})
	}
	b.subs[accountID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the account's subscribers.
func (b *Broker) Unsubscribe(accountID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[accountID], ch)
	if len(b.subs[accountID]) == 0 {
		delete(b.subs, accountID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the account.
func (b *Broker) Publish(accountID string, event PlayEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[accountID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// publishOutcome turns the result of an action into an event.
func (b *Broker) publishOutcome(accountID string, out play.Outcome) {
	ev := PlayEvent{Type: EventState, View: &out.View, Commit: &out.Commit}
	if out.Commit.Result != nil {
		ev.Type = EventOver
	}
	b.Publish(accountID, ev)
}
