package play

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// op is a pending write for one account. A nil data means clear.
type op struct {
	data []byte
}

// Persister writes saved sessions in the background. Only the latest write
// per account is kept; failures are logged and the in-memory session stays
// authoritative.
type Persister struct {
	store  SessionStore
	logger *slog.Logger

	mu       sync.Mutex
	pending  map[string]*op
	inflight map[string]*op
	wake     chan struct{}
}

func NewPersister(store SessionStore, logger *slog.Logger) *Persister {
	return &Persister{
		store:    store,
		logger:   logger,
		pending:  make(map[string]*op),
		inflight: make(map[string]*op),
		wake:     make(chan struct{}, 1),
	}
}

// Save queues data as the saved session of accountID.
func (p *Persister) Save(accountID string, data []byte) {
	p.enqueue(accountID, &op{data: data})
}

// Clear queues the removal of the saved session of accountID.
func (p *Persister) Clear(accountID string) {
	p.enqueue(accountID, &op{})
}

func (p *Persister) enqueue(accountID string, o *op) {
	p.mu.Lock()
	p.pending[accountID] = o
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Load returns the saved session of accountID, looking at writes that have
// not reached the store yet first.
func (p *Persister) Load(ctx context.Context, accountID string) ([]byte, error) {
	p.mu.Lock()
	o, ok := p.pending[accountID]
	if !ok {
		o, ok = p.inflight[accountID]
	}
	p.mu.Unlock()

	if ok {
		if o.data == nil {
			return nil, ErrNoSession
		}
		return o.data, nil
	}
	return p.store.Load(ctx, accountID)
}

// Run writes queued sessions until ctx is cancelled, then flushes what is
// left.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.Flush(flushCtx)
			cancel()
			return nil
		case <-p.wake:
			p.Flush(ctx)
		}
	}
}

// Flush writes every pending operation to the store.
func (p *Persister) Flush(ctx context.Context) {
	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]*op)
	for id, o := range batch {
		p.inflight[id] = o
	}
	p.mu.Unlock()

	for id, o := range batch {
		var err error
		if o.data == nil {
			err = p.store.Clear(ctx, id)
		} else {
			err = p.store.Save(ctx, id, o.data)
		}
		if err != nil {
			p.logger.Warn("persisting session failed", "account_id", id, "error", err)
		}

		p.mu.Lock()
		if p.inflight[id] == o {
			delete(p.inflight, id)
		}
		p.mu.Unlock()
	}
}
