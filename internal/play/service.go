package play

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/playperu/scoreboard/internal/game"
)

// slot holds the live session of one account. Its lock serialises every
// action on that session.
type slot struct {
	mu     sync.Mutex
	engine game.Engine
	blob   Blob
}

func (sl *slot) reset() {
	sl.engine = nil
	sl.blob = Blob{}
}

type Service struct {
	games   *game.Registry
	roster  Roster
	history HistorySink
	saved   *Persister
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.Mutex
	live map[string]*slot
}

type Option func(*Service)

// WithClock replaces time.Now, used for session start times and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(games *game.Registry, roster Roster, history HistorySink, saved *Persister, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		games:   games,
		roster:  roster,
		history: history,
		saved:   saved,
		logger:  logger,
		now:     time.Now,
		live:    make(map[string]*slot),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Games lists the playable games.
func (s *Service) Games() []game.Info { return s.games.List() }

func (s *Service) slot(accountID string) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.live[accountID]
	if !ok {
		sl = &slot{}
		s.live[accountID] = sl
	}
	return sl
}

// Start creates a new session, replacing any game already in progress for
// the account.
func (s *Service) Start(ctx context.Context, accountID string, req StartRequest) (View, error) {
	engine, err := s.games.Get(req.GameID)
	if err != nil {
		return View{}, err
	}
	players, err := s.roster.GamePlayers(ctx, accountID, req.PlayerIDs)
	if err != nil {
		return View{}, err
	}
	sess, err := engine.NewSession(req.Config, players)
	if err != nil {
		return View{}, err
	}
	sess.StartedAt = s.now().UTC()

	var temp []string
	for _, id := range req.TempPlayerIDs {
		if slices.Contains(req.PlayerIDs, id) {
			temp = append(temp, id)
		}
	}

	sl := s.slot(accountID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := s.load(ctx, accountID, sl); err == nil {
		s.logger.Info("replacing game in progress", "account_id", accountID, "game_id", sl.blob.GameID)
		s.deleteTemp(ctx, accountID, sl.blob.TempPlayerIDs)
	}

	sl.engine = engine
	sl.blob = Blob{GameID: req.GameID, Session: sess, TempPlayerIDs: temp, Unrecorded: sl.blob.Unrecorded}
	s.save(accountID, sl)
	return s.view(sl), nil
}

// Current returns the live session of the account, resuming a saved one if
// needed.
func (s *Service) Current(ctx context.Context, accountID string) (View, error) {
	sl := s.slot(accountID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := s.load(ctx, accountID, sl); err != nil {
		return View{}, err
	}
	return s.view(sl), nil
}

// Act applies an action to the live session. Committed actions are saved;
// the action that ends the game records the result and closes the session.
func (s *Service) Act(ctx context.Context, accountID string, a game.Action) (Outcome, error) {
	sl := s.slot(accountID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := s.load(ctx, accountID, sl); err != nil {
		return Outcome{}, err
	}
	c, err := sl.engine.Apply(sl.blob.Session, a)
	if err != nil {
		return Outcome{}, err
	}

	if c.Result != nil {
		r := *c.Result
		r.Duration = int(s.now().Sub(sl.blob.Session.StartedAt).Seconds())
		c.Result = &r
		out := Outcome{View: s.view(sl), Commit: c}
		s.finish(ctx, accountID, sl, r)
		return out, nil
	}
	if c.Committed {
		s.save(accountID, sl)
	}
	return Outcome{View: s.view(sl), Commit: c}, nil
}

// Undo reverts the last dart or the last commit. It reports false when
// there was nothing to undo.
func (s *Service) Undo(ctx context.Context, accountID string) (View, bool, error) {
	sl := s.slot(accountID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := s.load(ctx, accountID, sl); err != nil {
		return View{}, false, err
	}
	undone := sl.engine.Undo(sl.blob.Session)
	if undone {
		s.save(accountID, sl)
	}
	return s.view(sl), undone, nil
}

// Abandon drops the game in progress and its temporary players.
func (s *Service) Abandon(ctx context.Context, accountID string) error {
	sl := s.slot(accountID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := s.load(ctx, accountID, sl); err != nil {
		return err
	}
	s.deleteTemp(ctx, accountID, sl.blob.TempPlayerIDs)
	unrecorded := sl.blob.Unrecorded
	sl.reset()
	s.keep(accountID, unrecorded)
	return nil
}

// Forget drops the session of a deleted account without touching its
// players.
func (s *Service) Forget(accountID string) {
	sl := s.slot(accountID)
	sl.mu.Lock()
	sl.reset()
	sl.mu.Unlock()

	s.saved.Clear(accountID)

	s.mu.Lock()
	delete(s.live, accountID)
	s.mu.Unlock()
}

// load makes sure sl holds a session, rehydrating the saved blob when the
// process restarted. Unrecorded results found in the blob are retried.
// Sessions that cannot be resumed are discarded, their unrecorded results
// are kept.
func (s *Service) load(ctx context.Context, accountID string, sl *slot) error {
	if sl.engine != nil {
		return nil
	}
	sl.blob = Blob{}
	data, err := s.saved.Load(ctx, accountID)
	if err != nil {
		return err
	}

	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		s.discard(accountID, sl, "unreadable session", err)
		return ErrNoSession
	}
	retried := len(b.Unrecorded) > 0
	if retried {
		b.Unrecorded = s.record(ctx, accountID, b.Unrecorded)
	}
	sl.blob.Unrecorded = b.Unrecorded

	if b.Session == nil {
		s.keep(accountID, b.Unrecorded)
		return ErrNoSession
	}
	engine, err := s.games.Get(b.GameID)
	if err != nil {
		s.discard(accountID, sl, "game no longer available", err)
		return ErrNoSession
	}
	if !resumable(b.Session) {
		s.discard(accountID, sl, "session cannot be resumed", nil)
		return ErrNoSession
	}

	sl.engine = engine
	sl.blob = b
	if retried {
		s.save(accountID, sl)
	}
	return nil
}

func resumable(sess *game.Session) bool {
	return sess.Phase == game.PhasePlaying &&
		sess.Turn >= 0 && sess.Turn < len(sess.Entries)
}

func (s *Service) discard(accountID string, sl *slot, reason string, err error) {
	s.logger.Warn("discarding saved session", "account_id", accountID, "reason", reason, "error", err)
	s.keep(accountID, sl.blob.Unrecorded)
}

// keep replaces the saved session with the results still waiting for the
// history, or clears it when there are none.
func (s *Service) keep(accountID string, unrecorded []game.Result) {
	if len(unrecorded) == 0 {
		s.saved.Clear(accountID)
		return
	}
	s.store(accountID, Blob{Unrecorded: unrecorded})
}

func (s *Service) save(accountID string, sl *slot) { s.store(accountID, sl.blob) }

func (s *Service) store(accountID string, b Blob) {
	data, err := json.Marshal(b)
	if err != nil {
		s.logger.Error("encoding session", "account_id", accountID, "error", err)
		return
	}
	s.saved.Save(accountID, data)
}

// record sends results to the history and returns those it refused.
func (s *Service) record(ctx context.Context, accountID string, results []game.Result) []game.Result {
	var failed []game.Result
	for _, r := range results {
		if err := s.history.RecordResult(ctx, accountID, r); err != nil {
			s.logger.Error("recording result", "account_id", accountID, "game_id", r.GameID, "error", err)
			failed = append(failed, r)
		}
	}
	return failed
}

func (s *Service) finish(ctx context.Context, accountID string, sl *slot, r game.Result) {
	unrecorded := s.record(ctx, accountID, append(slices.Clone(sl.blob.Unrecorded), r))
	s.deleteTemp(ctx, accountID, sl.blob.TempPlayerIDs)
	sl.reset()
	s.keep(accountID, unrecorded)
}

func (s *Service) deleteTemp(ctx context.Context, accountID string, ids []string) {
	for _, id := range ids {
		err := s.roster.DeletePlayer(ctx, accountID, id)
		if err != nil && !errors.Is(err, ErrUnknownPlayer) {
			s.logger.Warn("deleting temporary player", "account_id", accountID, "player_id", id, "error", err)
		}
	}
}

func (s *Service) view(sl *slot) View {
	sess := sl.blob.Session.Clone()
	return View{
		Game:          sl.engine.Info(),
		Session:       sess,
		Status:        sess.Status(),
		CanUndo:       sess.CanUndo(),
		TempPlayerIDs: slices.Clone(sl.blob.TempPlayerIDs),
	}
}
