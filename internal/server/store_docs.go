package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/scoreboard/internal/game"
	"github.com/playperu/scoreboard/internal/scoreboard"
)

// DocStore implements Store using per-model tables with JSONB data columns.
// The tables are created by the migrations package.
type DocStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db, now: time.Now}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Generic helpers.

func getDoc(ctx context.Context, q querier, query string, dest any, args ...any) error {
	var data string
	err := q.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func listDocs[T any](ctx context.Context, q querier, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func count(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Per-table put methods.

func putAccount(ctx context.Context, q querier, a scoreboard.Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO accounts (id, name_key, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name_key = excluded.name_key, data = excluded.data`,
		a.ID, scoreboard.NameKey(a.Name), string(data),
	)
	return err
}

func putPlayer(ctx context.Context, q querier, p scoreboard.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO players (id, account_id, name_key, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name_key = excluded.name_key, data = excluded.data`,
		p.ID, p.AccountID, scoreboard.NameKey(p.Name), string(data),
	)
	return err
}

func putHistory(ctx context.Context, q querier, h scoreboard.HistoryEntry) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO history (id, account_id, game_id, played_at, data) VALUES (?, ?, ?, ?, jsonb(?))`,
		h.ID, h.AccountID, h.GameID, formatTime(h.PlayedAt), string(data),
	)
	return err
}

// newToken returns 32 random bytes, hex encoded.
func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func newID() string {
	return uuid.NewString()
}

// formatTime keeps millisecond precision and sorts lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (s *DocStore) nowUTC() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Accounts

func (s *DocStore) AccountExists(ctx context.Context, name string) (bool, error) {
	n, err := count(ctx, s.db,
		`SELECT COUNT(*) FROM accounts WHERE name_key = ?`, scoreboard.NameKey(name),
	)
	return n > 0, err
}

func (s *DocStore) CreateAccount(ctx context.Context, name, pinHash string) (scoreboard.Account, error) {
	a := scoreboard.Account{
		ID:        newID(),
		Name:      name,
		PINHash:   pinHash,
		CreatedAt: s.nowUTC(),
	}
	err := putAccount(ctx, s.db, a)
	if isUniqueViolation(err) {
		return scoreboard.Account{}, scoreboard.ErrExists
	}
	if err != nil {
		return scoreboard.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	return a, nil
}

func (s *DocStore) AccountByName(ctx context.Context, name string) (scoreboard.Account, error) {
	var a scoreboard.Account
	err := getDoc(ctx, s.db,
		`SELECT json(data) FROM accounts WHERE name_key = ?`, &a, scoreboard.NameKey(name),
	)
	return a, err
}

func (s *DocStore) Account(ctx context.Context, id string) (scoreboard.Account, error) {
	var a scoreboard.Account
	err := getDoc(ctx, s.db, `SELECT json(data) FROM accounts WHERE id = ?`, &a, id)
	return a, err
}

func (s *DocStore) ListAccounts(ctx context.Context) ([]scoreboard.AccountSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id,
		       a.data ->> '$.name',
		       a.data ->> '$.createdAt',
		       (SELECT COUNT(*) FROM players p WHERE p.account_id = a.id),
		       (SELECT COUNT(*) FROM history h WHERE h.account_id = a.id)
		FROM accounts a
		ORDER BY a.rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []scoreboard.AccountSummary{}
	for rows.Next() {
		var (
			sum       scoreboard.AccountSummary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &createdAt, &sum.Players, &sum.Games); err != nil {
			return nil, err
		}
		sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing createdAt of account %s: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteAccount removes an account with its players, history, auth sessions
// and saved game session.
func (s *DocStore) DeleteAccount(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, table := range []string{"players", "history", "auth_sessions", "game_sessions"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE account_id = ?`, table), id,
		); err != nil {
			return fmt.Errorf("deleting %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Auth sessions

func (s *DocStore) CreateSession(ctx context.Context, accountID string, isAdmin bool, ttl time.Duration) (authSession, error) {
	sess := authSession{
		Token:     newToken(),
		AccountID: accountID,
		IsAdmin:   isAdmin,
		ExpiresAt: s.nowUTC().Add(ttl),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (token, account_id, is_admin, expires_at) VALUES (?, ?, ?, ?)`,
		sess.Token, sess.AccountID, boolInt(sess.IsAdmin), sess.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return authSession{}, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

func (s *DocStore) SessionFromToken(ctx context.Context, token string) (authSession, error) {
	var (
		sess    authSession
		isAdmin int
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, account_id, is_admin, expires_at FROM auth_sessions WHERE token = ? AND expires_at > ?`,
		token, s.nowUTC().UnixMilli(),
	).Scan(&sess.Token, &sess.AccountID, &isAdmin, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return authSession{}, errNoSession
	}
	if err != nil {
		return authSession{}, err
	}
	sess.IsAdmin = isAdmin == 1
	sess.ExpiresAt = time.UnixMilli(expires).UTC()
	return sess, nil
}

func (s *DocStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token)
	return err
}

func (s *DocStore) PurgeSessions(ctx context.Context, accountID string) (int, error) {
	query := `DELETE FROM auth_sessions WHERE expires_at <= ?`
	args := []any{s.nowUTC().UnixMilli()}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Players

func (s *DocStore) ListPlayers(ctx context.Context, accountID string) ([]scoreboard.Player, error) {
	return listDocs[scoreboard.Player](ctx, s.db,
		`SELECT json(data) FROM players WHERE account_id = ? ORDER BY rowid`, accountID,
	)
}

func (s *DocStore) CreatePlayer(ctx context.Context, accountID string, in scoreboard.PlayerInput) (scoreboard.Player, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return scoreboard.Player{}, err
	}
	defer tx.Rollback()

	var existing scoreboard.Player
	err = getDoc(ctx, tx,
		`SELECT json(data) FROM players WHERE account_id = ? AND name_key = ?`,
		&existing, accountID, scoreboard.NameKey(in.Name),
	)
	if err == nil {
		return existing, scoreboard.ErrExists
	}
	if !errors.Is(err, ErrNotFound) {
		return scoreboard.Player{}, err
	}

	p := scoreboard.Player{
		ID:        newID(),
		AccountID: accountID,
		Name:      in.Name,
		Avatar:    in.Avatar,
		Color:     in.Color,
		Temp:      in.Temp,
		CreatedAt: s.nowUTC(),
	}
	if err := putPlayer(ctx, tx, p); err != nil {
		return scoreboard.Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, tx.Commit()
}

// UpdatePlayer renames or restyles a player. A name already used by another
// player of the account yields scoreboard.ErrExists.
func (s *DocStore) UpdatePlayer(ctx context.Context, accountID, id string, in scoreboard.PlayerInput) (scoreboard.Player, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return scoreboard.Player{}, err
	}
	defer tx.Rollback()

	var p scoreboard.Player
	err = getDoc(ctx, tx,
		`SELECT json(data) FROM players WHERE id = ? AND account_id = ?`, &p, id, accountID,
	)
	if err != nil {
		return scoreboard.Player{}, err
	}

	p.Name = in.Name
	p.Avatar = in.Avatar
	p.Color = in.Color
	err = putPlayer(ctx, tx, p)
	if isUniqueViolation(err) {
		return scoreboard.Player{}, scoreboard.ErrExists
	}
	if err != nil {
		return scoreboard.Player{}, fmt.Errorf("updating player: %w", err)
	}
	return p, tx.Commit()
}

func (s *DocStore) GetPlayer(ctx context.Context, accountID, id string) (scoreboard.Player, error) {
	var p scoreboard.Player
	err := getDoc(ctx, s.db,
		`SELECT json(data) FROM players WHERE id = ? AND account_id = ?`, &p, id, accountID,
	)
	return p, err
}

// PlayersByID returns the players in the order of ids. Any id that is not a
// player of the account yields ErrNotFound.
func (s *DocStore) PlayersByID(ctx context.Context, accountID string, ids []string) ([]scoreboard.Player, error) {
	all, err := s.ListPlayers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]scoreboard.Player, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	out := make([]scoreboard.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *DocStore) DeletePlayer(ctx context.Context, accountID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM players WHERE id = ? AND account_id = ?`, id, accountID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// History

// ListHistory returns the games of an account, newest first, optionally
// limited to one game id. A limit of zero or less returns everything.
func (s *DocStore) ListHistory(ctx context.Context, accountID, gameID string, limit int) ([]scoreboard.HistoryEntry, error) {
	query := `SELECT json(data) FROM history WHERE account_id = ?`
	args := []any{accountID}
	if gameID != "" {
		query += ` AND game_id = ?`
		args = append(args, gameID)
	}
	query += ` ORDER BY played_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return listDocs[scoreboard.HistoryEntry](ctx, s.db, query, args...)
}

func (s *DocStore) AddHistory(ctx context.Context, accountID string, r game.Result) (scoreboard.HistoryEntry, error) {
	h := scoreboard.HistoryEntry{
		ID:        newID(),
		AccountID: accountID,
		Result:    r,
		PlayedAt:  s.nowUTC(),
	}
	if err := putHistory(ctx, s.db, h); err != nil {
		return scoreboard.HistoryEntry{}, fmt.Errorf("inserting history: %w", err)
	}
	return h, nil
}

func (s *DocStore) DeleteHistory(ctx context.Context, accountID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM history WHERE id = ? AND account_id = ?`, id, accountID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Admin

func (s *DocStore) AdminStats(ctx context.Context) (AdminStats, error) {
	var st AdminStats
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM accounts),
		       (SELECT COUNT(*) FROM players),
		       (SELECT COUNT(*) FROM history),
		       (SELECT COUNT(*) FROM auth_sessions WHERE expires_at > ?)
	`, s.nowUTC().UnixMilli()).Scan(&st.Accounts, &st.Players, &st.Games, &st.Sessions)
	return st, err
}
