package server

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/scoreboard/internal/play"
)

// SQLSessionStore keeps saved game sessions in the game_sessions table.
type SQLSessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLSessionStore(db *sql.DB) *SQLSessionStore {
	return &SQLSessionStore{db: db, now: time.Now}
}

func (s *SQLSessionStore) Save(ctx context.Context, accountID string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_sessions (account_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		accountID, string(data), formatTime(s.now()),
	)
	return err
}

func (s *SQLSessionStore) Load(ctx context.Context, accountID string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM game_sessions WHERE account_id = ?`, accountID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, play.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *SQLSessionStore) Clear(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE account_id = ?`, accountID)
	return err
}

const redisSessionPrefix = "scoreboard:session:"

// RedisSessionStore keeps saved game sessions in Redis. Untouched sessions
// expire after ttl.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Save(ctx context.Context, accountID string, data []byte) error {
	return s.rdb.Set(ctx, redisSessionPrefix+accountID, data, s.ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, accountID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, redisSessionPrefix+accountID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, play.ErrNoSession
	}
	return data, err
}

func (s *RedisSessionStore) Clear(ctx context.Context, accountID string) error {
	return s.rdb.Del(ctx, redisSessionPrefix+accountID).Err()
}
