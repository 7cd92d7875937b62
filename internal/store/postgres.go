package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/madhava696/EACA/internal/conversation"
)

// PostgresStore implements Store on a PostgreSQL database, one row per
// conversation key with the turns held as a JSONB document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			key        text PRIMARY KEY,
			turns      jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]conversation.Turn, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT turns FROM conversations WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}

	var turns []conversation.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return turns, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, turns []conversation.Turn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversations (key, turns, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET turns = EXCLUDED.turns, updated_at = now()`,
		key, raw)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
