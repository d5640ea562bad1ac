package repository

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/pipeline"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps one JSONB row per workspace in pipeline_state.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore wraps a pool or transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Load(ctx context.Context, workspace string) (pipeline.State, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT state
		FROM pipeline_state
		WHERE workspace = $1
	`, workspace).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return pipeline.State{}, ErrStateNotFound
	}
	if err != nil {
		return pipeline.State{}, fmt.Errorf("load pipeline state: %w", err)
	}
	return decodeState(raw)
}

func (s *PostgresStore) Save(ctx context.Context, workspace string, state pipeline.State) error {
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pipeline_state (workspace, state, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (workspace) DO UPDATE
		SET state = EXCLUDED.state,
			version = pipeline_state.version + 1,
			updated_at = now()
	`, workspace, raw)
	if err != nil {
		return fmt.Errorf("save pipeline state: %w", err)
	}
	return nil
}
