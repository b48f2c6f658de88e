// Package store persists pipeline runs and their artifacts in PostgreSQL.
// Every artifact is kept as a jsonb payload next to the run it came from.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/filingmap/internal/config"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// DBTX is the part of pgxpool.Pool (and pgx.Tx) the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Kind classifies an artifact.
type Kind string

const (
	KindPlacements  Kind = "placements"
	KindAttachments Kind = "attachments"
	KindFormTables  Kind = "form_tables"
	KindFacts       Kind = "xbrl_facts"
	KindFactTables  Kind = "fact_tables"
	KindXBRLTables  Kind = "xbrl_tables"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Artifact is one stored output of a run. Payload holds the JSON that was
// also written to disk; Error is set when producing it failed.
type Artifact struct {
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	Kind      Kind            `json:"kind"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Run summarises one pipeline execution.
type Run struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Summary    json.RawMessage `json:"summary,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS filing_runs (
	id          uuid PRIMARY KEY,
	status      text NOT NULL,
	started_at  timestamptz NOT NULL,
	finished_at timestamptz,
	summary     jsonb
);

CREATE TABLE IF NOT EXISTS filing_artifacts (
	id         uuid PRIMARY KEY,
	run_id     uuid NOT NULL REFERENCES filing_runs(id) ON DELETE CASCADE,
	kind       text NOT NULL,
	source     text NOT NULL,
	payload    jsonb,
	error      text,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS filing_artifacts_run_idx ON filing_artifacts (run_id, created_at);
`

// Store is the results repository.
type Store struct {
	db DBTX
}

// New wraps a pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Connect opens and pings a pool sized by cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// EnsureSchema creates the tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// StartRun records a new run in the running state.
func (s *Store) StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO filing_runs (id, status, started_at) VALUES ($1, $2, $3)`,
		pgUUID(runID), StatusRunning, startedAt)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and a JSON summary of the run.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, status string, summary any) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("finish run: encode summary: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE filing_runs SET status = $2, finished_at = $3, summary = $4 WHERE id = $1`,
		pgUUID(runID), status, time.Now().UTC(), payload)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// SaveArtifact stores payload (any JSON-encodable value, or nil) with the
// error text of a failed step. It returns the new artifact id.
func (s *Store) SaveArtifact(ctx context.Context, runID uuid.UUID, kind Kind, source string, payload any, stepErr error) (uuid.UUID, error) {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return uuid.Nil, fmt.Errorf("save artifact %s: encode payload: %w", source, err)
		}
	}

	errText := pgtype.Text{}
	if stepErr != nil {
		errText = pgtype.Text{String: stepErr.Error(), Valid: true}
	}

	id := uuid.New()
	_, err := s.db.Exec(ctx,
		`INSERT INTO filing_artifacts (id, run_id, kind, source, payload, error) VALUES ($1, $2, $3, $4, $5, $6)`,
		pgUUID(id), pgUUID(runID), string(kind), source, data, errText)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save artifact %s: %w", source, err)
	}
	return id, nil
}

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var (
		id         pgtype.UUID
		status     string
		startedAt  pgtype.Timestamptz
		finishedAt pgtype.Timestamptz
		summary    []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, status, started_at, finished_at, summary FROM filing_runs WHERE id = $1`,
		pgUUID(runID)).Scan(&id, &status, &startedAt, &finishedAt, &summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	run := &Run{
		ID:        uuidString(id),
		Status:    status,
		StartedAt: startedAt.Time,
		Summary:   summary,
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return run, nil
}

// ListArtifacts returns the artifacts of a run in creation order.
func (s *Store) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]Artifact, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, run_id, kind, source, payload, error, created_at
		FROM filing_artifacts WHERE run_id = $1 ORDER BY created_at, source`,
		pgUUID(runID))
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := make([]Artifact, 0)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

func scanArtifact(rows pgx.Rows) (Artifact, error) {
	var (
		id        pgtype.UUID
		runID     pgtype.UUID
		kind      string
		source    string
		payload   []byte
		errText   pgtype.Text
		createdAt pgtype.Timestamptz
	)
	if err := rows.Scan(&id, &runID, &kind, &source, &payload, &errText, &createdAt); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		ID:        uuidString(id),
		RunID:     uuidString(runID),
		Kind:      Kind(kind),
		Source:    source,
		Payload:   payload,
		Error:     errText.String,
		CreatedAt: createdAt.Time,
	}, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
