// Package store persists scoring runs to PostgreSQL. Embeddings are
// kept in a pgvector column so previously scored images can be queried
// by visual similarity.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rockerboo/ae-score/internal/types"
)

// EmbeddingDim is the vector column width. Matches the default ViT-L
// pipeline; runs with other encoder dimensions store NULL embeddings.
const EmbeddingDim = 768

// Store manages the PostgreSQL connection and pgvector operations.
type Store struct {
	conn *pgx.Conn
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS score_runs (
			id BIGSERIAL PRIMARY KEY,
			path TEXT NOT NULL,
			model TEXT NOT NULL,
			clip_model TEXT NOT NULL,
			mean_score DOUBLE PRECISION NOT NULL,
			file_count INT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS image_scores (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT REFERENCES score_runs(id) ON DELETE CASCADE,
			file TEXT NOT NULL,
			score REAL NOT NULL,
			embedding VECTOR(768)
		);
		CREATE INDEX IF NOT EXISTS image_scores_run_id_idx ON image_scores (run_id);
		CREATE INDEX IF NOT EXISTS image_scores_embedding_idx ON image_scores USING hnsw (embedding vector_cosine_ops);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// InsertRun registers a completed scoring run and returns its ID.
func (s *Store) InsertRun(ctx context.Context, run types.Run) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx, `
		INSERT INTO score_runs (path, model, clip_model, mean_score, file_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, run.Path, run.Model, run.ClipModel, run.Mean, run.Count).Scan(&id)
	return id, err
}

// InsertScores saves the per-image records of a run. embeddings may be
// nil; vectors whose dimension does not match the column are stored as
// NULL rather than rejected.
func (s *Store) InsertScores(ctx context.Context, runID int64, records []types.ScoreRecord, embeddings [][]float32) error {
	for i, rec := range records {
		var vec any
		if i < len(embeddings) && len(embeddings[i]) == EmbeddingDim {
			vec = vecToString(embeddings[i])
		}
		_, err := s.conn.Exec(ctx, `
			INSERT INTO image_scores (run_id, file, score, embedding)
			VALUES ($1, $2, $3, $4::vector)
		`, runID, rec.File, rec.Score, vec)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListRuns returns all persisted runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]types.Run, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, path, model, clip_model, mean_score, file_count, created_at
		FROM score_runs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var run types.Run
		if err := rows.Scan(&run.ID, &run.Path, &run.Model, &run.ClipModel, &run.Mean, &run.Count, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindSimilar returns the stored images nearest to vec by cosine
// distance, closest first.
func (s *Store) FindSimilar(ctx context.Context, vec []float32, limit int) ([]types.Match, error) {
	if len(vec) != EmbeddingDim {
		return nil, fmt.Errorf("query vector has %d components, store holds %d", len(vec), EmbeddingDim)
	}
	vecStr := vecToString(vec)

	// <=> is the cosine distance operator in pgvector
	rows, err := s.conn.Query(ctx, `
		SELECT run_id, file, score, embedding <=> $1::vector AS distance
		FROM image_scores
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector ASC
		LIMIT $2
	`, vecStr, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		var m types.Match
		if err := rows.Scan(&m.RunID, &m.File, &m.Score, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Reset drops all application tables to clear the database state.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS image_scores CASCADE;
		DROP TABLE IF EXISTS score_runs CASCADE;
	`)
	return err
}

// vecToString formats a float slice into a PostgreSQL vector string format "[1.0,2.0,...]"
func vecToString(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%f", v)
	}
	b.WriteByte(']')
	return b.String()
}
