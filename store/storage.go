package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"pdfrag/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrIndexNotFound means a query arrived before any ingestion created the
// index. Surfaced to the caller, never retried here.
var ErrIndexNotFound = errors.New("index not found: run the loader first")

// VectorStorer is the persisted similarity-searchable index. Entries are
// created once per identifier and never mutated; only Clear removes state.
type VectorStorer interface {
	Init(ctx context.Context) error
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	UpsertBatch(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error
	Search(ctx context.Context, queryVec []float32, limit int) ([]types.RetrievalResult, error)
	Clear(ctx context.Context) error
	Close() error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	query := `
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        page INT NOT NULL,
        position INT NOT NULL,
        content TEXT NOT NULL,
        metadata JSONB,
        embedding vector(768)
    );

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

// ExistingIDs fetches identifiers only, a lightweight existence query used to
// skip chunks that are already persisted.
func (p *PostgresStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	if err := p.ensureIndex(ctx); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, "SELECT id FROM chunks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// UpsertBatch writes all new chunks in one transaction. Identifiers already
// present are left untouched, so a retried run is safe.
func (p *PostgresStore) UpsertBatch(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings))
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
    INSERT INTO chunks (id, source, page, position, content, metadata, embedding)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (id) DO NOTHING
    `
	for i, c := range chunks {
		meta, err := json.Marshal(c.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}

		_, err = tx.Exec(ctx, query,
			c.ID, c.Source, c.Page, c.Position, c.Content, meta, pgvector.NewVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (p *PostgresStore) Search(ctx context.Context, queryVec []float32, limit int) ([]types.RetrievalResult, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if err := p.ensureIndex(ctx); err != nil {
		return nil, err
	}

	vector := pgvector.NewVector(queryVec)

	query := `
		SELECT id, content, 1-(embedding <=> $1) AS score
		FROM chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := p.pool.Query(ctx, query, vector, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.RetrievalResult
	for rows.Next() {
		var r types.RetrievalResult
		if err := rows.Scan(&r.ID, &r.Content, &r.Score); err != nil {
			return nil, err
		}
		log.Printf("[SEARCH] hit %s (score: %.4f)", r.ID, r.Score)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Clear removes the entire persisted index. Individual entries are never
// deleted any other way.
func (p *PostgresStore) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, "DROP TABLE IF EXISTS chunks")
	return err
}

func (p *PostgresStore) ensureIndex(ctx context.Context) error {
	var exists bool
	row := p.pool.QueryRow(ctx, "SELECT to_regclass('public.chunks') IS NOT NULL")
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrIndexNotFound
		}
		return err
	}
	if !exists {
		return ErrIndexNotFound
	}
	return nil
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
