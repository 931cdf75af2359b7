package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"aequiswap/internal/model"
)

const createQuotesTable = `
CREATE TABLE IF NOT EXISTS quotes (
	id               BIGSERIAL PRIMARY KEY,
	chain            TEXT NOT NULL,
	token_in         TEXT NOT NULL,
	token_out        TEXT NOT NULL,
	symbol_in        TEXT NOT NULL,
	symbol_out       TEXT NOT NULL,
	amount_in        NUMERIC NOT NULL,
	amount_out       NUMERIC NOT NULL,
	route            TEXT[] NOT NULL,
	hop_versions     TEXT[] NOT NULL,
	price_impact_bps BIGINT NOT NULL,
	candidate_count  INT NOT NULL,
	quoted_at        TIMESTAMPTZ NOT NULL
)`

const insertQuote = `
INSERT INTO quotes (
	chain, token_in, token_out, symbol_in, symbol_out,
	amount_in, amount_out, route, hop_versions,
	price_impact_bps, candidate_count, quoted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Postgres persists quote records through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection, and ensures the quotes table
// exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, createQuotesTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure quotes table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// SaveQuote inserts one record.
func (s *Postgres) SaveQuote(ctx context.Context, record model.QuoteRecord) error {
	_, err := s.pool.Exec(ctx, insertQuote,
		record.Chain,
		record.TokenIn,
		record.TokenOut,
		record.SymbolIn,
		record.SymbolOut,
		record.AmountIn,
		record.AmountOut,
		record.Route,
		record.HopVersions,
		record.PriceImpactBps,
		record.CandidateCount,
		record.QuotedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
