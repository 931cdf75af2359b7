// Package store persists served quotes for offline analysis. Persistence is
// best-effort: a failed write never fails the request that produced it.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"aequiswap/internal/config"
	"aequiswap/internal/model"
)

// Store is a quote-history sink.
type Store interface {
	SaveQuote(ctx context.Context, record model.QuoteRecord) error
	Close() error
}

// Noop discards records.
type Noop struct{}

// SaveQuote discards the record.
func (Noop) SaveQuote(context.Context, model.QuoteRecord) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }

// FromConfig picks the history sink: Postgres when a DSN is set, JSONL when a
// path is set, otherwise a no-op.
func FromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	switch {
	case cfg.PGDSN != "":
		pg, err := NewPostgres(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres history: %w", err)
		}
		logger.Info("quote history to postgres")
		return pg, nil
	case cfg.HistoryPath != "":
		jl, err := NewJSONL(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("jsonl history: %w", err)
		}
		logger.Info("quote history to file", zap.String("path", cfg.HistoryPath))
		return jl, nil
	default:
		return Noop{}, nil
	}
}
