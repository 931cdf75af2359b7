// Package token resolves ERC-20 metadata through batched Lens reads with a
// TTL-bounded cache.
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"aequiswap/internal/dex"
	"aequiswap/internal/model"
)

// ErrTokenNotFound reports the on-chain "no such token" signal: an empty
// symbol together with zero decimals in the batched read.
var ErrTokenNotFound = errors.New("token not found")

// MetadataReader is the batch-read surface the resolver needs; *dex.Lens
// implements it.
type MetadataReader interface {
	TokenMetadata(ctx context.Context, tokens []common.Address) ([]dex.TokenMetadataResult, error)
}

type cacheEntry struct {
	meta      model.TokenMetadata
	expiresAt time.Time
}

// Resolver resolves token metadata, batching lookups and caching entries for
// a bounded TTL. Entries are immutable once cached.
type Resolver struct {
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewResolver creates a resolver with the given cache TTL.
func NewResolver(ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

func cacheKey(chainID uint64, address common.Address) string {
	return fmt.Sprintf("%d-%s", chainID, strings.ToLower(address.Hex()))
}

// Resolve returns metadata for the given addresses, in order. Cache misses
// and expired entries are fetched in one batched Lens read. Addresses are
// normalized to checksummed form; lookups are case-insensitive. Any address
// with no on-chain metadata fails the whole lookup.
func (r *Resolver) Resolve(ctx context.Context, reader MetadataReader, chainID uint64, addresses ...common.Address) ([]model.TokenMetadata, error) {
	results, found, err := r.resolve(ctx, reader, chainID, addresses)
	if err != nil {
		return nil, err
	}
	for i, ok := range found {
		if !ok {
			return nil, fmt.Errorf("%w: %s on chain %d", ErrTokenNotFound, addresses[i].Hex(), chainID)
		}
	}
	return results, nil
}

// ResolveKnown resolves the same way but drops addresses with no on-chain
// metadata instead of failing. Configured token lists can go stale; a dead
// entry only loses its own routes.
func (r *Resolver) ResolveKnown(ctx context.Context, reader MetadataReader, chainID uint64, addresses ...common.Address) ([]model.TokenMetadata, error) {
	results, found, err := r.resolve(ctx, reader, chainID, addresses)
	if err != nil {
		return nil, err
	}
	known := make([]model.TokenMetadata, 0, len(results))
	for i, ok := range found {
		if !ok {
			r.logger.Warn("unknown token skipped",
				zap.String("address", addresses[i].Hex()),
				zap.Uint64("chain", chainID))
			continue
		}
		known = append(known, results[i])
	}
	return known, nil
}

func (r *Resolver) resolve(ctx context.Context, reader MetadataReader, chainID uint64, addresses []common.Address) ([]model.TokenMetadata, []bool, error) {
	results := make([]model.TokenMetadata, len(addresses))
	found := make([]bool, len(addresses))
	missing := make([]common.Address, 0, len(addresses))
	missingIdx := make([]int, 0, len(addresses))

	now := r.now()
	r.mu.RLock()
	for i, address := range addresses {
		entry, ok := r.cache[cacheKey(chainID, address)]
		if ok && now.Before(entry.expiresAt) {
			results[i] = entry.meta
			found[i] = true
			continue
		}
		missing = append(missing, address)
		missingIdx = append(missingIdx, i)
	}
	r.mu.RUnlock()

	if len(missing) == 0 {
		return results, found, nil
	}

	fetched, err := reader.TokenMetadata(ctx, missing)
	if err != nil {
		return nil, nil, fmt.Errorf("batch token metadata: %w", err)
	}

	expiresAt := now.Add(r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, result := range fetched {
		address := missing[i]
		// Empty symbol with zero decimals is the on-chain "no such token"
		// signal; never cached, so a later deployment is picked up.
		if !result.Exists || (result.Symbol == "" && result.Decimals == 0) {
			continue
		}
		meta := model.TokenMetadata{
			ChainID:  chainID,
			Address:  address.Hex(),
			Symbol:   result.Symbol,
			Name:     result.Name,
			Decimals: result.Decimals,
		}
		r.cache[cacheKey(chainID, address)] = cacheEntry{meta: meta, expiresAt: expiresAt}
		results[missingIdx[i]] = meta
		found[missingIdx[i]] = true
		r.logger.Debug("token resolved",
			zap.String("address", meta.Address),
			zap.String("symbol", meta.Symbol),
			zap.Uint64("chain", chainID))
	}

	return results, found, nil
}
