// Package discovery enumerates candidate pools for a token pair across the
// configured DEX descriptors of a chain.
package discovery

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aequiswap/internal/config"
	"aequiswap/internal/dex"
	"aequiswap/internal/model"
)

// PoolCandidate is one pool that may be able to serve the requested pair.
// Absence of a pool is not an error; candidates simply are not produced.
type PoolCandidate struct {
	DexID   string
	Version model.HopVersion
	Address common.Address
	Quoter  common.Address
}

// Discoverer finds pools through the Lens batch reader when one is
// configured, and degrades to direct factory calls otherwise.
type Discoverer struct {
	logger *zap.Logger
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{logger: logger}
}

// Discover returns every existing pool for (tokenIn, tokenOut) on the chain's
// DEXes, restricted to the allowed hop versions. A failing lookup drops that
// dex's candidates rather than the request.
func (d *Discoverer) Discover(
	ctx context.Context,
	caller dex.Caller,
	lens *dex.Lens,
	chain config.ChainConfig,
	tokenIn, tokenOut common.Address,
	allowed []model.HopVersion,
) []PoolCandidate {
	allowedSet := make(map[model.HopVersion]bool, len(allowed))
	for _, version := range allowed {
		allowedSet[version] = true
	}

	var (
		mu         sync.Mutex
		candidates []PoolCandidate
	)
	group, groupCtx := errgroup.WithContext(ctx)

	for _, dexCfg := range chain.Dexes {
		dexCfg := dexCfg
		if !allowedSet[dexCfg.HopVersion()] {
			continue
		}

		group.Go(func() error {
			found := d.discoverDex(groupCtx, caller, lens, dexCfg, tokenIn, tokenOut)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			candidates = append(candidates, found...)
			mu.Unlock()
			return nil
		})
	}

	// Branches never return errors; failures are logged and dropped.
	_ = group.Wait()
	return candidates
}

func (d *Discoverer) discoverDex(
	ctx context.Context,
	caller dex.Caller,
	lens *dex.Lens,
	dexCfg config.DexConfig,
	tokenIn, tokenOut common.Address,
) []PoolCandidate {
	if dexCfg.HopVersion() == model.HopV2 {
		return d.discoverV2(ctx, caller, lens, dexCfg, tokenIn, tokenOut)
	}
	return d.discoverV3(ctx, caller, lens, dexCfg, tokenIn, tokenOut)
}

func (d *Discoverer) discoverV2(
	ctx context.Context,
	caller dex.Caller,
	lens *dex.Lens,
	dexCfg config.DexConfig,
	tokenIn, tokenOut common.Address,
) []PoolCandidate {
	factory := common.HexToAddress(dexCfg.Factory)

	var (
		pair common.Address
		err  error
	)
	if lens != nil {
		var pools []common.Address
		pools, err = lens.V2Pools(ctx, factory, []dex.PairRequest{{Token0: tokenIn, Token1: tokenOut}})
		if err == nil && len(pools) > 0 {
			pair = pools[0]
		}
	} else {
		factoryABI, abiErr := dex.V2FactoryABI()
		if abiErr != nil {
			err = abiErr
		} else {
			var values []interface{}
			values, err = dex.Call(ctx, caller, factory, factoryABI, "getPair", tokenIn, tokenOut)
			if err == nil && len(values) > 0 {
				if addr, ok := values[0].(common.Address); ok {
					pair = addr
				}
			}
		}
	}

	if err != nil {
		d.logger.Warn("v2 pool lookup failed",
			zap.String("dex", dexCfg.ID),
			zap.Error(err))
		return nil
	}
	if pair == dex.ZeroAddress {
		return nil
	}

	return []PoolCandidate{{
		DexID:   dexCfg.ID,
		Version: model.HopV2,
		Address: pair,
	}}
}

func (d *Discoverer) discoverV3(
	ctx context.Context,
	caller dex.Caller,
	lens *dex.Lens,
	dexCfg config.DexConfig,
	tokenIn, tokenOut common.Address,
) []PoolCandidate {
	factory := common.HexToAddress(dexCfg.Factory)
	quoter := common.HexToAddress(dexCfg.Quoter)

	if lens != nil {
		tiers, err := lens.V3PoolsAllFees(ctx, factory, []dex.PairRequest{{Token0: tokenIn, Token1: tokenOut}})
		if err != nil {
			d.logger.Warn("v3 pool lookup failed",
				zap.String("dex", dexCfg.ID),
				zap.Error(err))
			return nil
		}
		if len(tiers) == 0 {
			return nil
		}

		var found []PoolCandidate
		for _, pool := range tiers[0] {
			if pool == dex.ZeroAddress {
				continue
			}
			found = append(found, PoolCandidate{
				DexID:   dexCfg.ID,
				Version: model.HopV3,
				Address: pool,
				Quoter:  quoter,
			})
		}
		return found
	}

	factoryABI, err := dex.V3FactoryABI()
	if err != nil {
		d.logger.Warn("v3 factory abi", zap.Error(err))
		return nil
	}

	var (
		mu    sync.Mutex
		found []PoolCandidate
	)
	group, groupCtx := errgroup.WithContext(ctx)
	for _, fee := range dexCfg.FeeTiers {
		fee := fee
		group.Go(func() error {
			values, err := dex.Call(groupCtx, caller, factory, factoryABI, "getPool",
				tokenIn, tokenOut, new(big.Int).SetUint64(uint64(fee)))
			if err != nil {
				d.logger.Warn("v3 getPool failed",
					zap.String("dex", dexCfg.ID),
					zap.Uint32("fee", fee),
					zap.Error(err))
				return nil
			}
			if len(values) == 0 {
				return nil
			}
			pool, ok := values[0].(common.Address)
			if !ok || pool == dex.ZeroAddress {
				return nil
			}
			mu.Lock()
			found = append(found, PoolCandidate{
				DexID:   dexCfg.ID,
				Version: model.HopV3,
				Address: pool,
				Quoter:  quoter,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return found
}
