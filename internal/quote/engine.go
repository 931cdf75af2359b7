package quote

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aequiswap/internal/config"
	"aequiswap/internal/dex"
	"aequiswap/internal/discovery"
	"aequiswap/internal/fixedpoint"
	"aequiswap/internal/model"
)

// ErrNoRoute reports that zero candidates survived discovery and pricing. It
// is a user-facing condition distinct from infrastructure failure.
var ErrNoRoute = errors.New("no route found")

// GasPricer supplies the gas price observed once per request. chain.Client
// implements it.
type GasPricer interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Request carries one fully-resolved pricing request. Intermediates are the
// chain's configured base tokens, already resolved to metadata so leg pricing
// has decimals at hand.
type Request struct {
	Chain         config.ChainConfig
	TokenIn       model.TokenMetadata
	TokenOut      model.TokenMetadata
	Intermediates []model.TokenMetadata
	AmountIn      *big.Int
	Preference    model.RoutePreference
}

// Engine prices a trade across every discovered pool and 2-hop composition,
// then ranks the survivors. All state is request-scoped; the engine itself is
// safe for concurrent use.
type Engine struct {
	discoverer     *discovery.Discoverer
	minV2Reserve   *big.Int
	minV3Liquidity *big.Int
	ttl            time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewEngine creates an Engine with the thresholds and quote validity window
// from config.
func NewEngine(discoverer *discovery.Discoverer, cfg config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := time.Duration(cfg.QuoteTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Engine{
		discoverer:     discoverer,
		minV2Reserve:   cfg.MinV2Reserve,
		minV3Liquidity: cfg.MinV3Liquidity,
		ttl:            ttl,
		logger:         logger,
		now:            time.Now,
	}
}

// BestQuote evaluates direct pools and one 2-hop branch per intermediate
// token fully in parallel, and returns the ranked winner with the remaining
// candidates attached as offers. Partial failures drop candidates; the
// request fails only when nothing survives.
func (e *Engine) BestQuote(ctx context.Context, caller dex.Caller, lens *dex.Lens, gas GasPricer, req Request) (*model.PriceQuote, error) {
	gasPrice := e.observeGasPrice(ctx, gas)
	allowed := req.Preference.AllowedVersions()

	var (
		mu         sync.Mutex
		candidates []*model.PriceQuote
	)
	collect := func(quotes ...*model.PriceQuote) {
		if len(quotes) == 0 {
			return
		}
		mu.Lock()
		candidates = append(candidates, quotes...)
		mu.Unlock()
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		collect(e.directQuotes(groupCtx, caller, lens, req.Chain, req.TokenIn, req.TokenOut, req.AmountIn, gasPrice, allowed)...)
		return nil
	})

	for _, mid := range req.Intermediates {
		mid := mid
		if sameToken(mid, req.TokenIn) || sameToken(mid, req.TokenOut) {
			continue
		}
		group.Go(func() error {
			// Leg B's input is leg A's output, so the legs are ordered;
			// candidate pools within each leg still fan out in parallel.
			legA := bestOf(e.directQuotes(groupCtx, caller, lens, req.Chain, req.TokenIn, mid, req.AmountIn, gasPrice, allowed))
			if legA == nil || legA.AmountOut.Sign() <= 0 {
				return nil
			}
			legB := bestOf(e.directQuotes(groupCtx, caller, lens, req.Chain, mid, req.TokenOut, legA.AmountOut, gasPrice, allowed))
			if legB == nil {
				return nil
			}
			if combined, ok := ComposeTwoHop(legA, legB, gasPrice); ok {
				collect(combined)
			}
			return nil
		})
	}

	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best, ok := SelectBest(candidates)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s on %s", ErrNoRoute, req.TokenIn.Symbol, req.TokenOut.Symbol, req.Chain.Key)
	}

	expiresAt := e.now().Add(e.ttl)
	best.ExpiresAt = expiresAt
	for _, offer := range best.Offers {
		offer.ExpiresAt = expiresAt
	}

	e.logger.Info("quote selected",
		zap.String("chain", req.Chain.Key),
		zap.String("in", req.TokenIn.Symbol),
		zap.String("out", req.TokenOut.Symbol),
		zap.String("amount_out", best.AmountOut.String()),
		zap.Int("hops", len(best.Sources)),
		zap.Int("offers", len(best.Offers)))
	return best, nil
}

func (e *Engine) observeGasPrice(ctx context.Context, gas GasPricer) *big.Int {
	if gas == nil {
		return nil
	}
	price, err := gas.SuggestGasPrice(ctx)
	if err != nil {
		e.logger.Warn("gas price unavailable", zap.Error(err))
		return nil
	}
	return price
}

// directQuotes prices every discovered pool for one hop. Each surviving pool
// becomes an independent single-hop candidate.
func (e *Engine) directQuotes(
	ctx context.Context,
	caller dex.Caller,
	lens *dex.Lens,
	chain config.ChainConfig,
	tokenIn, tokenOut model.TokenMetadata,
	amountIn, gasPrice *big.Int,
	allowed []model.HopVersion,
) []*model.PriceQuote {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil
	}

	inAddr := common.HexToAddress(tokenIn.Address)
	outAddr := common.HexToAddress(tokenOut.Address)
	found := e.discoverer.Discover(ctx, caller, lens, chain, inAddr, outAddr, allowed)
	if len(found) == 0 {
		return nil
	}

	var v2Candidates, v3Candidates []discovery.PoolCandidate
	for _, candidate := range found {
		if candidate.Version == model.HopV2 {
			v2Candidates = append(v2Candidates, candidate)
		} else {
			v3Candidates = append(v3Candidates, candidate)
		}
	}

	var (
		mu     sync.Mutex
		quotes []*model.PriceQuote
	)
	group, groupCtx := errgroup.WithContext(ctx)

	if len(v2Candidates) > 0 {
		group.Go(func() error {
			pools := candidateAddresses(v2Candidates)
			snapshots := e.v2Snapshots(groupCtx, caller, lens, pools, inAddr)
			for _, candidate := range v2Candidates {
				snap, ok := snapshots[candidate.Address]
				if !ok {
					continue
				}
				hop, ok := QuoteV2(snap, candidate.DexID, amountIn, tokenIn.Decimals, tokenOut.Decimals, e.minV2Reserve)
				if !ok {
					continue
				}
				quote := singleHopQuote(chain.Key, tokenIn, tokenOut, hop, gasPrice)
				mu.Lock()
				quotes = append(quotes, quote)
				mu.Unlock()
			}
			return nil
		})
	}

	if len(v3Candidates) > 0 {
		group.Go(func() error {
			pools := candidateAddresses(v3Candidates)
			snapshots := e.v3Snapshots(groupCtx, caller, lens, pools)

			inner, innerCtx := errgroup.WithContext(groupCtx)
			for _, candidate := range v3Candidates {
				candidate := candidate
				snap, ok := snapshots[candidate.Address]
				if !ok {
					continue
				}
				inner.Go(func() error {
					hop, ok := e.quoteV3(innerCtx, caller, candidate, snap, inAddr, amountIn, tokenIn.Decimals, tokenOut.Decimals)
					if !ok {
						return nil
					}
					quote := singleHopQuote(chain.Key, tokenIn, tokenOut, hop, gasPrice)
					mu.Lock()
					quotes = append(quotes, quote)
					mu.Unlock()
					return nil
				})
			}
			return inner.Wait()
		})
	}

	_ = group.Wait()
	return quotes
}

// quoteV3 prefers a real quoter simulation and falls back to the approximate
// mid-price output when none can be made.
func (e *Engine) quoteV3(
	ctx context.Context,
	caller dex.Caller,
	candidate discovery.PoolCandidate,
	snap model.V3PoolSnapshot,
	tokenIn common.Address,
	amountIn *big.Int,
	inDecimals, outDecimals uint8,
) (SourceQuote, bool) {
	token0 := common.HexToAddress(snap.Token0)
	token1 := common.HexToAddress(snap.Token1)
	var tokenOut common.Address
	switch tokenIn {
	case token0:
		tokenOut = token1
	case token1:
		tokenOut = token0
	default:
		return SourceQuote{}, false
	}
	zeroForOne := tokenIn == token0

	if candidate.Quoter != dex.ZeroAddress {
		amountOut, err := dex.QuoteExactInputSingle(ctx, caller, candidate.Quoter, dex.QuoteExactInputSingleParams{
			TokenIn:  tokenIn,
			TokenOut: tokenOut,
			AmountIn: amountIn,
			Fee:      new(big.Int).SetUint64(uint64(snap.Fee)),
		})
		if err == nil {
			if hop, ok := QuoteV3Exact(snap, candidate.DexID, amountIn, amountOut, inDecimals, outDecimals, zeroForOne, e.minV3Liquidity); ok {
				return hop, true
			}
		} else {
			e.logger.Debug("quoter simulation failed, falling back to mid price",
				zap.String("pool", snap.PoolAddress),
				zap.Error(err))
		}
	}

	return QuoteV3Approx(snap, candidate.DexID, amountIn, inDecimals, outDecimals, zeroForOne, e.minV3Liquidity)
}

func singleHopQuote(chainKey string, tokenIn, tokenOut model.TokenMetadata, hop SourceQuote, gasPrice *big.Int) *model.PriceQuote {
	versions := []model.HopVersion{hop.Version}
	units := EstimateGasUnits(versions)
	execution := fixedpoint.ExecutionPriceQ18(hop.Source.AmountIn, hop.Source.AmountOut, tokenIn.Decimals, tokenOut.Decimals)

	return &model.PriceQuote{
		Chain:               chainKey,
		AmountIn:            new(big.Int).Set(hop.Source.AmountIn),
		AmountOut:           new(big.Int).Set(hop.Source.AmountOut),
		PriceQ18:            execution,
		ExecutionPriceQ18:   new(big.Int).Set(execution),
		MidPriceQ18:         hop.MidPriceQ18,
		PriceImpactBps:      hop.PriceImpactBps,
		Path:                []model.TokenMetadata{tokenIn, tokenOut},
		Sources:             []model.PriceSource{hop.Source},
		LiquidityScore:      hop.LiquidityScore,
		HopVersions:         versions,
		EstimatedGasUnits:   units,
		EstimatedGasCostWei: GasCost(units, gasPrice),
		GasPriceWei:         copyBig(gasPrice),
	}
}

// bestOf ranks candidates without attaching offers; used for leg selection.
func bestOf(candidates []*model.PriceQuote) *model.PriceQuote {
	var best *model.PriceQuote
	for _, candidate := range candidates {
		if best == nil || Compare(candidate, best) < 0 {
			best = candidate
		}
	}
	return best
}

func candidateAddresses(candidates []discovery.PoolCandidate) []common.Address {
	addresses := make([]common.Address, 0, len(candidates))
	for _, candidate := range candidates {
		addresses = append(addresses, candidate.Address)
	}
	return addresses
}

func sameToken(a, b model.TokenMetadata) bool {
	return strings.EqualFold(a.Address, b.Address)
}
