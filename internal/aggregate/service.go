// Package aggregate orchestrates one quote or swap-build request end to end:
// validation, metadata resolution, pricing, ranking, and plan construction.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"aequiswap/internal/chain"
	"aequiswap/internal/config"
	"aequiswap/internal/dex"
	"aequiswap/internal/fixedpoint"
	"aequiswap/internal/model"
	"aequiswap/internal/quote"
	"aequiswap/internal/store"
	"aequiswap/internal/swap"
	"aequiswap/internal/token"
)

// ErrInvalidRequest marks validation failures. They are rejected before any
// network call is made.
var ErrInvalidRequest = errors.New("invalid request")

// nativeSentinel is the conventional pseudo-address for the chain's native
// asset. "native" is accepted as an alias.
const nativeSentinel = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// QuoteParams is one quote request as received from the outer layer, amounts
// still in string form.
type QuoteParams struct {
	Chain      string
	TokenIn    string
	TokenOut   string
	AmountIn   string
	Preference string
}

// SwapParams extends QuoteParams with what a transaction plan needs.
// SlippageBps below zero means "use the configured default".
type SwapParams struct {
	QuoteParams
	Recipient   string
	SlippageBps int
}

// Service wires the request pipeline. All dependencies are injected; the
// service holds no per-request state.
type Service struct {
	cfg      config.Config
	pool     *chain.Pool
	resolver *token.Resolver
	engine   *quote.Engine
	builder  *swap.Builder
	history  store.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the orchestration service.
func NewService(
	cfg config.Config,
	pool *chain.Pool,
	resolver *token.Resolver,
	engine *quote.Engine,
	builder *swap.Builder,
	history store.Store,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if history == nil {
		history = store.Noop{}
	}
	return &Service{
		cfg:      cfg,
		pool:     pool,
		resolver: resolver,
		engine:   engine,
		builder:  builder,
		history:  history,
		logger:   logger,
		now:      time.Now,
	}
}

type preparedRequest struct {
	chainCfg      config.ChainConfig
	client        *chain.Client
	lens          *dex.Lens
	reader        token.MetadataReader
	tokenIn       string
	tokenOut      string
	nativeIn      bool
	nativeOut     bool
	amountRaw     string
	preference    model.RoutePreference
	intermediates []string
}

// prepare validates the request and establishes chain access. Validation
// failures never reach the network.
func (s *Service) prepare(ctx context.Context, params QuoteParams) (*preparedRequest, error) {
	chainCfg, err := s.cfg.Chain(params.Chain)
	if err != nil {
		return nil, err
	}

	// Raw base units or a human decimal amount. The decimal form needs the
	// resolved tokenIn decimals, so only the syntax is checked here.
	amountRaw := strings.TrimSpace(params.AmountIn)
	if !validAmount(amountRaw) {
		return nil, fmt.Errorf("%w: amountIn must be a positive amount", ErrInvalidRequest)
	}

	tokenIn, nativeIn, err := normalizeToken(chainCfg, params.TokenIn)
	if err != nil {
		return nil, err
	}
	tokenOut, nativeOut, err := normalizeToken(chainCfg, params.TokenOut)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(tokenIn, tokenOut) {
		return nil, fmt.Errorf("%w: tokenIn and tokenOut are identical", ErrInvalidRequest)
	}

	preference, err := parsePreference(params.Preference)
	if err != nil {
		return nil, err
	}

	client, err := s.pool.Client(ctx, chainCfg.Key)
	if err != nil {
		return nil, err
	}

	var (
		lens   *dex.Lens
		reader token.MetadataReader
	)
	if chainCfg.Lens != "" {
		lens = dex.NewLens(common.HexToAddress(chainCfg.Lens), client)
		reader = lens
	} else {
		reader = dex.NewERC20Reader(client)
	}

	return &preparedRequest{
		chainCfg:      chainCfg,
		client:        client,
		lens:          lens,
		reader:        reader,
		tokenIn:       tokenIn,
		tokenOut:      tokenOut,
		nativeIn:      nativeIn,
		nativeOut:     nativeOut,
		amountRaw:     amountRaw,
		preference:    preference,
		intermediates: chainCfg.Intermediates,
	}, nil
}

// Quote prices one request and returns the ranked winner with offers.
func (s *Service) Quote(ctx context.Context, params QuoteParams) (*model.PriceQuote, error) {
	prepared, err := s.prepare(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.quotePrepared(ctx, prepared)
}

func (s *Service) quotePrepared(ctx context.Context, prepared *preparedRequest) (*model.PriceQuote, error) {
	endpoints, err := s.resolver.Resolve(ctx, prepared.reader, prepared.chainCfg.ChainID,
		common.HexToAddress(prepared.tokenIn),
		common.HexToAddress(prepared.tokenOut))
	if err != nil {
		return nil, err
	}

	// Endpoints must exist; a stale configured intermediate only loses its
	// own 2-hop branch.
	midAddresses := make([]common.Address, 0, len(prepared.intermediates))
	for _, intermediate := range prepared.intermediates {
		midAddresses = append(midAddresses, common.HexToAddress(intermediate))
	}
	intermediates, err := s.resolver.ResolveKnown(ctx, prepared.reader, prepared.chainCfg.ChainID, midAddresses...)
	if err != nil {
		return nil, err
	}

	amountIn, err := fixedpoint.ParseDecimalAmount(prepared.amountRaw, endpoints[0].Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	best, err := s.engine.BestQuote(ctx, prepared.client, prepared.lens, prepared.client, quote.Request{
		Chain:         prepared.chainCfg,
		TokenIn:       endpoints[0],
		TokenOut:      endpoints[1],
		Intermediates: intermediates,
		AmountIn:      amountIn,
		Preference:    prepared.preference,
	})
	if err != nil {
		return nil, err
	}

	record := model.NewQuoteRecord(best, 1+len(best.Offers), s.now())
	if err := s.history.SaveQuote(ctx, record); err != nil {
		s.logger.Warn("quote history write failed", zap.Error(err))
	}
	return best, nil
}

// BuildSwap prices the request and converts the winner into an executor plan.
func (s *Service) BuildSwap(ctx context.Context, params SwapParams) (*model.PriceQuote, *model.SwapTransactionPlan, error) {
	if !common.IsHexAddress(params.Recipient) {
		return nil, nil, fmt.Errorf("%w: invalid recipient address", ErrInvalidRequest)
	}

	prepared, err := s.prepare(ctx, params.QuoteParams)
	if err != nil {
		return nil, nil, err
	}

	best, err := s.quotePrepared(ctx, prepared)
	if err != nil {
		return nil, nil, err
	}

	allowances := s.fetchAllowances(ctx, prepared, best)
	plan, err := s.builder.Build(swap.BuildRequest{
		Chain:       prepared.chainCfg,
		Quote:       best,
		Recipient:   params.Recipient,
		SlippageBps: params.SlippageBps,
		NativeIn:    prepared.nativeIn,
		NativeOut:   prepared.nativeOut,
		Allowances:  allowances,
	})
	if err != nil {
		return nil, nil, err
	}
	return best, plan, nil
}

// fetchAllowances reads existing executor allowances for every hop's (token,
// router) pair. Failures degrade to "approval required".
func (s *Service) fetchAllowances(ctx context.Context, prepared *preparedRequest, best *model.PriceQuote) map[string]*big.Int {
	if prepared.lens == nil || prepared.chainCfg.Executor == "" {
		return nil
	}

	var targets []swap.ApprovalTarget
	for i, source := range best.Sources {
		dexCfg, ok := prepared.chainCfg.RouterFor(source.DexID, best.HopVersions[i])
		if !ok || dexCfg.Router == "" {
			continue
		}
		targets = append(targets, swap.ApprovalTarget{
			Token:   best.Path[i].Address,
			Spender: dexCfg.Router,
		})
	}

	owner := common.HexToAddress(prepared.chainCfg.Executor)
	return swap.FetchAllowances(ctx, prepared.lens, owner, targets, s.logger)
}

// Close releases chain connections and the history sink.
func (s *Service) Close() {
	s.pool.Close()
	if err := s.history.Close(); err != nil {
		s.logger.Warn("history close failed", zap.Error(err))
	}
}

func normalizeToken(chainCfg config.ChainConfig, raw string) (address string, native bool, err error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "native") || strings.EqualFold(trimmed, nativeSentinel) {
		if chainCfg.WrappedNative == "" {
			return "", false, fmt.Errorf("%w: no wrapped native on %s", config.ErrChainNotConfigured, chainCfg.Key)
		}
		return chainCfg.WrappedNative, true, nil
	}
	if !common.IsHexAddress(trimmed) {
		return "", false, fmt.Errorf("%w: invalid token address %q", ErrInvalidRequest, raw)
	}
	return common.HexToAddress(trimmed).Hex(), false, nil
}

// validAmount accepts a positive integer or single-pointed decimal string.
func validAmount(raw string) bool {
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if !digitsOnly(whole) {
		return false
	}
	if hasFrac && !digitsOnly(frac) {
		return false
	}
	return strings.ContainsAny(whole+frac, "123456789")
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parsePreference(raw string) (model.RoutePreference, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return model.RouteAuto, nil
	case "v2":
		return model.RouteV2, nil
	case "v3":
		return model.RouteV3, nil
	default:
		return "", fmt.Errorf("%w: unknown routing preference %q", ErrInvalidRequest, raw)
	}
}
