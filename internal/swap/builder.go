// Package swap converts a winning quote into an executor call plan: pulls,
// approvals, ordered calls with calldata-injection directives, and a flush
// list.
package swap

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"aequiswap/internal/config"
	"aequiswap/internal/dex"
	"aequiswap/internal/model"
)

const bpsDenominator = 10_000

// maxUint256 is the "infinite" approval amount.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// BuildRequest carries everything a plan needs. SlippageBps below zero means
// "use the configured default". Allowances is the §4.7-style map keyed by
// AllowanceKey; a nil or empty map simply requires every approval.
type BuildRequest struct {
	Chain       config.ChainConfig
	Quote       *model.PriceQuote
	Recipient   string
	SlippageBps int
	NativeIn    bool
	NativeOut   bool
	Allowances  map[string]*big.Int
}

// Builder builds immutable SwapTransactionPlans. Safe for concurrent use.
type Builder struct {
	slippageDefaultBps int
	slippageMaxBps     int
	interhopBufferBps  int
	deadlineSeconds    int
	logger             *zap.Logger
	now                func() time.Time
}

// NewBuilder creates a Builder with the slippage, buffer, and deadline policy
// from config.
func NewBuilder(cfg config.Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		slippageDefaultBps: cfg.SlippageDefaultBps,
		slippageMaxBps:     cfg.SlippageMaxBps,
		interhopBufferBps:  cfg.InterhopBufferBps,
		deadlineSeconds:    cfg.DeadlineSeconds,
		logger:             logger,
		now:                time.Now,
	}
	if b.slippageDefaultBps <= 0 {
		b.slippageDefaultBps = 50
	}
	if b.slippageMaxBps <= 0 {
		b.slippageMaxBps = 1000
	}
	if b.deadlineSeconds <= 0 {
		b.deadlineSeconds = 180
	}
	return b
}

// Build assembles the full executor plan for one quote. The deadline derives
// from the wall clock at build time, never from a cached timestamp.
func (b *Builder) Build(req BuildRequest) (*model.SwapTransactionPlan, error) {
	quote := req.Quote
	if quote == nil || len(quote.Sources) == 0 {
		return nil, fmt.Errorf("quote has no sources")
	}
	if len(quote.Path) != len(quote.Sources)+1 {
		return nil, fmt.Errorf("quote path/sources mismatch")
	}
	if req.Chain.Executor == "" {
		return nil, fmt.Errorf("%w: no executor on %s", config.ErrChainNotConfigured, req.Chain.Key)
	}
	if !common.IsHexAddress(req.Recipient) {
		return nil, fmt.Errorf("invalid recipient %q", req.Recipient)
	}

	slippageBps := b.clampSlippage(req.SlippageBps)
	totalMin := applyBps(quote.AmountOut, bpsDenominator-slippageBps)
	deadline := b.now().Unix() + int64(b.deadlineSeconds)
	executor := common.HexToAddress(req.Chain.Executor)
	recipient := common.HexToAddress(req.Recipient)

	plan := &model.SwapTransactionPlan{
		Executor:         executor.Hex(),
		DexID:            quote.Sources[0].DexID,
		AmountIn:         new(big.Int).Set(quote.AmountIn),
		AmountOut:        new(big.Int).Set(quote.AmountOut),
		AmountOutMinimum: totalMin,
		Deadline:         deadline,
	}

	if req.NativeIn {
		wrapData, err := dex.EncodeWrap()
		if err != nil {
			return nil, err
		}
		plan.Calls = append(plan.Calls, model.ExecutorCall{
			Target: req.Chain.WrappedNative,
			Value:  new(big.Int).Set(quote.AmountIn),
			Data:   wrapData,
		})
	} else {
		plan.Pulls = append(plan.Pulls, model.TokenPull{
			Token:  quote.TokenIn().Address,
			Amount: new(big.Int).Set(quote.AmountIn),
		})
	}

	approvalsSeen := map[string]bool{}
	lastHop := len(quote.Sources) - 1
	available := new(big.Int).Set(quote.AmountIn)

	for i, source := range quote.Sources {
		version := quote.HopVersions[i]
		dexCfg, ok := req.Chain.RouterFor(source.DexID, version)
		if !ok || dexCfg.Router == "" {
			return nil, fmt.Errorf("%w: no %s router for %s on %s",
				config.ErrChainNotConfigured, version, source.DexID, req.Chain.Key)
		}
		router := common.HexToAddress(dexCfg.Router)

		// A hop never spends more than the prior hop is expected to leave.
		hopIn := new(big.Int).Set(source.AmountIn)
		if hopIn.Cmp(available) > 0 {
			hopIn.Set(available)
		}
		if i > 0 && b.interhopBufferBps > 0 {
			// Shaved to tolerate on-chain rounding drift between hops.
			hopIn = applyBps(hopIn, bpsDenominator-b.interhopBufferBps)
		}

		hopExpected := new(big.Int).Set(source.AmountOut)
		if source.AmountIn.Sign() > 0 && hopIn.Cmp(source.AmountIn) != 0 {
			hopExpected.Mul(source.AmountOut, hopIn)
			hopExpected.Quo(hopExpected, source.AmountIn)
		}

		hopMinOut := new(big.Int).Set(totalMin)
		if i != lastHop {
			hopMinOut = proportionalMinOut(hopExpected, totalMin, quote.AmountOut)
		}

		hopRecipient := executor
		if i == lastHop && !req.NativeOut {
			hopRecipient = recipient
		}

		hopTokenIn := quote.Path[i]
		hopTokenOut := quote.Path[i+1]

		var (
			data []byte
			err  error
		)
		switch version {
		case model.HopV3:
			data, err = dex.EncodeV3ExactInputSingle(dex.V3ExactInputSingleParams{
				TokenIn:           common.HexToAddress(hopTokenIn.Address),
				TokenOut:          common.HexToAddress(hopTokenOut.Address),
				Fee:               new(big.Int).SetUint64(uint64(source.FeeTier)),
				Recipient:         hopRecipient,
				Deadline:          big.NewInt(deadline),
				AmountIn:          hopIn,
				AmountOutMinimum:  hopMinOut,
				SqrtPriceLimitX96: new(big.Int),
			})
		default:
			data, err = dex.EncodeV2Swap(dex.V2SwapCall{
				AmountIn:     hopIn,
				AmountOutMin: hopMinOut,
				Path: []common.Address{
					common.HexToAddress(hopTokenIn.Address),
					common.HexToAddress(hopTokenOut.Address),
				},
				To:       hopRecipient,
				Deadline: big.NewInt(deadline),
			})
		}
		if err != nil {
			return nil, fmt.Errorf("encode hop %d: %w", i, err)
		}

		call := model.ExecutorCall{
			Target: router.Hex(),
			Value:  new(big.Int),
			Data:   data,
		}
		if i > 0 {
			// The true input is only known once the prior hop lands; the
			// executor patches the amount word with its live balance.
			call.InjectToken = hopTokenIn.Address
			call.InjectOffset = dex.InjectOffsetFor(version)
		}
		plan.Calls = append(plan.Calls, call)
		available = hopExpected

		key := AllowanceKey(hopTokenIn.Address, router.Hex())
		if !approvalsSeen[key] {
			approvalsSeen[key] = true
			if existing, ok := req.Allowances[key]; !ok || existing == nil || existing.Cmp(hopIn) < 0 {
				plan.Approvals = append(plan.Approvals, model.TokenApproval{
					Token:   hopTokenIn.Address,
					Spender: router.Hex(),
					Amount:  new(big.Int).Set(maxUint256),
				})
			}
		}
	}

	if req.NativeOut {
		unwrapData, err := dex.EncodeUnwrap(new(big.Int))
		if err != nil {
			return nil, err
		}
		plan.Calls = append(plan.Calls, model.ExecutorCall{
			Target:       quote.TokenOut().Address,
			Value:        new(big.Int),
			Data:         unwrapData,
			InjectToken:  quote.TokenOut().Address,
			InjectOffset: dex.WETHWithdrawAmountOffset,
		})
	}

	plan.TokensToFlush = b.flushSet(quote, req.NativeOut)

	executeData, err := dex.EncodeExecute(plan)
	if err != nil {
		return nil, err
	}
	callValue := new(big.Int)
	if req.NativeIn {
		callValue.Set(quote.AmountIn)
	}
	plan.Call = model.ContractCall{
		To:    plan.Executor,
		Data:  executeData,
		Value: callValue,
	}

	b.logger.Debug("plan built",
		zap.String("chain", req.Chain.Key),
		zap.Int("calls", len(plan.Calls)),
		zap.Int("approvals", len(plan.Approvals)),
		zap.Int64("deadline", plan.Deadline))
	return plan, nil
}

// flushSet lists every token the executor might transiently hold: the input,
// all intermediates, and the output when it is not routed straight to the
// user.
func (b *Builder) flushSet(quote *model.PriceQuote, nativeOut bool) []string {
	seen := map[string]bool{}
	var flush []string
	add := func(address string) {
		key := strings.ToLower(address)
		if !seen[key] {
			seen[key] = true
			flush = append(flush, address)
		}
	}

	last := len(quote.Path) - 1
	for i, token := range quote.Path {
		if i == last && !nativeOut {
			continue
		}
		add(token.Address)
	}
	return flush
}

func (b *Builder) clampSlippage(bps int) int {
	if bps < 0 {
		bps = b.slippageDefaultBps
	}
	if bps > b.slippageMaxBps {
		bps = b.slippageMaxBps
	}
	return bps
}

// applyBps returns amount*numeratorBps/10000, truncating.
func applyBps(amount *big.Int, numeratorBps int) *big.Int {
	result := new(big.Int).Mul(amount, big.NewInt(int64(numeratorBps)))
	return result.Quo(result, big.NewInt(bpsDenominator))
}

// proportionalMinOut allocates the global slippage tolerance across hops:
// hopExpected*totalMin/totalExpected.
func proportionalMinOut(hopExpected, totalMin, totalExpected *big.Int) *big.Int {
	if totalExpected == nil || totalExpected.Sign() == 0 {
		return new(big.Int)
	}
	result := new(big.Int).Mul(hopExpected, totalMin)
	return result.Quo(result, totalExpected)
}
