package server

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"aequiswap/internal/model"
)

// All integer amounts travel as decimal strings so responses stay bigint-safe
// for JSON consumers.

type tokenDTO struct {
	ChainID  uint64 `json:"chain_id"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

type sourceDTO struct {
	DexID       string `json:"dex_id"`
	PoolAddress string `json:"pool_address"`
	FeeTier     uint32 `json:"fee_tier,omitempty"`
	Approximate bool   `json:"approximate,omitempty"`
	AmountIn    string `json:"amount_in"`
	AmountOut   string `json:"amount_out"`
}

type quoteDTO struct {
	Chain               string      `json:"chain"`
	AmountIn            string      `json:"amount_in"`
	AmountOut           string      `json:"amount_out"`
	PriceQ18            string      `json:"price_q18"`
	ExecutionPriceQ18   string      `json:"execution_price_q18"`
	MidPriceQ18         string      `json:"mid_price_q18"`
	PriceImpactBps      int64       `json:"price_impact_bps"`
	Path                []tokenDTO  `json:"path"`
	Sources             []sourceDTO `json:"sources"`
	LiquidityScore      string      `json:"liquidity_score,omitempty"`
	HopVersions         []string    `json:"hop_versions"`
	EstimatedGasUnits   string      `json:"estimated_gas_units,omitempty"`
	EstimatedGasCostWei string      `json:"estimated_gas_cost_wei,omitempty"`
	GasPriceWei         string      `json:"gas_price_wei,omitempty"`
	ExpiresAt           time.Time   `json:"expires_at"`
	Offers              []quoteDTO  `json:"offers,omitempty"`
}

type pullDTO struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type approvalDTO struct {
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type executorCallDTO struct {
	Target       string `json:"target"`
	Value        string `json:"value"`
	Data         string `json:"data"`
	InjectToken  string `json:"inject_token,omitempty"`
	InjectOffset uint64 `json:"inject_offset,omitempty"`
}

type contractCallDTO struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

type planDTO struct {
	Executor         string            `json:"executor"`
	DexID            string            `json:"dex_id"`
	AmountIn         string            `json:"amount_in"`
	AmountOut        string            `json:"amount_out"`
	AmountOutMinimum string            `json:"amount_out_minimum"`
	Deadline         int64             `json:"deadline"`
	Pulls            []pullDTO         `json:"pulls"`
	Approvals        []approvalDTO     `json:"approvals"`
	Calls            []executorCallDTO `json:"calls"`
	TokensToFlush    []string          `json:"tokens_to_flush"`
	Call             contractCallDTO   `json:"call"`
}

type swapResponse struct {
	Quote quoteDTO `json:"quote"`
	Plan  planDTO  `json:"plan"`
}

// QuoteJSON renders a quote exactly as the HTTP layer would, for one-shot CLI
// output.
func QuoteJSON(q *model.PriceQuote) ([]byte, error) {
	return json.MarshalIndent(quoteToDTO(q), "", "  ")
}

func bigString(value *big.Int) string {
	if value == nil {
		return ""
	}
	return value.String()
}

func tokenToDTO(meta model.TokenMetadata) tokenDTO {
	return tokenDTO{
		ChainID:  meta.ChainID,
		Address:  meta.Address,
		Symbol:   meta.Symbol,
		Name:     meta.Name,
		Decimals: meta.Decimals,
	}
}

func quoteToDTO(q *model.PriceQuote) quoteDTO {
	dto := quoteDTO{
		Chain:               q.Chain,
		AmountIn:            bigString(q.AmountIn),
		AmountOut:           bigString(q.AmountOut),
		PriceQ18:            bigString(q.PriceQ18),
		ExecutionPriceQ18:   bigString(q.ExecutionPriceQ18),
		MidPriceQ18:         bigString(q.MidPriceQ18),
		PriceImpactBps:      q.PriceImpactBps,
		LiquidityScore:      bigString(q.LiquidityScore),
		EstimatedGasUnits:   bigString(q.EstimatedGasUnits),
		EstimatedGasCostWei: bigString(q.EstimatedGasCostWei),
		GasPriceWei:         bigString(q.GasPriceWei),
		ExpiresAt:           q.ExpiresAt,
	}
	for _, meta := range q.Path {
		dto.Path = append(dto.Path, tokenToDTO(meta))
	}
	for _, source := range q.Sources {
		dto.Sources = append(dto.Sources, sourceDTO{
			DexID:       source.DexID,
			PoolAddress: source.PoolAddress,
			FeeTier:     source.FeeTier,
			Approximate: source.Approximate,
			AmountIn:    bigString(source.AmountIn),
			AmountOut:   bigString(source.AmountOut),
		})
	}
	for _, version := range q.HopVersions {
		dto.HopVersions = append(dto.HopVersions, string(version))
	}
	for _, offer := range q.Offers {
		dto.Offers = append(dto.Offers, quoteToDTO(offer))
	}
	return dto
}

func planToDTO(plan *model.SwapTransactionPlan) planDTO {
	dto := planDTO{
		Executor:         plan.Executor,
		DexID:            plan.DexID,
		AmountIn:         bigString(plan.AmountIn),
		AmountOut:        bigString(plan.AmountOut),
		AmountOutMinimum: bigString(plan.AmountOutMinimum),
		Deadline:         plan.Deadline,
		TokensToFlush:    plan.TokensToFlush,
		Call: contractCallDTO{
			To:    plan.Call.To,
			Data:  hexutil.Encode(plan.Call.Data),
			Value: bigString(plan.Call.Value),
		},
	}
	for _, pull := range plan.Pulls {
		dto.Pulls = append(dto.Pulls, pullDTO{
			Token:  pull.Token,
			Amount: bigString(pull.Amount),
		})
	}
	for _, approval := range plan.Approvals {
		dto.Approvals = append(dto.Approvals, approvalDTO{
			Token:   approval.Token,
			Spender: approval.Spender,
			Amount:  bigString(approval.Amount),
		})
	}
	for _, call := range plan.Calls {
		dto.Calls = append(dto.Calls, executorCallDTO{
			Target:       call.Target,
			Value:        bigString(call.Value),
			Data:         hexutil.Encode(call.Data),
			InjectToken:  call.InjectToken,
			InjectOffset: call.InjectOffset,
		})
	}
	return dto
}
