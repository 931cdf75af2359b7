package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// QuoteExactInputSingleParams mirrors QuoterV2's request struct.
type QuoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactInputSingle simulates a single V3 swap through the dex's QuoterV2
// and returns the exact output amount. The quoter is not a view function, so
// this runs as an eth_call simulation.
func QuoteExactInputSingle(ctx context.Context, caller Caller, quoter common.Address, params QuoteExactInputSingleParams) (*big.Int, error) {
	parsed, err := V3QuoterABI()
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}
	if params.SqrtPriceLimitX96 == nil {
		params.SqrtPriceLimitX96 = new(big.Int)
	}
	values, err := Call(ctx, caller, quoter, parsed, "quoteExactInputSingle", params)
	if err != nil {
		return nil, err
	}
	amountOut, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("quoter amountOut: %w", err)
	}
	return amountOut, nil
}
