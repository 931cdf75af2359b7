package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Lens wraps the on-chain batch-read contract. One Lens call replaces a fan
// of individual eth_calls; everything degrades to direct calls when no Lens
// is deployed on a chain.
type Lens struct {
	address common.Address
	caller  Caller
}

// NewLens creates a Lens bound to a deployed contract address.
func NewLens(address common.Address, caller Caller) *Lens {
	return &Lens{address: address, caller: caller}
}

// PairRequest identifies a token pair for pool discovery.
type PairRequest struct {
	Token0 common.Address
	Token1 common.Address
}

// TokenMetadataResult is one decoded entry of batchGetTokenMetadata.
type TokenMetadataResult struct {
	Token    common.Address
	Decimals uint8
	Symbol   string
	Name     string
	Exists   bool
}

// V2PoolData is one decoded entry of batchGetV2PoolData.
type V2PoolData struct {
	Pool     common.Address
	Reserve0 *big.Int
	Reserve1 *big.Int
	Token0   common.Address
	Token1   common.Address
	Exists   bool
}

// V3PoolData is one decoded entry of batchGetV3PoolData.
type V3PoolData struct {
	Pool         common.Address
	SqrtPriceX96 *big.Int
	Tick         *big.Int
	Liquidity    *big.Int
	Token0       common.Address
	Token1       common.Address
	Fee          *big.Int
	Exists       bool
}

func (l *Lens) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := LensABI()
	if err != nil {
		return nil, fmt.Errorf("parse lens abi: %w", err)
	}
	return Call(ctx, l.caller, l.address, parsed, method, args...)
}

// TokenMetadata reads metadata for a batch of tokens in one call.
func (l *Lens) TokenMetadata(ctx context.Context, tokens []common.Address) ([]TokenMetadataResult, error) {
	values, err := l.call(ctx, "batchGetTokenMetadata", tokens)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([]TokenMetadataResult)).(*[]TokenMetadataResult)
	if len(results) != len(tokens) {
		return nil, fmt.Errorf("lens metadata length mismatch: want %d got %d", len(tokens), len(results))
	}
	return results, nil
}

// V2Pools resolves pair addresses for the requested token pairs on one V2
// factory. Entries are the zero address when no pair exists.
func (l *Lens) V2Pools(ctx context.Context, factory common.Address, requests []PairRequest) ([]common.Address, error) {
	values, err := l.call(ctx, "batchGetV2Pools", factory, requests)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([]common.Address)).(*[]common.Address)
	return results, nil
}

// V3PoolsAllFees resolves pool addresses across the Lens's fee-tier table for
// the requested pairs on one V3 factory.
func (l *Lens) V3PoolsAllFees(ctx context.Context, factory common.Address, requests []PairRequest) ([][]common.Address, error) {
	values, err := l.call(ctx, "batchGetV3PoolsAllFees", factory, requests)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([][]common.Address)).(*[][]common.Address)
	return results, nil
}

// V2PoolData reads reserves and token ordering for a batch of pairs.
func (l *Lens) V2PoolData(ctx context.Context, pools []common.Address) ([]V2PoolData, error) {
	values, err := l.call(ctx, "batchGetV2PoolData", pools)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([]V2PoolData)).(*[]V2PoolData)
	return results, nil
}

// V3PoolData reads slot0, liquidity, tokens, and fee for a batch of pools.
func (l *Lens) V3PoolData(ctx context.Context, pools []common.Address) ([]V3PoolData, error) {
	values, err := l.call(ctx, "batchGetV3PoolData", pools)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([]V3PoolData)).(*[]V3PoolData)
	return results, nil
}

// Allowances reads owner->spender allowances for a batch of tokens.
func (l *Lens) Allowances(ctx context.Context, tokens []common.Address, owner, spender common.Address) ([]*big.Int, error) {
	values, err := l.call(ctx, "batchCheckAllowances", tokens, owner, spender)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([]*big.Int)).(*[]*big.Int)
	if len(results) != len(tokens) {
		return nil, fmt.Errorf("lens allowance length mismatch: want %d got %d", len(tokens), len(results))
	}
	return results, nil
}

// TokenBalances reads an account's balances for a batch of tokens.
func (l *Lens) TokenBalances(ctx context.Context, tokens []common.Address, account common.Address) ([]*big.Int, error) {
	values, err := l.call(ctx, "batchCheckTokenBalances", tokens, account)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(values[0], new([]*big.Int)).(*[]*big.Int)
	return results, nil
}
