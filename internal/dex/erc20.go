package dex

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const erc20ABIJSON = `[
  {
    "inputs": [],
    "name": "symbol",
    "outputs": [{"internalType": "string", "name": "", "type": "string"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "name",
    "outputs": [{"internalType": "string", "name": "", "type": "string"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "decimals",
    "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var parsedERC20ABI parsedABI

// ERC20ABI returns the parsed minimal ERC-20 metadata ABI.
func ERC20ABI() (abi.ABI, error) { return parsedERC20ABI.load(erc20ABIJSON) }

// ERC20Reader resolves token metadata with one eth_call per field when no
// Lens is deployed. Implements the same batch surface as Lens.TokenMetadata.
type ERC20Reader struct {
	caller Caller
}

// NewERC20Reader creates a direct metadata reader.
func NewERC20Reader(caller Caller) *ERC20Reader {
	return &ERC20Reader{caller: caller}
}

// TokenMetadata reads symbol, name, and decimals for each token concurrently.
// A token whose reads fail is reported with Exists=false.
func (r *ERC20Reader) TokenMetadata(ctx context.Context, tokens []common.Address) ([]TokenMetadataResult, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}

	results := make([]TokenMetadataResult, len(tokens))
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)

	for i, token := range tokens {
		i, token := i, token
		group.Go(func() error {
			result := TokenMetadataResult{Token: token}

			symbolValues, err := Call(groupCtx, r.caller, token, parsed, "symbol")
			if err == nil {
				if symbol, ok := symbolValues[0].(string); ok {
					result.Symbol = symbol
				}
			}
			nameValues, err := Call(groupCtx, r.caller, token, parsed, "name")
			if err == nil {
				if name, ok := nameValues[0].(string); ok {
					result.Name = name
				}
			}
			decimalsValues, err := Call(groupCtx, r.caller, token, parsed, "decimals")
			if err == nil {
				if decimals, ok := decimalsValues[0].(uint8); ok {
					result.Decimals = decimals
				}
			}

			result.Exists = result.Symbol != "" || result.Decimals != 0
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
