package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const v2FactoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"}
    ],
    "name": "getPair",
    "outputs": [{"internalType": "address", "name": "pair", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v2PairABIJSON = `[
  {
    "inputs": [],
    "name": "getReserves",
    "outputs": [
      {"internalType": "uint112", "name": "reserve0", "type": "uint112"},
      {"internalType": "uint112", "name": "reserve1", "type": "uint112"},
      {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token0",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token1",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v2RouterABIJSON = `[
  {
    "inputs": [
      {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"internalType": "uint256", "name": "amountOutMin", "type": "uint256"},
      {"internalType": "address[]", "name": "path", "type": "address[]"},
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"}
    ],
    "name": "swapExactTokensForTokens",
    "outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const v3FactoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"},
      {"internalType": "uint24", "name": "fee", "type": "uint24"}
    ],
    "name": "getPool",
    "outputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v3PoolABIJSON = `[
  {
    "inputs": [],
    "name": "slot0",
    "outputs": [
      {"internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"internalType": "int24", "name": "tick", "type": "int24"},
      {"internalType": "uint16", "name": "observationIndex", "type": "uint16"},
      {"internalType": "uint16", "name": "observationCardinality", "type": "uint16"},
      {"internalType": "uint16", "name": "observationCardinalityNext", "type": "uint16"},
      {"internalType": "uint8", "name": "feeProtocol", "type": "uint8"},
      {"internalType": "bool", "name": "unlocked", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "liquidity",
    "outputs": [{"internalType": "uint128", "name": "", "type": "uint128"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token0",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token1",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "fee",
    "outputs": [{"internalType": "uint24", "name": "", "type": "uint24"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v3RouterABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "tokenIn", "type": "address"},
          {"internalType": "address", "name": "tokenOut", "type": "address"},
          {"internalType": "uint24", "name": "fee", "type": "uint24"},
          {"internalType": "address", "name": "recipient", "type": "address"},
          {"internalType": "uint256", "name": "deadline", "type": "uint256"},
          {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
          {"internalType": "uint256", "name": "amountOutMinimum", "type": "uint256"},
          {"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
        ],
        "internalType": "struct ISwapRouter.ExactInputSingleParams",
        "name": "params",
        "type": "tuple"
      }
    ],
    "name": "exactInputSingle",
    "outputs": [{"internalType": "uint256", "name": "amountOut", "type": "uint256"}],
    "stateMutability": "payable",
    "type": "function"
  }
]`

const v3QuoterABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "tokenIn", "type": "address"},
          {"internalType": "address", "name": "tokenOut", "type": "address"},
          {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
          {"internalType": "uint24", "name": "fee", "type": "uint24"},
          {"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
        ],
        "internalType": "struct IQuoterV2.QuoteExactInputSingleParams",
        "name": "params",
        "type": "tuple"
      }
    ],
    "name": "quoteExactInputSingle",
    "outputs": [
      {"internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"internalType": "uint160", "name": "sqrtPriceX96After", "type": "uint160"},
      {"internalType": "uint32", "name": "initializedTicksCrossed", "type": "uint32"},
      {"internalType": "uint256", "name": "gasEstimate", "type": "uint256"}
    ],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const wethABIJSON = `[
  {
    "inputs": [],
    "name": "deposit",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "wad", "type": "uint256"}],
    "name": "withdraw",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const lensABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "factory", "type": "address"},
      {
        "components": [
          {"internalType": "address", "name": "token0", "type": "address"},
          {"internalType": "address", "name": "token1", "type": "address"}
        ],
        "internalType": "struct Lens.PairRequest[]",
        "name": "requests",
        "type": "tuple[]"
      }
    ],
    "name": "batchGetV2Pools",
    "outputs": [{"internalType": "address[]", "name": "results", "type": "address[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "factory", "type": "address"},
      {
        "components": [
          {"internalType": "address", "name": "token0", "type": "address"},
          {"internalType": "address", "name": "token1", "type": "address"}
        ],
        "internalType": "struct Lens.PairRequest[]",
        "name": "requests",
        "type": "tuple[]"
      }
    ],
    "name": "batchGetV3PoolsAllFees",
    "outputs": [{"internalType": "address[][]", "name": "results", "type": "address[][]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address[]", "name": "pools", "type": "address[]"}],
    "name": "batchGetV2PoolData",
    "outputs": [
      {
        "components": [
          {"internalType": "address", "name": "pool", "type": "address"},
          {"internalType": "uint112", "name": "reserve0", "type": "uint112"},
          {"internalType": "uint112", "name": "reserve1", "type": "uint112"},
          {"internalType": "address", "name": "token0", "type": "address"},
          {"internalType": "address", "name": "token1", "type": "address"},
          {"internalType": "bool", "name": "exists", "type": "bool"}
        ],
        "internalType": "struct Lens.V2PoolData[]",
        "name": "results",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address[]", "name": "pools", "type": "address[]"}],
    "name": "batchGetV3PoolData",
    "outputs": [
      {
        "components": [
          {"internalType": "address", "name": "pool", "type": "address"},
          {"internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
          {"internalType": "int24", "name": "tick", "type": "int24"},
          {"internalType": "uint128", "name": "liquidity", "type": "uint128"},
          {"internalType": "address", "name": "token0", "type": "address"},
          {"internalType": "address", "name": "token1", "type": "address"},
          {"internalType": "uint24", "name": "fee", "type": "uint24"},
          {"internalType": "bool", "name": "exists", "type": "bool"}
        ],
        "internalType": "struct Lens.V3PoolData[]",
        "name": "results",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address[]", "name": "tokens", "type": "address[]"},
      {"internalType": "address", "name": "account", "type": "address"}
    ],
    "name": "batchCheckTokenBalances",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address[]", "name": "tokens", "type": "address[]"},
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "address", "name": "spender", "type": "address"}
    ],
    "name": "batchCheckAllowances",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address[]", "name": "tokens", "type": "address[]"}],
    "name": "batchGetTokenMetadata",
    "outputs": [
      {
        "components": [
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "uint8", "name": "decimals", "type": "uint8"},
          {"internalType": "string", "name": "symbol", "type": "string"},
          {"internalType": "string", "name": "name", "type": "string"},
          {"internalType": "bool", "name": "exists", "type": "bool"}
        ],
        "internalType": "struct Lens.TokenMetadata[]",
        "name": "results",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const executorABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"}
        ],
        "internalType": "struct AequiExecutor.Pull[]",
        "name": "pulls",
        "type": "tuple[]"
      },
      {
        "components": [
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "address", "name": "spender", "type": "address"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"}
        ],
        "internalType": "struct AequiExecutor.Approval[]",
        "name": "approvals",
        "type": "tuple[]"
      },
      {
        "components": [
          {"internalType": "address", "name": "target", "type": "address"},
          {"internalType": "uint256", "name": "value", "type": "uint256"},
          {"internalType": "bytes", "name": "data", "type": "bytes"},
          {"internalType": "address", "name": "injectToken", "type": "address"},
          {"internalType": "uint256", "name": "injectOffset", "type": "uint256"}
        ],
        "internalType": "struct AequiExecutor.Call[]",
        "name": "calls",
        "type": "tuple[]"
      },
      {"internalType": "address[]", "name": "tokensToFlush", "type": "address[]"}
    ],
    "name": "execute",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

type parsedABI struct {
	once sync.Once
	abi  abi.ABI
	err  error
}

func (p *parsedABI) load(source string) (abi.ABI, error) {
	p.once.Do(func() {
		p.abi, p.err = abi.JSON(strings.NewReader(source))
	})
	return p.abi, p.err
}

var (
	v2FactoryABI parsedABI
	v2PairABI    parsedABI
	v2RouterABI  parsedABI
	v3FactoryABI parsedABI
	v3PoolABI    parsedABI
	v3RouterABI  parsedABI
	v3QuoterABI  parsedABI
	wethABI      parsedABI
	lensABI      parsedABI
	executorABI  parsedABI
)

// V2FactoryABI returns the parsed V2 factory ABI.
func V2FactoryABI() (abi.ABI, error) { return v2FactoryABI.load(v2FactoryABIJSON) }

// V2PairABI returns the parsed V2 pair ABI.
func V2PairABI() (abi.ABI, error) { return v2PairABI.load(v2PairABIJSON) }

// V2RouterABI returns the parsed V2 router ABI.
func V2RouterABI() (abi.ABI, error) { return v2RouterABI.load(v2RouterABIJSON) }

// V3FactoryABI returns the parsed V3 factory ABI.
func V3FactoryABI() (abi.ABI, error) { return v3FactoryABI.load(v3FactoryABIJSON) }

// V3PoolABI returns the parsed V3 pool ABI.
func V3PoolABI() (abi.ABI, error) { return v3PoolABI.load(v3PoolABIJSON) }

// V3RouterABI returns the parsed V3 router ABI.
func V3RouterABI() (abi.ABI, error) { return v3RouterABI.load(v3RouterABIJSON) }

// V3QuoterABI returns the parsed QuoterV2 ABI.
func V3QuoterABI() (abi.ABI, error) { return v3QuoterABI.load(v3QuoterABIJSON) }

// WETHABI returns the parsed wrapped-native ABI.
func WETHABI() (abi.ABI, error) { return wethABI.load(wethABIJSON) }

// LensABI returns the parsed Lens batch-read ABI.
func LensABI() (abi.ABI, error) { return lensABI.load(lensABIJSON) }

// ExecutorABI returns the parsed executor ABI.
func ExecutorABI() (abi.ABI, error) { return executorABI.load(executorABIJSON) }
