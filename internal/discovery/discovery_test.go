package discovery

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"aequiswap/internal/config"
	"aequiswap/internal/dex"
	"aequiswap/internal/model"
)

var (
	v2Pair  = common.HexToAddress("0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa")
	v3Pool  = common.HexToAddress("0xBbBbBBbbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")
	tokenIn = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenTo = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// fakeCaller answers getPair and getPool by ABI-encoding a fixed address.
// Only the 500 fee tier has a pool.
type fakeCaller struct{}

func (fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	v2ABI, err := dex.V2FactoryABI()
	if err != nil {
		return nil, err
	}
	v3ABI, err := dex.V3FactoryABI()
	if err != nil {
		return nil, err
	}

	selector := [4]byte{msg.Data[0], msg.Data[1], msg.Data[2], msg.Data[3]}
	if method, err := v2ABI.MethodById(selector[:]); err == nil && method.Name == "getPair" {
		return method.Outputs.Pack(v2Pair)
	}
	method, err := v3ABI.MethodById(selector[:])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	fee, _ := args[2].(*big.Int)
	if fee != nil && fee.Int64() == 500 {
		return method.Outputs.Pack(v3Pool)
	}
	return method.Outputs.Pack(common.Address{})
}

func testChain() config.ChainConfig {
	return config.ChainConfig{
		Key:     "sepolia",
		ChainID: 11155111,
		Dexes: []config.DexConfig{
			{ID: "uniswap-v2", Version: "v2", Factory: "0x7E0987E5b3a30e3f2828572Bb659A548460a3003"},
			{ID: "uniswap-v3", Version: "v3",
				Factory:  "0x0227628f3F023bb0B980b67D528571c95c6DaC1c",
				Quoter:   "0xEd1f6473345F45b75F8179591dd5bA1888cf2FB3",
				FeeTiers: []uint32{500, 3000, 10000}},
		},
	}
}

func TestDiscoverFactoryFallback(t *testing.T) {
	d := NewDiscoverer(zap.NewNop())
	found := d.Discover(context.Background(), fakeCaller{}, nil, testChain(), tokenIn, tokenTo,
		[]model.HopVersion{model.HopV2, model.HopV3})

	if len(found) != 2 {
		t.Fatalf("expected v2 pair and one v3 pool, got %d: %+v", len(found), found)
	}
	byVersion := map[model.HopVersion]PoolCandidate{}
	for _, candidate := range found {
		byVersion[candidate.Version] = candidate
	}
	if byVersion[model.HopV2].Address != v2Pair {
		t.Fatalf("v2 candidate: %+v", byVersion[model.HopV2])
	}
	if byVersion[model.HopV3].Address != v3Pool {
		t.Fatalf("v3 candidate: %+v", byVersion[model.HopV3])
	}
	if byVersion[model.HopV3].Quoter != common.HexToAddress("0xEd1f6473345F45b75F8179591dd5bA1888cf2FB3") {
		t.Fatalf("v3 quoter not carried: %+v", byVersion[model.HopV3])
	}
}

func TestDiscoverVersionFilter(t *testing.T) {
	d := NewDiscoverer(zap.NewNop())
	found := d.Discover(context.Background(), fakeCaller{}, nil, testChain(), tokenIn, tokenTo,
		[]model.HopVersion{model.HopV2})

	if len(found) != 1 || found[0].Version != model.HopV2 {
		t.Fatalf("expected only the v2 candidate, got %+v", found)
	}
}
