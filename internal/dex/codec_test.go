package dex

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestV2SwapRoundTrip(t *testing.T) {
	in := V2SwapCall{
		AmountIn:     big.NewInt(1_000_000_000_000_000),
		AmountOutMin: big.NewInt(987_654_321),
		Path: []common.Address{
			common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"),
			common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"),
		},
		To:       common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Deadline: big.NewInt(1_900_000_000),
	}

	data, err := EncodeV2Swap(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodeV2Swap(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.AmountIn.Cmp(in.AmountIn) != 0 || out.AmountOutMin.Cmp(in.AmountOutMin) != 0 {
		t.Fatalf("amount mismatch: %+v", out)
	}
	if len(out.Path) != 2 || out.Path[0] != in.Path[0] || out.Path[1] != in.Path[1] {
		t.Fatalf("path mismatch: %+v", out.Path)
	}
	if out.To != in.To || out.Deadline.Cmp(in.Deadline) != 0 {
		t.Fatalf("recipient/deadline mismatch: %+v", out)
	}
}

func TestV2SwapAmountInOffset(t *testing.T) {
	amountIn := big.NewInt(0x1234_5678_9abc)
	data, err := EncodeV2Swap(V2SwapCall{
		AmountIn:     amountIn,
		AmountOutMin: big.NewInt(1),
		Path: []common.Address{
			common.HexToAddress("0x1111111111111111111111111111111111111111"),
			common.HexToAddress("0x2222222222222222222222222222222222222222"),
		},
		To:       common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Deadline: big.NewInt(1),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var word [32]byte
	amountIn.FillBytes(word[:])
	if !bytes.Equal(data[V2SwapAmountInOffset:V2SwapAmountInOffset+32], word[:]) {
		t.Fatalf("amountIn word not at offset %d", V2SwapAmountInOffset)
	}
}

func TestV3ExactInputSingleRoundTrip(t *testing.T) {
	in := V3ExactInputSingleParams{
		TokenIn:           common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"),
		TokenOut:          common.HexToAddress("0xaA8E23Fb1079EA71e0a56F48a2aA51851D8433D0"),
		Fee:               big.NewInt(3000),
		Recipient:         common.HexToAddress("0x4444444444444444444444444444444444444444"),
		Deadline:          big.NewInt(1_900_000_000),
		AmountIn:          big.NewInt(55_555_555),
		AmountOutMinimum:  big.NewInt(44_444_444),
		SqrtPriceLimitX96: new(big.Int),
	}

	data, err := EncodeV3ExactInputSingle(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodeV3ExactInputSingle(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.TokenIn != in.TokenIn || out.TokenOut != in.TokenOut {
		t.Fatalf("token mismatch: %+v", out)
	}
	if out.Fee.Cmp(in.Fee) != 0 || out.AmountIn.Cmp(in.AmountIn) != 0 || out.AmountOutMinimum.Cmp(in.AmountOutMinimum) != 0 {
		t.Fatalf("numeric mismatch: %+v", out)
	}
	if out.Recipient != in.Recipient || out.Deadline.Cmp(in.Deadline) != 0 {
		t.Fatalf("recipient/deadline mismatch: %+v", out)
	}
}

func TestV3ExactInputSingleAmountInOffset(t *testing.T) {
	amountIn := big.NewInt(0xdead_beef)
	data, err := EncodeV3ExactInputSingle(V3ExactInputSingleParams{
		TokenIn:           common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenOut:          common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Fee:               big.NewInt(500),
		Recipient:         common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Deadline:          big.NewInt(1),
		AmountIn:          amountIn,
		AmountOutMinimum:  big.NewInt(1),
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var word [32]byte
	amountIn.FillBytes(word[:])
	if !bytes.Equal(data[V3ExactInputSingleAmountInOffset:V3ExactInputSingleAmountInOffset+32], word[:]) {
		t.Fatalf("amountIn word not at offset %d", V3ExactInputSingleAmountInOffset)
	}
}

func TestEncodeUnwrapOffset(t *testing.T) {
	data, err := EncodeUnwrap(new(big.Int))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 4+32 {
		t.Fatalf("unexpected withdraw calldata length %d", len(data))
	}
	var zero [32]byte
	if !bytes.Equal(data[WETHWithdrawAmountOffset:], zero[:]) {
		t.Fatalf("placeholder amount must be zero")
	}
}
