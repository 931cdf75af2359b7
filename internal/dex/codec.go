package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"aequiswap/internal/model"
)

// Calldata injection offsets: the byte position of the amount-in word within
// an encoded call. These are fixed by the router ABIs; a new router ABI
// requires a new entry, never an inferred offset.
const (
	// swapExactTokensForTokens(amountIn, ...): first argument, right after
	// the 4-byte selector.
	V2SwapAmountInOffset = 4

	// exactInputSingle(params): amountIn is the sixth word of the inlined
	// struct, 4 + 5*32.
	V3ExactInputSingleAmountInOffset = 4 + 5*32

	// WETH withdraw(wad): first argument.
	WETHWithdrawAmountOffset = 4
)

// InjectOffsetFor returns the amount-in offset for a hop's router call.
func InjectOffsetFor(version model.HopVersion) uint64 {
	if version == model.HopV3 {
		return V3ExactInputSingleAmountInOffset
	}
	return V2SwapAmountInOffset
}

// V2SwapCall is the decoded form of a swapExactTokensForTokens call.
type V2SwapCall struct {
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Path         []common.Address
	To           common.Address
	Deadline     *big.Int
}

// EncodeV2Swap encodes a single-hop swapExactTokensForTokens call.
func EncodeV2Swap(call V2SwapCall) ([]byte, error) {
	parsed, err := V2RouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse v2 router abi: %w", err)
	}
	data, err := parsed.Pack("swapExactTokensForTokens",
		call.AmountIn, call.AmountOutMin, call.Path, call.To, call.Deadline)
	if err != nil {
		return nil, fmt.Errorf("pack v2 swap: %w", err)
	}
	return data, nil
}

// DecodeV2Swap decodes a swapExactTokensForTokens call.
func DecodeV2Swap(data []byte) (V2SwapCall, error) {
	parsed, err := V2RouterABI()
	if err != nil {
		return V2SwapCall{}, fmt.Errorf("parse v2 router abi: %w", err)
	}
	method := parsed.Methods["swapExactTokensForTokens"]
	if len(data) < 4 {
		return V2SwapCall{}, fmt.Errorf("calldata too short")
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return V2SwapCall{}, fmt.Errorf("unpack v2 swap: %w", err)
	}

	call := V2SwapCall{}
	if call.AmountIn, err = asBigInt(values[0]); err != nil {
		return V2SwapCall{}, err
	}
	if call.AmountOutMin, err = asBigInt(values[1]); err != nil {
		return V2SwapCall{}, err
	}
	path, ok := values[2].([]common.Address)
	if !ok {
		return V2SwapCall{}, fmt.Errorf("unsupported path type %T", values[2])
	}
	call.Path = path
	if call.To, err = asAddress(values[3]); err != nil {
		return V2SwapCall{}, err
	}
	if call.Deadline, err = asBigInt(values[4]); err != nil {
		return V2SwapCall{}, err
	}
	return call, nil
}

// V3ExactInputSingleParams mirrors the V3 router's ExactInputSingleParams
// struct.
type V3ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// EncodeV3ExactInputSingle encodes a single-hop exactInputSingle call.
func EncodeV3ExactInputSingle(params V3ExactInputSingleParams) ([]byte, error) {
	parsed, err := V3RouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse v3 router abi: %w", err)
	}
	data, err := parsed.Pack("exactInputSingle", params)
	if err != nil {
		return nil, fmt.Errorf("pack v3 swap: %w", err)
	}
	return data, nil
}

// DecodeV3ExactInputSingle decodes an exactInputSingle call.
func DecodeV3ExactInputSingle(data []byte) (V3ExactInputSingleParams, error) {
	parsed, err := V3RouterABI()
	if err != nil {
		return V3ExactInputSingleParams{}, fmt.Errorf("parse v3 router abi: %w", err)
	}
	method := parsed.Methods["exactInputSingle"]
	if len(data) < 4 {
		return V3ExactInputSingleParams{}, fmt.Errorf("calldata too short")
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return V3ExactInputSingleParams{}, fmt.Errorf("unpack v3 swap: %w", err)
	}
	params := *abi.ConvertType(values[0], new(V3ExactInputSingleParams)).(*V3ExactInputSingleParams)
	return params, nil
}

// EncodeWrap encodes a wrapped-native deposit call; the deposited amount
// travels as call value.
func EncodeWrap() ([]byte, error) {
	parsed, err := WETHABI()
	if err != nil {
		return nil, fmt.Errorf("parse weth abi: %w", err)
	}
	data, err := parsed.Pack("deposit")
	if err != nil {
		return nil, fmt.Errorf("pack deposit: %w", err)
	}
	return data, nil
}

// EncodeUnwrap encodes a wrapped-native withdraw call. The amount is a
// placeholder; the executor injects its live balance at
// WETHWithdrawAmountOffset.
func EncodeUnwrap(amount *big.Int) ([]byte, error) {
	parsed, err := WETHABI()
	if err != nil {
		return nil, fmt.Errorf("parse weth abi: %w", err)
	}
	data, err := parsed.Pack("withdraw", amount)
	if err != nil {
		return nil, fmt.Errorf("pack withdraw: %w", err)
	}
	return data, nil
}

type executorPull struct {
	Token  common.Address
	Amount *big.Int
}

type executorApproval struct {
	Token   common.Address
	Spender common.Address
	Amount  *big.Int
}

type executorCall struct {
	Target       common.Address
	Value        *big.Int
	Data         []byte
	InjectToken  common.Address
	InjectOffset *big.Int
}

// EncodeExecute encodes the executor's execute(pulls, approvals, calls,
// tokensToFlush) entrypoint from a built plan.
func EncodeExecute(plan *model.SwapTransactionPlan) ([]byte, error) {
	parsed, err := ExecutorABI()
	if err != nil {
		return nil, fmt.Errorf("parse executor abi: %w", err)
	}

	pulls := make([]executorPull, 0, len(plan.Pulls))
	for _, pull := range plan.Pulls {
		pulls = append(pulls, executorPull{
			Token:  common.HexToAddress(pull.Token),
			Amount: pull.Amount,
		})
	}

	approvals := make([]executorApproval, 0, len(plan.Approvals))
	for _, approval := range plan.Approvals {
		approvals = append(approvals, executorApproval{
			Token:   common.HexToAddress(approval.Token),
			Spender: common.HexToAddress(approval.Spender),
			Amount:  approval.Amount,
		})
	}

	calls := make([]executorCall, 0, len(plan.Calls))
	for _, call := range plan.Calls {
		calls = append(calls, executorCall{
			Target:       common.HexToAddress(call.Target),
			Value:        call.Value,
			Data:         call.Data,
			InjectToken:  common.HexToAddress(call.InjectToken),
			InjectOffset: new(big.Int).SetUint64(call.InjectOffset),
		})
	}

	flush := make([]common.Address, 0, len(plan.TokensToFlush))
	for _, token := range plan.TokensToFlush {
		flush = append(flush, common.HexToAddress(token))
	}

	data, err := parsed.Pack("execute", pulls, approvals, calls, flush)
	if err != nil {
		return nil, fmt.Errorf("pack execute: %w", err)
	}
	return data, nil
}
