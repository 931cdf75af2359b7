package model

import "math/big"

// TokenPull instructs the executor to pull tokens from the caller.
type TokenPull struct {
	Token  string
	Amount *big.Int
}

// TokenApproval instructs the executor to approve a router as spender.
type TokenApproval struct {
	Token   string
	Spender string
	Amount  *big.Int
}

// ExecutorCall is one ordered call the executor dispatches. A non-zero
// InjectToken obliges the executor to overwrite 32 bytes of Data at
// InjectOffset with its live balance of that token immediately before the
// call.
type ExecutorCall struct {
	Target       string
	Value        *big.Int
	Data         []byte
	InjectToken  string
	InjectOffset uint64
}

// ContractCall is a fully encoded transaction the caller can sign and send.
type ContractCall struct {
	To    string
	Data  []byte
	Value *big.Int
}

// SwapTransactionPlan is the executable form of a winning quote. Immutable
// after construction, never persisted.
type SwapTransactionPlan struct {
	Executor         string
	DexID            string
	AmountIn         *big.Int
	AmountOut        *big.Int
	AmountOutMinimum *big.Int
	Deadline         int64
	Pulls            []TokenPull
	Approvals        []TokenApproval
	Calls            []ExecutorCall
	TokensToFlush    []string
	Call             ContractCall
}
