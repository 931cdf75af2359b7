package swap

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aequiswap/internal/dex"
)

// ApprovalTarget is one (token, spender) pair a plan would otherwise approve.
type ApprovalTarget struct {
	Token   string
	Spender string
}

// AllowanceKey keys the allowance map case-insensitively by token and
// spender.
func AllowanceKey(token, spender string) string {
	return strings.ToLower(token) + "-" + strings.ToLower(spender)
}

// FetchAllowances batches one allowance read per distinct spender and returns
// a map keyed by AllowanceKey. A failed read for one spender is logged and
// treated as "no existing allowance"; skipping an approval is an optimization,
// never a correctness requirement. Without a Lens the map is empty and every
// approval is required.
func FetchAllowances(ctx context.Context, lens *dex.Lens, owner common.Address, targets []ApprovalTarget, logger *zap.Logger) map[string]*big.Int {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowances := make(map[string]*big.Int, len(targets))
	if lens == nil || len(targets) == 0 {
		return allowances
	}

	bySpender := map[string][]string{}
	for _, target := range targets {
		spender := strings.ToLower(target.Spender)
		bySpender[spender] = append(bySpender[spender], target.Token)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for spender, tokens := range bySpender {
		spender, tokens := spender, tokens
		group.Go(func() error {
			tokenAddrs := make([]common.Address, 0, len(tokens))
			for _, token := range tokens {
				tokenAddrs = append(tokenAddrs, common.HexToAddress(token))
			}
			values, err := lens.Allowances(groupCtx, tokenAddrs, owner, common.HexToAddress(spender))
			if err != nil {
				logger.Warn("allowance read failed, approvals assumed required",
					zap.String("spender", spender),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			for i, token := range tokens {
				allowances[AllowanceKey(token, spender)] = values[i]
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return allowances
}
