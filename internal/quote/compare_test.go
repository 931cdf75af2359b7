package quote

import (
	"math/big"
	"math/rand"
	"testing"

	"aequiswap/internal/model"
)

func rankedQuote(amountOut, gasCost, liquidity int64, impact int64) *model.PriceQuote {
	q := &model.PriceQuote{
		AmountIn:       big.NewInt(1_000_000),
		AmountOut:      big.NewInt(amountOut),
		LiquidityScore: big.NewInt(liquidity),
		PriceImpactBps: impact,
	}
	if gasCost >= 0 {
		q.EstimatedGasCostWei = big.NewInt(gasCost)
	}
	return q
}

// Each tie-break level must only be consulted when every level above it ties.
func TestComparePrecedence(t *testing.T) {
	higherOut := rankedQuote(2000, 1999, 1, 100)
	lowerOut := rankedQuote(1000, 0, 1000, 0)
	if Compare(higherOut, lowerOut) >= 0 {
		t.Fatalf("higher amountOut must win regardless of later keys")
	}

	cheaperGas := rankedQuote(1000, 10, 1, 100)
	dearerGas := rankedQuote(1000, 20, 1000, 0)
	if Compare(cheaperGas, dearerGas) >= 0 {
		t.Fatalf("net of gas must break an amountOut tie")
	}

	deeper := rankedQuote(1000, 10, 500, 100)
	shallower := rankedQuote(1000, 10, 100, 0)
	if Compare(deeper, shallower) >= 0 {
		t.Fatalf("liquidity must break a net-of-gas tie")
	}

	gentler := rankedQuote(1000, 10, 500, 5)
	harsher := rankedQuote(1000, 10, 500, 50)
	if Compare(gentler, harsher) >= 0 {
		t.Fatalf("lower impact must break a liquidity tie")
	}

	equal := rankedQuote(1000, 10, 500, 5)
	if Compare(gentler, equal) != 0 {
		t.Fatalf("identical keys must compare equal")
	}
}

func TestCompareNilGasCostRanksAsZero(t *testing.T) {
	free := rankedQuote(1000, -1, 1, 0) // no observed gas price
	paid := rankedQuote(1000, 1, 1, 0)
	if Compare(free, paid) >= 0 {
		t.Fatalf("absent gas cost must rank as zero cost")
	}
}

// Compare must define a strict total order: transitive over randomly
// generated quotes.
func TestCompareTransitive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	quotes := make([]*model.PriceQuote, 40)
	for i := range quotes {
		quotes[i] = rankedQuote(
			int64(rng.Intn(4)*1000),
			int64(rng.Intn(3)*10),
			int64(rng.Intn(3)*100),
			int64(rng.Intn(3)*25),
		)
	}

	sign := func(c int) int {
		switch {
		case c < 0:
			return -1
		case c > 0:
			return 1
		default:
			return 0
		}
	}

	for _, a := range quotes {
		for _, b := range quotes {
			ab := sign(Compare(a, b))
			if ba := sign(Compare(b, a)); ab != -ba {
				t.Fatalf("antisymmetry violated: %d vs %d", ab, ba)
			}
			for _, c := range quotes {
				bc := sign(Compare(b, c))
				ac := sign(Compare(a, c))
				if ab < 0 && bc < 0 && ac >= 0 {
					t.Fatalf("transitivity violated")
				}
				if ab == 0 && bc == 0 && ac != 0 {
					t.Fatalf("equality not transitive")
				}
			}
		}
	}
}

func TestSelectBestAttachesOffers(t *testing.T) {
	winner := rankedQuote(3000, 0, 1, 0)
	second := rankedQuote(2000, 0, 1, 0)
	third := rankedQuote(1000, 0, 1, 0)
	second.Offers = []*model.PriceQuote{third} // stale nesting must be cleared

	best, ok := SelectBest([]*model.PriceQuote{third, winner, second})
	if !ok {
		t.Fatalf("no winner selected")
	}
	if best != winner {
		t.Fatalf("wrong winner: amountOut=%s", best.AmountOut)
	}
	if len(best.Offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(best.Offers))
	}
	if best.Offers[0] != second || best.Offers[1] != third {
		t.Fatalf("offers not ranked")
	}
	for _, offer := range best.Offers {
		if offer.Offers != nil {
			t.Fatalf("offers must not nest")
		}
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, ok := SelectBest(nil); ok {
		t.Fatalf("empty candidate set must not select")
	}
}
