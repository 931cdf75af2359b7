package model

import (
	"math/big"
	"time"
)

// HopVersion is the AMM family of a single route hop.
type HopVersion string

const (
	HopV2 HopVersion = "v2"
	HopV3 HopVersion = "v3"
)

// RoutePreference restricts which AMM families a quote may use.
type RoutePreference string

const (
	RouteAuto RoutePreference = "auto"
	RouteV2   RoutePreference = "v2"
	RouteV3   RoutePreference = "v3"
)

// AllowedVersions expands a preference into the hop versions it permits.
func (p RoutePreference) AllowedVersions() []HopVersion {
	switch p {
	case RouteV2:
		return []HopVersion{HopV2}
	case RouteV3:
		return []HopVersion{HopV3}
	default:
		return []HopVersion{HopV2, HopV3}
	}
}

// PriceSource is one concrete hop execution, owned by exactly one PriceQuote.
// Approximate marks outputs derived from the mid price instead of a real
// simulation.
type PriceSource struct {
	DexID       string
	PoolAddress string
	FeeTier     uint32
	Approximate bool
	AmountIn    *big.Int
	AmountOut   *big.Int
}

// PriceQuote is the unit of comparison between candidate routes.
// Invariant: len(Path) == len(Sources)+1. Gas cost fields are nil when no gas
// price was observed for the request.
type PriceQuote struct {
	Chain               string
	AmountIn            *big.Int
	AmountOut           *big.Int
	PriceQ18            *big.Int
	ExecutionPriceQ18   *big.Int
	MidPriceQ18         *big.Int
	PriceImpactBps      int64
	Path                []TokenMetadata
	Sources             []PriceSource
	LiquidityScore      *big.Int
	HopVersions         []HopVersion
	EstimatedGasUnits   *big.Int
	EstimatedGasCostWei *big.Int
	GasPriceWei         *big.Int

	// Offers holds the remaining ranked candidates. Attached only to the
	// selected best quote; entries never carry nested offers.
	Offers []*PriceQuote

	// ExpiresAt bounds how long the quoted amounts may be trusted.
	ExpiresAt time.Time
}

// TokenIn returns the route's input token.
func (q *PriceQuote) TokenIn() TokenMetadata { return q.Path[0] }

// TokenOut returns the route's output token.
func (q *PriceQuote) TokenOut() TokenMetadata { return q.Path[len(q.Path)-1] }
