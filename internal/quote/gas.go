package quote

import (
	"math/big"

	"aequiswap/internal/model"
)

// Gas model constants: a fixed executor base, per-hop swap costs by AMM
// family, and an overhead per extra hop.
const (
	gasBase             = 50_000
	gasPerV2Hop         = 70_000
	gasPerV3Hop         = 110_000
	gasMultiHopOverhead = 20_000
)

// EstimateGasUnits estimates the executor gas for a route over the given hop
// versions.
func EstimateGasUnits(versions []model.HopVersion) *big.Int {
	units := int64(gasBase)
	for _, version := range versions {
		if version == model.HopV3 {
			units += gasPerV3Hop
		} else {
			units += gasPerV2Hop
		}
	}
	if extra := len(versions) - 1; extra > 0 {
		units += int64(extra) * gasMultiHopOverhead
	}
	return big.NewInt(units)
}

// GasCost multiplies units by the observed gas price. A nil gas price yields
// nil: absence of a gas observation is tolerated, not an error.
func GasCost(units, gasPriceWei *big.Int) *big.Int {
	if units == nil || gasPriceWei == nil {
		return nil
	}
	return new(big.Int).Mul(units, gasPriceWei)
}
