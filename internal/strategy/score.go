package strategy

import (
	"math"

	"sol-memebot/internal/domain"
)

const (
	baseScore         = 50.0
	holderBonusCap    = 30.0
	liquidityBonusCap = 25.0

	// Dev holdings between these bounds are neither penalised nor rewarded.
	devHoldPenaltyFloorPct = 10.0
	devHoldBonusCeilPct    = 5.0

	// devHoldFailPenalty sinks the score of tokens above MaxDevHoldPct.
	devHoldFailPenalty = 100.0
)

// ComputeScore rates an observation in [0, 100]. It is deterministic and has no side effects.
// A known rugger always scores 0.
func ComputeScore(obs domain.TokenObservation, p Parameters) float64 {
	if obs.IsDevKnownRugger {
		return 0
	}

	score := baseScore

	// Holders
	holders := float64(obs.HolderCount)
	minHolders := float64(p.MinHolders)
	if obs.HolderCount >= p.MinHolders {
		score += math.Min((holders-minHolders)/50, holderBonusCap)
	} else {
		score -= (minHolders - holders) / 10
	}

	// Dev hold
	switch {
	case obs.DevHoldPct > p.MaxDevHoldPct:
		score -= devHoldFailPenalty
	case obs.DevHoldPct > devHoldPenaltyFloorPct:
		score -= (obs.DevHoldPct - devHoldPenaltyFloorPct) * p.HighDevHoldPenaltyMultiplier
	case obs.DevHoldPct < devHoldBonusCeilPct:
		score += p.LowDevHoldBonus
	}

	// Liquidity
	score += math.Min(obs.LiquidityUSD/p.LiquidityBonusDivisor, liquidityBonusCap)

	// Market cap
	switch {
	case obs.MarketCapUSD >= p.SweetSpotMinUSD && obs.MarketCapUSD <= p.SweetSpotMaxUSD:
		score += p.MarketCapSweetSpotBonus
	case obs.MarketCapUSD > p.SweetSpotMaxUSD && obs.MarketCapUSD <= p.MaxMarketCapUSD:
		score += p.NearSweetSpotBonus
	}

	// Safety flags
	if obs.Upgradeable {
		score -= p.UpgradeablePenalty
	}
	if obs.FreezeAuthority {
		score -= p.FreezeAuthorityPenalty
	}

	if obs.Momentum {
		score += p.MomentumBonus
	}
	if obs.Graduation {
		score += p.GraduationBonus
	}

	return clamp(score, 0, 100)
}

// PassesBasicFilters applies the hard entry filters independently of the score.
func PassesBasicFilters(obs domain.TokenObservation, p Parameters) bool {
	switch {
	case obs.IsDevKnownRugger:
		return false
	case obs.MarketCapUSD < p.MinMarketCapUSD || obs.MarketCapUSD > p.MaxMarketCapUSD:
		return false
	case obs.HolderCount < p.MinHolders:
		return false
	case obs.DevHoldPct >= p.MaxDevHoldPct:
		return false
	case p.RejectUpgradeable && obs.Upgradeable:
		return false
	case p.RejectFreezeAuthority && obs.FreezeAuthority:
		return false
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
