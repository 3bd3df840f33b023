package ingestion

import (
	"math"
	"strconv"
	"strings"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/solana"
)

// CategoryUnknown labels listings whose provider gave no category.
const CategoryUnknown = "unknown"

// SignalThresholds derive the momentum and graduation flags.
type SignalThresholds struct {
	MomentumLiquidityUSD      float64 // momentum when liquidity exceeds this
	GraduationMinMarketCapUSD float64
	GraduationMaxMarketCapUSD float64
	GraduationLiquidityUSD    float64 // graduation also needs liquidity above this
}

// DefaultSignalThresholds returns the standard thresholds.
func DefaultSignalThresholds() SignalThresholds {
	return SignalThresholds{
		MomentumLiquidityUSD:      1_000,
		GraduationMinMarketCapUSD: 50_000,
		GraduationMaxMarketCapUSD: 300_000,
		GraduationLiquidityUSD:    1_000,
	}
}

// Normalize converts a raw listing into an observation. Missing or unparseable
// numbers become 0. The creator wallet is kept only if it is a valid address.
func Normalize(raw RawListing) domain.TokenObservation {
	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = CategoryUnknown
	}

	obs := domain.TokenObservation{
		ID:           strings.TrimSpace(raw.TokenAddress),
		Category:     category,
		MarketCapUSD: parseAmount(raw.MarketCapUSD),
		LiquidityUSD: parseAmount(raw.LiquidityUSD),
		BasePrice:    parseAmount(raw.PriceUSD),
	}

	if creator := strings.TrimSpace(raw.Creator); solana.IsValidAddress(creator) {
		obs.DevWalletAddress = &creator
	}
	return obs
}

// ApplyEnrichment overlays enrichment results. Parts that are nil leave the
// observation's defaults untouched.
func ApplyEnrichment(obs domain.TokenObservation, enr Enrichment) domain.TokenObservation {
	if enr.Holders != nil && enr.Holders.Total > 0 {
		obs.HolderCount = int(enr.Holders.Total)
	}

	if holder, ok := devHolder(obs.DevWalletAddress, enr.TopHolders); ok {
		obs.DevHoldPct = clampPct(holder.PercentOfSupply)
		if obs.DevWalletAddress == nil {
			owner := holder.OwnerAddress
			obs.DevWalletAddress = &owner
		}
	}

	if enr.Metadata != nil {
		obs.FreezeAuthority = enr.Metadata.FreezeAuthority != ""
		obs.Upgradeable = enr.Metadata.IsMutable
	}

	if enr.Pair != nil {
		obs = applyPair(obs, enr.Pair, false)
	}
	return obs
}

// PreferPairQuotes replaces price and market cap with the pair's USD quote
// where it has one. Used for listings priced from SOL at an assumed rate, so
// that entry and later refreshes share the same basis.
func PreferPairQuotes(obs domain.TokenObservation, pair *PairInfo) domain.TokenObservation {
	if pair == nil {
		return obs
	}
	return applyPair(obs, pair, true)
}

// ApplyRefresh produces a fresher observation from the previous one and a
// newly fetched pair. A nil pair returns prev unchanged.
func ApplyRefresh(prev domain.TokenObservation, pair *PairInfo, th SignalThresholds) domain.TokenObservation {
	if pair == nil {
		return prev
	}
	return DeriveSignals(applyPair(prev, pair, true), th)
}

// DeriveSignals sets Momentum and Graduation from liquidity and market cap.
func DeriveSignals(obs domain.TokenObservation, th SignalThresholds) domain.TokenObservation {
	obs.Momentum = obs.LiquidityUSD > th.MomentumLiquidityUSD
	obs.Graduation = obs.MarketCapUSD >= th.GraduationMinMarketCapUSD &&
		obs.MarketCapUSD <= th.GraduationMaxMarketCapUSD &&
		obs.LiquidityUSD > th.GraduationLiquidityUSD
	return obs
}

func applyPair(obs domain.TokenObservation, pair *PairInfo, refresh bool) domain.TokenObservation {
	if pair.LiquidityUSD != nil {
		obs.LiquidityUSD = nonNegative(*pair.LiquidityUSD)
	}
	if pair.PriceUSD != nil && (refresh || obs.BasePrice <= 0) {
		obs.BasePrice = nonNegative(*pair.PriceUSD)
	}
	if pair.MarketCapUSD != nil && (refresh || obs.MarketCapUSD <= 0) {
		obs.MarketCapUSD = nonNegative(*pair.MarketCapUSD)
	}
	if pair.OnRaydium {
		obs.RaydiumLPDetected = true
	}
	return obs
}

// devHolder finds the creator's entry among the top holders. Without a known
// creator it takes the first holder that is a real wallet; program-derived
// accounts such as the bonding curve are skipped.
func devHolder(creator *string, holders []TopHolder) (TopHolder, bool) {
	if creator != nil {
		for _, h := range holders {
			if h.OwnerAddress == *creator {
				return h, true
			}
		}
		return TopHolder{}, false
	}
	for _, h := range holders {
		if solana.IsWallet(h.OwnerAddress) {
			return h, true
		}
	}
	return TopHolder{}, false
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return nonNegative(v)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampPct(v float64) float64 {
	return math.Min(nonNegative(v), 100)
}
