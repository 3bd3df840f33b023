package strategy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned when a parameter set fails validation.
var ErrInvalidParameters = errors.New("invalid strategy parameters")

// Parameters is a named set of entry filters, scoring weights, exit thresholds
// and portfolio limits. It is passed by value and never mutated during a run.
type Parameters struct {
	Name string `yaml:"name"`

	// Entry filters
	MinMarketCapUSD             float64 `yaml:"min_market_cap_usd"`
	MaxMarketCapUSD             float64 `yaml:"max_market_cap_usd"`
	MinHolders                  int     `yaml:"min_holders"`
	MaxDevHoldPct               float64 `yaml:"max_dev_hold_pct"`
	RejectUpgradeable           bool    `yaml:"reject_upgradeable"`
	RejectFreezeAuthority       bool    `yaml:"reject_freeze_authority"`
	MinScoreToBuy               float64 `yaml:"min_score_to_buy"`
	RequireMomentumOrGraduation bool    `yaml:"require_momentum_or_graduation"`

	// Scoring weights
	LowDevHoldBonus              float64 `yaml:"low_dev_hold_bonus"`
	HighDevHoldPenaltyMultiplier float64 `yaml:"high_dev_hold_penalty_multiplier"`
	LiquidityBonusDivisor        float64 `yaml:"liquidity_bonus_divisor"`
	SweetSpotMinUSD              float64 `yaml:"sweet_spot_min_usd"`
	SweetSpotMaxUSD              float64 `yaml:"sweet_spot_max_usd"`
	MarketCapSweetSpotBonus      float64 `yaml:"market_cap_sweet_spot_bonus"`
	NearSweetSpotBonus           float64 `yaml:"near_sweet_spot_bonus"`
	MomentumBonus                float64 `yaml:"momentum_bonus"`
	GraduationBonus              float64 `yaml:"graduation_bonus"`
	UpgradeablePenalty           float64 `yaml:"upgradeable_penalty"`
	FreezeAuthorityPenalty       float64 `yaml:"freeze_authority_penalty"`

	// Exit rules
	StopLossPct           float64 `yaml:"stop_loss_pct"`            // 0.2 = -20%
	MinProfitTargetPct    float64 `yaml:"min_profit_target_pct"`    // 0.5 = +50%
	MaxProfitTargetPct    float64 `yaml:"max_profit_target_pct"`    // 1.0 = +100%
	LPSpikeExitMultiplier float64 `yaml:"lp_spike_exit_multiplier"` // 2.0 = liquidity doubled

	// Portfolio rules
	MaxPositions       int     `yaml:"max_positions"`
	MaxSOLPerTrade     float64 `yaml:"max_sol_per_trade"`
	StartingSOLBalance float64 `yaml:"starting_sol_balance"`
	SOLUSDPrice        float64 `yaml:"sol_usd_price"`
}

type namedValue struct {
	name  string
	value float64
}

// Validate checks parameter consistency. Runs must call it before starting.
func (p Parameters) Validate() error {
	floats := []namedValue{
		{"min_market_cap_usd", p.MinMarketCapUSD},
		{"max_market_cap_usd", p.MaxMarketCapUSD},
		{"max_dev_hold_pct", p.MaxDevHoldPct},
		{"min_score_to_buy", p.MinScoreToBuy},
		{"low_dev_hold_bonus", p.LowDevHoldBonus},
		{"high_dev_hold_penalty_multiplier", p.HighDevHoldPenaltyMultiplier},
		{"sweet_spot_min_usd", p.SweetSpotMinUSD},
		{"sweet_spot_max_usd", p.SweetSpotMaxUSD},
		{"market_cap_sweet_spot_bonus", p.MarketCapSweetSpotBonus},
		{"near_sweet_spot_bonus", p.NearSweetSpotBonus},
		{"momentum_bonus", p.MomentumBonus},
		{"graduation_bonus", p.GraduationBonus},
		{"upgradeable_penalty", p.UpgradeablePenalty},
		{"freeze_authority_penalty", p.FreezeAuthorityPenalty},
		{"stop_loss_pct", p.StopLossPct},
		{"min_profit_target_pct", p.MinProfitTargetPct},
		{"max_profit_target_pct", p.MaxProfitTargetPct},
		{"starting_sol_balance", p.StartingSOLBalance},
		// Checked for finiteness only; the switch below requires them > 0.
		{"liquidity_bonus_divisor", p.LiquidityBonusDivisor},
		{"lp_spike_exit_multiplier", p.LPSpikeExitMultiplier},
		{"max_sol_per_trade", p.MaxSOLPerTrade},
		{"sol_usd_price", p.SOLUSDPrice},
	}
	// NaN fails every comparison below, so it has to be caught first.
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameters, f.name, f.value)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidParameters, f.name, f.value)
		}
	}

	switch {
	case p.MinHolders < 0:
		return fmt.Errorf("%w: min_holders must be >= 0, got %d", ErrInvalidParameters, p.MinHolders)
	case p.MinMarketCapUSD > p.MaxMarketCapUSD:
		return fmt.Errorf("%w: min_market_cap_usd %v > max_market_cap_usd %v", ErrInvalidParameters, p.MinMarketCapUSD, p.MaxMarketCapUSD)
	case p.SweetSpotMinUSD > p.SweetSpotMaxUSD:
		return fmt.Errorf("%w: sweet_spot_min_usd %v > sweet_spot_max_usd %v", ErrInvalidParameters, p.SweetSpotMinUSD, p.SweetSpotMaxUSD)
	case p.MaxDevHoldPct > 100:
		return fmt.Errorf("%w: max_dev_hold_pct must be <= 100, got %v", ErrInvalidParameters, p.MaxDevHoldPct)
	case p.MinScoreToBuy > 100:
		return fmt.Errorf("%w: min_score_to_buy must be <= 100, got %v", ErrInvalidParameters, p.MinScoreToBuy)
	case p.LiquidityBonusDivisor <= 0:
		return fmt.Errorf("%w: liquidity_bonus_divisor must be > 0, got %v", ErrInvalidParameters, p.LiquidityBonusDivisor)
	case p.StopLossPct >= 1:
		return fmt.Errorf("%w: stop_loss_pct must be < 1, got %v", ErrInvalidParameters, p.StopLossPct)
	case p.MinProfitTargetPct > p.MaxProfitTargetPct:
		return fmt.Errorf("%w: min_profit_target_pct %v > max_profit_target_pct %v", ErrInvalidParameters, p.MinProfitTargetPct, p.MaxProfitTargetPct)
	case p.LPSpikeExitMultiplier <= 0:
		return fmt.Errorf("%w: lp_spike_exit_multiplier must be > 0, got %v", ErrInvalidParameters, p.LPSpikeExitMultiplier)
	case p.MaxPositions < 1:
		return fmt.Errorf("%w: max_positions must be >= 1, got %d", ErrInvalidParameters, p.MaxPositions)
	case p.MaxSOLPerTrade <= 0:
		return fmt.Errorf("%w: max_sol_per_trade must be > 0, got %v", ErrInvalidParameters, p.MaxSOLPerTrade)
	case p.SOLUSDPrice <= 0:
		return fmt.Errorf("%w: sol_usd_price must be > 0, got %v", ErrInvalidParameters, p.SOLUSDPrice)
	}
	return nil
}
