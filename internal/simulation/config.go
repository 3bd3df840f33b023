package simulation

import (
	"errors"
	"fmt"
	"time"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/ingestion"
)

// ErrInvalidExecutionConfig is returned when an ExecutionConfig fails validation.
var ErrInvalidExecutionConfig = errors.New("invalid execution config")

// ExecutionConfig controls how simulated fills are priced and how long ingestion runs.
type ExecutionConfig struct {
	// Slippage multiplies the quoted base price on entry.
	Slippage Band

	// ExitMultipliers maps an exit reason to the band its exit price
	// multiplier is drawn from. Reasons without an entry use FallbackExit.
	ExitMultipliers map[string]Band
	FallbackExit    Band

	// MinTradeSOL is the capital floor below which no buy is attempted.
	MinTradeSOL float64

	// PollInterval is the pause between listing polls.
	PollInterval time.Duration

	// IngestDuration bounds the ingestion phase. Zero means no time bound.
	IngestDuration time.Duration

	// TargetCount stops ingestion once this many observations are buffered.
	// Zero means unbounded.
	TargetCount int

	Signals ingestion.SignalThresholds
}

// DefaultExecutionConfig returns the stock execution settings with a
// ten-minute ingestion window.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		Slippage: Band{Min: 1.00, Max: 1.05},
		ExitMultipliers: map[string]Band{
			domain.ExitReasonProfitTarget: {Min: 1.5, Max: 2.5},
			domain.ExitReasonLPSpike:      {Min: 1.3, Max: 3.0},
			domain.ExitReasonStopLoss:     {Min: 0.6, Max: 0.8},
			domain.ExitReasonGraduation:   {Min: 1.5, Max: 3.0},
		},
		FallbackExit:   Band{Min: 1.2, Max: 2.0},
		MinTradeSOL:    0.01,
		PollInterval:   5 * time.Second,
		IngestDuration: 10 * time.Minute,
		Signals:        ingestion.DefaultSignalThresholds(),
	}
}

// ExitBand returns the multiplier band for an exit reason.
func (c ExecutionConfig) ExitBand(reason string) Band {
	if b, ok := c.ExitMultipliers[reason]; ok {
		return b
	}
	return c.FallbackExit
}

// Validate checks the config. Runs must call it before ingestion starts.
func (c ExecutionConfig) Validate() error {
	if !c.Slippage.valid() {
		return fmt.Errorf("%w: slippage band %v", ErrInvalidExecutionConfig, c.Slippage)
	}
	for reason, b := range c.ExitMultipliers {
		if !b.valid() {
			return fmt.Errorf("%w: exit band for %s %v", ErrInvalidExecutionConfig, reason, b)
		}
	}
	if !c.FallbackExit.valid() {
		return fmt.Errorf("%w: fallback exit band %v", ErrInvalidExecutionConfig, c.FallbackExit)
	}

	switch {
	case c.MinTradeSOL < 0:
		return fmt.Errorf("%w: min trade SOL must be >= 0, got %v", ErrInvalidExecutionConfig, c.MinTradeSOL)
	case c.PollInterval < 0:
		return fmt.Errorf("%w: poll interval must be >= 0, got %v", ErrInvalidExecutionConfig, c.PollInterval)
	case c.IngestDuration < 0:
		return fmt.Errorf("%w: ingest duration must be >= 0, got %v", ErrInvalidExecutionConfig, c.IngestDuration)
	case c.TargetCount < 0:
		return fmt.Errorf("%w: target count must be >= 0, got %d", ErrInvalidExecutionConfig, c.TargetCount)
	case c.IngestDuration == 0 && c.TargetCount == 0:
		return fmt.Errorf("%w: ingestion needs a duration or a target count", ErrInvalidExecutionConfig)
	case c.Signals.GraduationMinMarketCapUSD > c.Signals.GraduationMaxMarketCapUSD:
		return fmt.Errorf("%w: graduation band min %v > max %v", ErrInvalidExecutionConfig,
			c.Signals.GraduationMinMarketCapUSD, c.Signals.GraduationMaxMarketCapUSD)
	}
	return nil
}
