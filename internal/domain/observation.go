package domain

import "time"

// TokenObservation is one snapshot of a token's observable state.
// Observations are values: a fresher snapshot for the same token is a new copy.
type TokenObservation struct {
	ID               string  // token mint address
	Category         string  // listing source label, e.g. "pumpfun"
	MarketCapUSD     float64 // >= 0
	DevHoldPct       float64 // 0..100
	LiquidityUSD     float64 // >= 0
	HolderCount      int     // >= 0
	Upgradeable      bool
	FreezeAuthority  bool
	Momentum         bool
	Graduation       bool
	BasePrice        float64 // quoted USD price before slippage
	DevWalletAddress *string // nullable
	IsDevKnownRugger bool

	// EntryMarketCap is set once when a position opens and never changes afterwards.
	EntryMarketCap    float64
	RaydiumLPDetected bool
}

// Snapshot phases.
const (
	SnapshotPhaseIngest    = "ingest"
	SnapshotPhaseExitCheck = "exit_check"
)

// ObservationSnapshot is an append-only time series point of an observation
// the engine acted on.
type ObservationSnapshot struct {
	RunID             string
	TokenID           string
	ObservedAt        int64 // Unix ms
	Phase             string
	MarketCapUSD      float64
	LiquidityUSD      float64
	HolderCount       int
	DevHoldPct        float64
	RaydiumLPDetected bool
	Score             *float64 // set for ingest snapshots
}

// SnapshotOf builds a snapshot from an observation.
func SnapshotOf(runID string, obs TokenObservation, observedAt int64, phase string) ObservationSnapshot {
	return ObservationSnapshot{
		RunID:             runID,
		TokenID:           obs.ID,
		ObservedAt:        observedAt,
		Phase:             phase,
		MarketCapUSD:      obs.MarketCapUSD,
		LiquidityUSD:      obs.LiquidityUSD,
		HolderCount:       obs.HolderCount,
		DevHoldPct:        obs.DevHoldPct,
		RaydiumLPDetected: obs.RaydiumLPDetected,
	}
}

// ObservationRecord is a persisted observation with the score it was given.
// Corresponds to the token_observations table in PostgreSQL.
type ObservationRecord struct {
	Observation TokenObservation
	Score       float64
	FirstSeenAt time.Time
}
