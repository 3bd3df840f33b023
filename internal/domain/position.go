package domain

import "time"

// Position is an open simulated holding. It is never partially closed.
type Position struct {
	TradeID      string
	TokenID      string
	EntryPrice   float64 // > 0 for a sellable position
	Quantity     float64
	USDInvested  float64
	SOLSpent     float64
	OpenedAt     time.Time
	ScoreAtEntry float64

	EntryMarketCap float64
	EntryLiquidity float64

	// Observation is the latest snapshot seen for the token.
	Observation TokenObservation
}
