package domain

import "time"

// Trade actions.
const (
	TradeActionBuy  = "BUY"
	TradeActionSell = "SELL"
)

// Exit reason codes, in evaluation priority order.
const (
	ExitReasonStopLoss     = "stop_loss"
	ExitReasonProfitTarget = "profit_target"
	ExitReasonLPSpike      = "lp_spike"
	ExitReasonGraduation   = "graduation"
)

// TradeRecord is the ledger entry for one simulated position.
// Corresponds to the trades table in PostgreSQL.
// Written as BUY when the position opens, then updated exactly once to SELL.
// A BUY record with nil exit fields denotes a still-open position.
type TradeRecord struct {
	TradeID string // deterministic hash
	RunID   string // simulation run (uuid)
	TokenID string // token mint
	Action  string // BUY | SELL

	// Entry
	EntryPrice  float64 // after slippage
	Quantity    float64
	USDInvested float64
	OpenedAt    time.Time
	Score       float64

	// Exit (nullable until closed)
	ExitPrice   *float64
	RealizedPnL *float64 // USD
	ClosedAt    *time.Time
	ExitReason  *string
}

// IsOpen reports whether the trade has not been closed yet.
func (t *TradeRecord) IsOpen() bool {
	return t.Action == TradeActionBuy && t.ExitPrice == nil
}

// TradeClose holds the SELL fields written when a position closes.
type TradeClose struct {
	ExitPrice   float64
	RealizedPnL float64
	ClosedAt    time.Time
	Reason      string
}

// RunRecord is the run-completion marker.
// Corresponds to the simulation_runs table in PostgreSQL.
type RunRecord struct {
	RunID            string
	Preset           string
	StartedAt        time.Time
	FinishedAt       time.Time
	StartingSOL      float64
	FinalSOL         float64
	OpenPositions    int
	ObservationsSeen int
}
