package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"sol-memebot/internal/domain"
)

// Report is the summary of one simulation run.
type Report struct {
	GeneratedAt time.Time
	RunID       string

	// Run is nil when the run never wrote its completion marker.
	Run *domain.RunRecord

	Summary   Summary
	Aggregate *domain.RunAggregate // nil when the run opened no positions

	// Trades sorted by opened_at, trade_id
	Trades []TradeRow
}

// Summary contains the capital view of the run.
type Summary struct {
	Preset        string
	StartingSOL   decimal.Decimal
	FinalSOL      decimal.Decimal
	ChangeSOL     decimal.Decimal
	ChangePct     decimal.Decimal // ChangeSOL / StartingSOL * 100, 0 without starting capital
	OpenPositions int
	Observations  int
	Duration      time.Duration
	Complete      bool
}

// TradeRow represents one row in the trades table.
type TradeRow struct {
	TradeID     string
	TokenID     string
	Status      string // OPEN | CLOSED
	Score       float64
	EntryPrice  float64
	ExitPrice   *float64
	USDInvested float64
	PnLUSD      *float64
	ReturnPct   *float64
	ExitReason  string
	OpenedAt    time.Time
	ClosedAt    *time.Time
}

// Trade statuses.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)
