package domain

import "github.com/shopspring/decimal"

// RunAggregate summarizes the trades of one simulation run.
// Return figures are per closed trade: realized_pnl / usd_invested.
type RunAggregate struct {
	RunID string

	// Counts
	TotalTrades  int // BUY records opened
	ClosedTrades int
	OpenTrades   int
	TotalTokens  int
	Wins         int // closed with pnl > 0
	Losses       int // closed with pnl <= 0
	WinRate      float64

	// Money
	InvestedUSD    decimal.Decimal // all trades
	RealizedPnLUSD decimal.Decimal // closed trades

	// Return distribution
	ReturnMean   float64
	ReturnMedian float64
	ReturnP10    float64
	ReturnP90    float64
	ReturnMin    float64
	ReturnMax    float64
	ReturnStddev float64

	// Path dependent, in close order
	MaxDrawdownUSD       float64
	MaxConsecutiveLosses int

	ExitsByReason map[string]int
}
