package simulation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sol-memebot/internal/domain"
)

// Portfolio errors
var (
	ErrPortfolioFull         = errors.New("portfolio: max positions reached")
	ErrInsufficientCapital   = errors.New("portfolio: insufficient capital")
	ErrPositionAlreadyHeld   = errors.New("portfolio: token already held")
	ErrPositionNotFound      = errors.New("portfolio: position not found")
	ErrPortfolioInconsistent = errors.New("portfolio: invariant violated")
)

// Portfolio is the simulated capital and the set of open positions.
// Positions keep their insertion order. It is owned by a single run loop and
// is not safe for concurrent use.
type Portfolio struct {
	capital      decimal.Decimal // SOL
	maxPositions int
	positions    []*domain.Position
}

// NewPortfolio creates a portfolio holding startingSOL and no positions.
func NewPortfolio(startingSOL float64, maxPositions int) *Portfolio {
	return &Portfolio{
		capital:      decimal.NewFromFloat(startingSOL),
		maxPositions: maxPositions,
	}
}

// Capital returns the available SOL.
func (p *Portfolio) Capital() decimal.Decimal {
	return p.capital
}

// CapitalSOL returns the available SOL as a float.
func (p *Portfolio) CapitalSOL() float64 {
	return p.capital.InexactFloat64()
}

// Len returns the number of open positions.
func (p *Portfolio) Len() int {
	return len(p.positions)
}

// HasCapacity reports whether another position may be opened.
func (p *Portfolio) HasCapacity() bool {
	return len(p.positions) < p.maxPositions
}

// Holds reports whether tokenID has an open position.
func (p *Portfolio) Holds(tokenID string) bool {
	return p.index(tokenID) >= 0
}

// Positions returns copies of the open positions in insertion order.
// Mutating the result does not affect the portfolio.
func (p *Portfolio) Positions() []domain.Position {
	out := make([]domain.Position, len(p.positions))
	for i, pos := range p.positions {
		out[i] = *pos
	}
	return out
}

// TradeSize returns min(maxPerTrade, available capital).
func (p *Portfolio) TradeSize(maxPerTrade float64) decimal.Decimal {
	return decimal.Min(decimal.NewFromFloat(maxPerTrade), p.capital)
}

// Open debits spend and inserts the position, recording spend as its SOLSpent.
func (p *Portfolio) Open(pos domain.Position, spend decimal.Decimal) error {
	if !p.HasCapacity() {
		return ErrPortfolioFull
	}
	if p.Holds(pos.TokenID) {
		return fmt.Errorf("%w: %s", ErrPositionAlreadyHeld, pos.TokenID)
	}
	if spend.IsNegative() || spend.GreaterThan(p.capital) {
		return fmt.Errorf("%w: need %s SOL, have %s", ErrInsufficientCapital, spend, p.capital)
	}

	p.capital = p.capital.Sub(spend)
	pos.SOLSpent = spend.InexactFloat64()
	p.positions = append(p.positions, &pos)
	return nil
}

// Observe replaces the latest observation recorded for an open position.
func (p *Portfolio) Observe(tokenID string, obs domain.TokenObservation) {
	if i := p.index(tokenID); i >= 0 {
		p.positions[i].Observation = obs
	}
}

// Close removes the position and credits proceedsSOL.
func (p *Portfolio) Close(tokenID string, proceedsSOL float64) error {
	i := p.index(tokenID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPositionNotFound, tokenID)
	}
	if proceedsSOL > 0 {
		p.capital = p.capital.Add(decimal.NewFromFloat(proceedsSOL))
	}
	p.positions = append(p.positions[:i], p.positions[i+1:]...)
	return nil
}

// CheckInvariants verifies the position limit and non-negative capital.
func (p *Portfolio) CheckInvariants() error {
	if len(p.positions) > p.maxPositions {
		return fmt.Errorf("%w: %d open positions, max %d", ErrPortfolioInconsistent, len(p.positions), p.maxPositions)
	}
	if p.capital.IsNegative() {
		return fmt.Errorf("%w: capital %s", ErrPortfolioInconsistent, p.capital)
	}
	return nil
}

func (p *Portfolio) index(tokenID string) int {
	for i, pos := range p.positions {
		if pos.TokenID == tokenID {
			return i
		}
	}
	return -1
}
