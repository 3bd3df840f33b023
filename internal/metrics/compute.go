package metrics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"sol-memebot/internal/domain"
)

// computeFromTrades calculates the run aggregate from its trade records.
// Closed trades are sorted by ClosedAt ASC, TradeID ASC before computing
// order-dependent metrics (MaxDrawdownUSD, MaxConsecutiveLosses).
func computeFromTrades(runID string, trades []*domain.TradeRecord) *domain.RunAggregate {
	agg := &domain.RunAggregate{
		RunID:          runID,
		TotalTrades:    len(trades),
		InvestedUSD:    decimal.Zero,
		RealizedPnLUSD: decimal.Zero,
		ExitsByReason:  make(map[string]int),
	}

	tokens := make(map[string]struct{})
	var closed []*domain.TradeRecord
	for _, t := range trades {
		tokens[t.TokenID] = struct{}{}
		agg.InvestedUSD = agg.InvestedUSD.Add(decimal.NewFromFloat(t.USDInvested))
		if t.IsOpen() || t.RealizedPnL == nil {
			agg.OpenTrades++
			continue
		}
		closed = append(closed, t)
	}
	agg.TotalTokens = len(tokens)
	agg.ClosedTrades = len(closed)

	n := len(closed)
	if n == 0 {
		return agg
	}

	sort.Slice(closed, func(i, j int) bool {
		ci, cj := closedAt(closed[i]), closedAt(closed[j])
		if ci != cj {
			return ci < cj
		}
		return closed[i].TradeID < closed[j].TradeID
	})

	pnls := make([]float64, n)
	returns := make([]float64, n)
	for i, t := range closed {
		pnl := *t.RealizedPnL
		pnls[i] = pnl
		returns[i] = computeReturn(pnl, t.USDInvested)

		agg.RealizedPnLUSD = agg.RealizedPnLUSD.Add(decimal.NewFromFloat(pnl))
		if pnl > 0 {
			agg.Wins++
		} else {
			agg.Losses++
		}
		if t.ExitReason != nil {
			agg.ExitsByReason[*t.ExitReason]++
		}
	}

	sortedReturns := make([]float64, n)
	copy(sortedReturns, returns)
	sort.Float64s(sortedReturns)

	mean := computeMean(returns)

	agg.WinRate = computeWinRate(agg.Wins, n)
	agg.ReturnMean = mean
	agg.ReturnMedian = computePercentile(sortedReturns, 0.50)
	agg.ReturnP10 = computePercentile(sortedReturns, 0.10)
	agg.ReturnP90 = computePercentile(sortedReturns, 0.90)
	agg.ReturnMin = sortedReturns[0]
	agg.ReturnMax = sortedReturns[n-1]
	agg.ReturnStddev = computeStddev(returns, mean)
	agg.MaxDrawdownUSD = computeMaxDrawdown(pnls)
	agg.MaxConsecutiveLosses = computeMaxConsecutiveLosses(pnls)

	return agg
}

func closedAt(t *domain.TradeRecord) int64 {
	if t.ClosedAt == nil {
		return 0
	}
	return t.ClosedAt.UnixNano()
}

// computeReturn is pnl relative to the capital put in; 0 when nothing was invested.
func computeReturn(pnl, invested float64) float64 {
	if invested <= 0 {
		return 0
	}
	return pnl / invested
}

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative pnl.
// pnls must be in close order.
func computeMaxDrawdown(pnls []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, p := range pnls {
		cumulative += p
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computeMaxConsecutiveLosses finds longest streak of pnl <= 0.
func computeMaxConsecutiveLosses(pnls []float64) int {
	maxStreak := 0
	currentStreak := 0

	for _, p := range pnls {
		if p <= 0 {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
