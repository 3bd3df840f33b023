package strategy

import "sol-memebot/internal/domain"

// ExitDecision is the outcome of EvaluateExit. Reason is empty when ShouldExit is false.
type ExitDecision struct {
	ShouldExit bool
	Reason     string
}

// ExitInput is what an exit evaluation needs for one open position.
type ExitInput struct {
	EntryMarketCap float64
	EntryLiquidity float64
	Current        domain.TokenObservation // freshly fetched for the position's token
}

// exitRule reports whether it triggers for the input.
type exitRule struct {
	reason  string
	trigger func(in ExitInput, p Parameters) bool
}

// exitRules are evaluated in this order; the first match wins.
var exitRules = []exitRule{
	{domain.ExitReasonStopLoss, stopLossHit},
	{domain.ExitReasonProfitTarget, profitTargetHit},
	{domain.ExitReasonLPSpike, lpSpikeHit},
	{domain.ExitReasonGraduation, graduated},
}

// EvaluateExit checks the exit rules in fixed priority order
// (stop_loss, profit_target, lp_spike, graduation) and returns at most one reason.
func EvaluateExit(in ExitInput, p Parameters) ExitDecision {
	for _, rule := range exitRules {
		if rule.trigger(in, p) {
			return ExitDecision{ShouldExit: true, Reason: rule.reason}
		}
	}
	return ExitDecision{}
}

func stopLossHit(in ExitInput, p Parameters) bool {
	if in.EntryMarketCap <= 0 {
		return false
	}
	return in.Current.MarketCapUSD < in.EntryMarketCap*(1-p.StopLossPct)
}

func profitTargetHit(in ExitInput, p Parameters) bool {
	// Profit is undefined without an entry market cap.
	if in.EntryMarketCap <= 0 {
		return false
	}
	profitPct := (in.Current.MarketCapUSD - in.EntryMarketCap) / in.EntryMarketCap
	return profitPct >= p.MinProfitTargetPct && profitPct <= p.MaxProfitTargetPct
}

func lpSpikeHit(in ExitInput, p Parameters) bool {
	if in.Current.RaydiumLPDetected {
		return true
	}
	return in.EntryLiquidity > 0 && in.Current.LiquidityUSD > in.EntryLiquidity*p.LPSpikeExitMultiplier
}

func graduated(in ExitInput, _ Parameters) bool {
	return in.Current.Graduation
}
