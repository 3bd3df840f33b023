package strategy

import "sol-memebot/internal/domain"

// EntryDecision is the outcome of Decide.
type EntryDecision struct {
	ShouldBuy bool
	Score     float64
}

// Decide combines the hard filters and the score into a buy/no-buy decision.
// Callers act on the result; Decide itself has no side effects.
func Decide(obs domain.TokenObservation, p Parameters) EntryDecision {
	score := ComputeScore(obs, p)
	basic := PassesBasicFilters(obs, p)

	signal := !p.RequireMomentumOrGraduation || obs.Momentum || obs.Graduation

	return EntryDecision{
		ShouldBuy: basic && score >= p.MinScoreToBuy && signal,
		Score:     score,
	}
}
