package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"sol-memebot/internal/idhash"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	if !s.Complete {
		sb.WriteString("**Run incomplete:** no completion marker was recorded.\n\n")
	} else {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Preset | %s |\n", s.Preset))
		sb.WriteString(fmt.Sprintf("| Started | %s |\n", r.Run.StartedAt.UTC().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Duration | %s |\n", s.Duration.Round(time.Second)))
		sb.WriteString(fmt.Sprintf("| Observations | %d |\n", s.Observations))
		sb.WriteString(fmt.Sprintf("| Starting SOL | %s |\n", s.StartingSOL.StringFixed(4)))
		sb.WriteString(fmt.Sprintf("| Final SOL | %s |\n", s.FinalSOL.StringFixed(4)))
		sb.WriteString(fmt.Sprintf("| Change | %s SOL (%s%%) |\n", s.ChangeSOL.StringFixed(4), s.ChangePct.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("| Open Positions | %d |\n", s.OpenPositions))
		sb.WriteString("\n")
	}

	// Performance
	sb.WriteString("## Performance\n\n")
	if a := r.Aggregate; a != nil {
		sb.WriteString("| Trades | Closed | Open | Wins | Losses | WinRate | PnL USD | Mean | Median | P10 | P90 | MaxDD USD | MaxLoss |\n")
		sb.WriteString("|--------|--------|------|------|--------|---------|---------|------|--------|-----|-----|-----------|---------|\n")
		sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %.4f | %s | %.4f | %.4f | %.4f | %.4f | %.2f | %d |\n",
			a.TotalTrades, a.ClosedTrades, a.OpenTrades, a.Wins, a.Losses, a.WinRate,
			a.RealizedPnLUSD.StringFixed(2), a.ReturnMean, a.ReturnMedian, a.ReturnP10, a.ReturnP90,
			a.MaxDrawdownUSD, a.MaxConsecutiveLosses))
		sb.WriteString("\n")

		if len(a.ExitsByReason) > 0 {
			reasons := make([]string, 0, len(a.ExitsByReason))
			for reason := range a.ExitsByReason {
				reasons = append(reasons, reason)
			}
			sort.Strings(reasons)

			sb.WriteString("### Exits by Reason\n\n")
			sb.WriteString("| Reason | Count |\n")
			sb.WriteString("|--------|-------|\n")
			for _, reason := range reasons {
				sb.WriteString(fmt.Sprintf("| %s | %d |\n", reason, a.ExitsByReason[reason]))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No trades recorded.\n\n")
	}

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Trade | Token | Status | Score | Entry | Exit | USD In | PnL | Return% | Reason |\n")
		sb.WriteString("|-------|-------|--------|-------|-------|------|--------|-----|---------|--------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.1f | %.8g | %s | %.2f | %s | %s | %s |\n",
				idhash.Short(t.TradeID), t.TokenID, t.Status, t.Score, t.EntryPrice,
				optFloat(t.ExitPrice, "%.8g"), t.USDInvested,
				optFloat(t.PnLUSD, "%.2f"), optFloat(t.ReturnPct, "%.2f"), orDash(t.ExitReason)))
		}
	} else {
		sb.WriteString("No trades recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func optFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
