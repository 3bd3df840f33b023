package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders trade rows as CSV string. Nullable exit fields are empty
// for open trades.
func RenderCSV(trades []TradeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trade_id,token_id,status,score,entry_price,exit_price,")
	sb.WriteString("usd_invested,pnl_usd,return_pct,exit_reason,opened_at,closed_at\n")

	// Rows
	for _, t := range trades {
		closedAt := ""
		if t.ClosedAt != nil {
			closedAt = t.ClosedAt.UTC().Format(time.RFC3339)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f,%s,%s,%.6f,%s,%s,%s,%s,%s\n",
			t.TradeID,
			t.TokenID,
			t.Status,
			t.Score,
			csvFloat(&t.EntryPrice),
			csvFloat(t.ExitPrice),
			t.USDInvested,
			csvFloat(t.PnLUSD),
			csvFloat(t.ReturnPct),
			t.ExitReason,
			t.OpenedAt.UTC().Format(time.RFC3339),
			closedAt,
		))
	}

	return sb.String()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.10g", *v)
}
