// Package idhash derives deterministic identifiers for ledger records.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(run_id|token_id|opened_at_ms|buy_seq)
// buy_seq is the 1-based ordinal of the buy within its run, which keeps two
// buys opened in the same millisecond apart.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	runID string,
	tokenID string,
	openedAtMs int64,
	buySeq int,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		runID,
		tokenID,
		openedAtMs,
		buySeq,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Short returns the first 12 characters of an id, for display.
func Short(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
