package idhash

import (
	"testing"
)

func TestComputeTradeID(t *testing.T) {
	tests := []struct {
		name       string
		runID      string
		tokenID    string
		openedAtMs int64
		buySeq     int
		wantLen    int // hash length should be 64
	}{
		{
			name:       "first buy",
			runID:      "3f1c9a52-8f0e-4d2b-9b7a-1c2d3e4f5a6b",
			tokenID:    "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr",
			openedAtMs: 1704067234567,
			buySeq:     1,
			wantLen:    64,
		},
		{
			name:       "later buy",
			runID:      "3f1c9a52-8f0e-4d2b-9b7a-1c2d3e4f5a6b",
			tokenID:    "So11111111111111111111111111111111111111112",
			openedAtMs: 1704067300000,
			buySeq:     7,
			wantLen:    64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTradeID(tt.runID, tt.tokenID, tt.openedAtMs, tt.buySeq)

			if len(got) != tt.wantLen {
				t.Errorf("ComputeTradeID() length = %d, want %d", len(got), tt.wantLen)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeTradeID(tt.runID, tt.tokenID, tt.openedAtMs, tt.buySeq)
			if got != got2 {
				t.Errorf("ComputeTradeID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeID_DifferentInputs(t *testing.T) {
	base := ComputeTradeID("run", "token", 1000, 1)

	cases := map[string]string{
		"run":       ComputeTradeID("other_run", "token", 1000, 1),
		"token":     ComputeTradeID("run", "other_token", 1000, 1),
		"opened_at": ComputeTradeID("run", "token", 2000, 1),
		"buy_seq":   ComputeTradeID("run", "token", 1000, 2),
	}
	for field, id := range cases {
		if id == base {
			t.Errorf("different %s should produce different hash", field)
		}
	}
}

func TestShort(t *testing.T) {
	id := ComputeTradeID("run", "token", 1000, 1)
	if got := Short(id); len(got) != 12 || got != id[:12] {
		t.Errorf("Short() = %q", got)
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short(abc) = %q", got)
	}
}
