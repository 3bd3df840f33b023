package domain

import "time"

// Rugger is a creator wallet flagged for abandoning earlier tokens.
type Rugger struct {
	Wallet  string
	Note    string
	AddedAt time.Time
}
