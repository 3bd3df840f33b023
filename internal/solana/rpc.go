package solana

import "context"

// AccountReader is the subset of Solana JSON-RPC used to inspect token mints.
type AccountReader interface {
	// GetMintAccount returns the parsed SPL mint. Returns nil if the account does not exist.
	GetMintAccount(ctx context.Context, mint string) (*MintAccount, error)

	// GetAccountData returns the raw account data. Returns nil if the account does not exist.
	GetAccountData(ctx context.Context, pubkey string) ([]byte, error)
}

// MintAccount is the parsed state of an SPL token mint.
// Empty authorities mean the authority has been revoked.
type MintAccount struct {
	MintAuthority   string
	FreezeAuthority string
	Decimals        int
	Supply          string // raw base units, kept as text
	Owner           string // token program
}
