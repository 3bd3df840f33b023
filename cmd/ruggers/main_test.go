package main

import (
	"errors"
	"testing"

	"sol-memebot/internal/solana"
)

const testWallet = "So11111111111111111111111111111111111111112"

func TestParseArgs_FlagPositions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"note after wallet", []string{testWallet, "--note", "rugged twice"}},
		{"note before wallet", []string{"--note", "rugged twice", testWallet}},
		{"note with equals after wallet", []string{testWallet, "--note=rugged twice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs("add", tt.args, "postgres://default")
			if err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}
			wallet, err := opts.wallet()
			if err != nil {
				t.Fatalf("wallet failed: %v", err)
			}
			if wallet != testWallet {
				t.Errorf("wallet = %q, want %q", wallet, testWallet)
			}
			if opts.note != "rugged twice" {
				t.Errorf("note = %q, want %q", opts.note, "rugged twice")
			}
			if opts.postgresDSN != "postgres://default" {
				t.Errorf("postgresDSN = %q, want default", opts.postgresDSN)
			}
		})
	}
}

func TestParseArgs_DSNOverride(t *testing.T) {
	opts, err := parseArgs("remove", []string{testWallet, "--postgres-dsn", "postgres://other"}, "postgres://default")
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if opts.postgresDSN != "postgres://other" {
		t.Errorf("postgresDSN = %q, want override", opts.postgresDSN)
	}
}

func TestOptionsWallet_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		invalid bool
	}{
		{"missing", nil, false},
		{"two wallets", []string{testWallet, "--note", "x", testWallet}, false},
		{"not base58", []string{"not-a-wallet"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs("add", tt.args, "")
			if err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}
			_, err = opts.wallet()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.invalid != errors.Is(err, solana.ErrInvalidAddress) {
				t.Errorf("errors.Is(ErrInvalidAddress) = %v, want %v (err: %v)", !tt.invalid, tt.invalid, err)
			}
		})
	}
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	if _, err := parseArgs("add", []string{testWallet, "--bogus"}, ""); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
