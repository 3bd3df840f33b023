// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"sol-memebot/internal/ingestion"
)

// Environment variable names.
const (
	EnvPostgresDSN     = "POSTGRES_DSN"
	EnvClickHouseDSN   = "CLICKHOUSE_DSN"
	EnvMoralisAPIKey   = "MORALIS_API_KEY"
	EnvMoralisBaseURL  = "MORALIS_BASE_URL"
	EnvDexScreenerURL  = "DEXSCREENER_BASE_URL"
	EnvPumpPortalWSURL = "PUMPPORTAL_WS_URL"
	EnvSolanaRPCURL    = "SOLANA_RPC_URL"
	EnvMetricsAddr     = "METRICS_ADDR"
)

// DefaultMetricsAddr is the Prometheus listen address when METRICS_ADDR is unset.
const DefaultMetricsAddr = ":9090"

// Config is the process configuration. It is built once at startup and
// passed down explicitly; nothing below the binaries reads the environment.
type Config struct {
	PostgresDSN   string
	ClickHouseDSN string

	MoralisAPIKey   string
	MoralisBaseURL  string
	DexScreenerURL  string
	PumpPortalWSURL string
	SolanaRPCURL    string // optional, enables on-chain metadata lookups

	MetricsAddr string
}

// Load reads the given dotenv files (".env" when none are given) into the
// process environment and builds a Config from it. Variables already set in
// the environment win over file values. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment.
func FromEnv() Config {
	return Config{
		PostgresDSN:     os.Getenv(EnvPostgresDSN),
		ClickHouseDSN:   os.Getenv(EnvClickHouseDSN),
		MoralisAPIKey:   os.Getenv(EnvMoralisAPIKey),
		MoralisBaseURL:  getenv(EnvMoralisBaseURL, ingestion.DefaultMoralisBaseURL),
		DexScreenerURL:  getenv(EnvDexScreenerURL, ingestion.DefaultDexScreenerBaseURL),
		PumpPortalWSURL: getenv(EnvPumpPortalWSURL, ingestion.DefaultPumpPortalURL),
		SolanaRPCURL:    os.Getenv(EnvSolanaRPCURL),
		MetricsAddr:     getenv(EnvMetricsAddr, DefaultMetricsAddr),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
