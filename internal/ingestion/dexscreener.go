package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultDexScreenerBaseURL is the public DexScreener API.
const DefaultDexScreenerBaseURL = "https://api.dexscreener.com"

// DexIDRaydium is the DexScreener dex id of Raydium pools.
const DexIDRaydium = "raydium"

const chainSolana = "solana"

// DexScreenerClient reads pair liquidity and price. It implements PairSource.
type DexScreenerClient struct {
	baseURL    string
	httpClient *resty.Client
}

// NewDexScreenerClient creates a DexScreener client. hc may be nil.
func NewDexScreenerClient(baseURL string, hc *http.Client) *DexScreenerClient {
	if baseURL == "" {
		baseURL = DefaultDexScreenerBaseURL
	}
	return &DexScreenerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newRestyClient(hc, 10*time.Second),
	}
}

// Name returns the provider name.
func (c *DexScreenerClient) Name() string {
	return "dexscreener"
}

var _ PairSource = (*DexScreenerClient)(nil)

type dexPair struct {
	ChainID   string     `json:"chainId"`
	DexID     string     `json:"dexId"`
	PriceUSD  flexNumber `json:"priceUsd"`
	FDV       flexNumber `json:"fdv"`
	MarketCap flexNumber `json:"marketCap"`
	Liquidity *struct {
		USD flexNumber `json:"usd"`
	} `json:"liquidity"`
}

// Pair returns the deepest Solana pair for the token. A token with no pairs
// yields an empty PairInfo, not an error.
func (c *DexScreenerClient) Pair(ctx context.Context, mint string) (*PairInfo, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)

	resp, err := c.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch dexscreener pairs: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch dexscreener pairs: %w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	var result struct {
		Pairs []dexPair `json:"pairs"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode dexscreener pairs: %w", err)
	}

	return summarizePairs(result.Pairs), nil
}

func summarizePairs(pairs []dexPair) *PairInfo {
	info := &PairInfo{}
	var best *dexPair
	bestLiq := -1.0

	for i := range pairs {
		p := &pairs[i]
		if p.ChainID != "" && p.ChainID != chainSolana {
			continue
		}
		if strings.EqualFold(p.DexID, DexIDRaydium) {
			info.OnRaydium = true
		}
		liq := 0.0
		if p.Liquidity != nil {
			liq = p.Liquidity.USD.Float()
		}
		if liq > bestLiq {
			best, bestLiq = p, liq
		}
	}
	if best == nil {
		return info
	}

	info.DexID = best.DexID
	if best.Liquidity != nil && best.Liquidity.USD != "" {
		info.LiquidityUSD = floatPtr(best.Liquidity.USD.Float())
	}
	if best.PriceUSD != "" {
		info.PriceUSD = floatPtr(best.PriceUSD.Float())
	}
	switch {
	case best.MarketCap != "":
		info.MarketCapUSD = floatPtr(best.MarketCap.Float())
	case best.FDV != "":
		info.MarketCapUSD = floatPtr(best.FDV.Float())
	}
	return info
}

func floatPtr(v float64) *float64 {
	return &v
}
