package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultMoralisBaseURL is the Moralis Solana gateway.
const DefaultMoralisBaseURL = "https://solana-gateway.moralis.io"

// CategoryPumpFun labels listings from the pump.fun new-token feed.
const CategoryPumpFun = "pumpfun"

// MoralisClient reads pump.fun listings, holders and metadata from Moralis.
// It implements ListingSource, HolderSource and MetadataSource.
type MoralisClient struct {
	baseURL      string
	apiKey       string
	listingLimit int
	topHolders   int
	httpClient   *resty.Client
}

// MoralisOptions configures a MoralisClient.
type MoralisOptions struct {
	BaseURL      string
	APIKey       string
	ListingLimit int // new listings per poll, default 100
	TopHolders   int // top holders fetched per token, default 10
	Timeout      time.Duration
	HTTPClient   *http.Client // optional, used by tests
}

// NewMoralisClient creates a Moralis client.
func NewMoralisClient(opts MoralisOptions) *MoralisClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultMoralisBaseURL
	}
	if opts.ListingLimit <= 0 {
		opts.ListingLimit = 100
	}
	if opts.TopHolders <= 0 {
		opts.TopHolders = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &MoralisClient{
		baseURL:      opts.BaseURL,
		apiKey:       opts.APIKey,
		listingLimit: opts.ListingLimit,
		topHolders:   opts.TopHolders,
		httpClient:   newRestyClient(opts.HTTPClient, opts.Timeout),
	}
}

// Name returns the provider name.
func (c *MoralisClient) Name() string {
	return "moralis"
}

var (
	_ ListingSource  = (*MoralisClient)(nil)
	_ HolderSource   = (*MoralisClient)(nil)
	_ MetadataSource = (*MoralisClient)(nil)
)

// FetchListings returns the newest pump.fun tokens.
func (c *MoralisClient) FetchListings(ctx context.Context) ([]RawListing, error) {
	var result struct {
		Result []struct {
			TokenAddress          string     `json:"tokenAddress"`
			Name                  string     `json:"name"`
			Symbol                string     `json:"symbol"`
			PriceUSD              flexNumber `json:"priceUsd"`
			Liquidity             flexNumber `json:"liquidity"`
			FullyDilutedValuation flexNumber `json:"fullyDilutedValuation"`
			CreatedAt             string     `json:"createdAt"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/token/mainnet/exchange/pumpfun/new?limit=%d", c.baseURL, c.listingLimit)
	if err := c.get(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("fetch pumpfun listings: %w", err)
	}

	listings := make([]RawListing, 0, len(result.Result))
	for _, r := range result.Result {
		if r.TokenAddress == "" {
			continue
		}
		listings = append(listings, RawListing{
			TokenAddress: r.TokenAddress,
			Name:         r.Name,
			Symbol:       r.Symbol,
			Category:     CategoryPumpFun,
			PriceUSD:     string(r.PriceUSD),
			LiquidityUSD: string(r.Liquidity),
			MarketCapUSD: string(r.FullyDilutedValuation),
			CreatedAt:    r.CreatedAt,
		})
	}
	return listings, nil
}

// HolderStats returns the total holder count.
func (c *MoralisClient) HolderStats(ctx context.Context, mint string) (*HolderStats, error) {
	var result struct {
		TotalHolders int64 `json:"totalHolders"`
	}
	url := fmt.Sprintf("%s/token/mainnet/holders/%s", c.baseURL, mint)
	if err := c.get(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("fetch holder stats: %w", err)
	}
	return &HolderStats{Total: result.TotalHolders}, nil
}

// TopHolders returns the largest holders ordered by balance.
func (c *MoralisClient) TopHolders(ctx context.Context, mint string) ([]TopHolder, error) {
	var result struct {
		Result []struct {
			OwnerAddress                    string     `json:"ownerAddress"`
			PercentageRelativeToTotalSupply flexNumber `json:"percentageRelativeToTotalSupply"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/token/mainnet/%s/top-holders?limit=%d", c.baseURL, mint, c.topHolders)
	if err := c.get(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("fetch top holders: %w", err)
	}

	holders := make([]TopHolder, 0, len(result.Result))
	for _, h := range result.Result {
		holders = append(holders, TopHolder{
			OwnerAddress:    h.OwnerAddress,
			PercentOfSupply: h.PercentageRelativeToTotalSupply.Float(),
		})
	}
	return holders, nil
}

// Metadata returns the mint authorities and metaplex mutability.
func (c *MoralisClient) Metadata(ctx context.Context, mint string) (*TokenMetadata, error) {
	var result struct {
		MintAuthority   *string `json:"mintAuthority"`
		FreezeAuthority *string `json:"freezeAuthority"`
		Metaplex        *struct {
			IsMutable bool `json:"isMutable"`
		} `json:"metaplex"`
	}
	url := fmt.Sprintf("%s/token/mainnet/%s/metadata", c.baseURL, mint)
	if err := c.get(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("fetch token metadata: %w", err)
	}

	md := &TokenMetadata{}
	if result.MintAuthority != nil {
		md.MintAuthority = *result.MintAuthority
	}
	if result.FreezeAuthority != nil {
		md.FreezeAuthority = *result.FreezeAuthority
	}
	if result.Metaplex != nil {
		md.IsMutable = result.Metaplex.IsMutable
	}
	return md, nil
}

func (c *MoralisClient) get(ctx context.Context, url string, out any) error {
	req := c.httpClient.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if c.apiKey != "" {
		req.SetHeader("X-API-Key", c.apiKey)
	}
	resp, err := req.Get(url)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newRestyClient(hc *http.Client, timeout time.Duration) *resty.Client {
	var client *resty.Client
	if hc != nil {
		client = resty.NewWithClient(hc)
	} else {
		client = resty.New()
	}
	return client.
		SetTimeout(timeout).
		SetHeader("User-Agent", "sol-memebot/0.1")
}

// flexNumber accepts a JSON number or a numeric string and keeps its text.
// null and malformed values decode to "".
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
		return nil
	}
	*n = flexNumber(b)
	return nil
}

// Float parses the value, returning 0 when it is empty or malformed.
func (n flexNumber) Float() float64 {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0
	}
	return v
}
