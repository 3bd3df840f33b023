package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDexScreener(t *testing.T, body string, status int) *DexScreenerClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/MintA", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewDexScreenerClient(server.URL+"/", server.Client())
}

func TestDexScreenerClient_PicksDeepestSolanaPair(t *testing.T) {
	c := setupDexScreener(t, `{"pairs":[
		{"chainId":"solana","dexId":"pumpfun","priceUsd":"0.001","liquidity":{"usd":1200},"fdv":90000},
		{"chainId":"solana","dexId":"raydium","priceUsd":"0.0012","liquidity":{"usd":8000},"fdv":110000,"marketCap":100000},
		{"chainId":"ethereum","dexId":"uniswap","priceUsd":"9","liquidity":{"usd":999999}}
	]}`, http.StatusOK)

	pair, err := c.Pair(context.Background(), "MintA")
	require.NoError(t, err)

	assert.Equal(t, "raydium", pair.DexID)
	assert.True(t, pair.OnRaydium)
	require.NotNil(t, pair.LiquidityUSD)
	assert.Equal(t, 8000.0, *pair.LiquidityUSD)
	require.NotNil(t, pair.PriceUSD)
	assert.Equal(t, 0.0012, *pair.PriceUSD)
	require.NotNil(t, pair.MarketCapUSD)
	assert.Equal(t, 100000.0, *pair.MarketCapUSD)
}

func TestDexScreenerClient_RaydiumAnywhereSetsFlag(t *testing.T) {
	c := setupDexScreener(t, `{"pairs":[
		{"chainId":"solana","dexId":"pumpfun","liquidity":{"usd":9000},"fdv":50000},
		{"chainId":"solana","dexId":"raydium","liquidity":{"usd":10}}
	]}`, http.StatusOK)

	pair, err := c.Pair(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, "pumpfun", pair.DexID)
	assert.True(t, pair.OnRaydium)
	assert.Equal(t, 50000.0, *pair.MarketCapUSD)
	assert.Nil(t, pair.PriceUSD)
}

func TestDexScreenerClient_NoPairs(t *testing.T) {
	c := setupDexScreener(t, `{"schemaVersion":"1.0.0","pairs":null}`, http.StatusOK)

	pair, err := c.Pair(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, &PairInfo{}, pair)
}

func TestDexScreenerClient_Status(t *testing.T) {
	c := setupDexScreener(t, `{}`, http.StatusInternalServerError)

	_, err := c.Pair(context.Background(), "MintA")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}
