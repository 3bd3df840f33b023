package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func pumpPortalServer(t *testing.T, messages ...string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()

		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		var req map[string]string
		if err := json.Unmarshal(msg, &req); err != nil || req["method"] != "subscribeNewToken" {
			t.Errorf("unexpected subscribe request: %s", msg)
			return
		}

		for _, m := range messages {
			if err := c.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}

		// Keep connection open until the client leaves
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func drainUntil(t *testing.T, s *PumpPortalStream, want int) []RawListing {
	t.Helper()
	var got []RawListing
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		batch, err := s.FetchListings(context.Background())
		require.NoError(t, err)
		got = append(got, batch...)
		if len(got) >= want {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d listings, got %d", want, len(got))
	return nil
}

func TestPumpPortalStream_BuffersCreateEvents(t *testing.T) {
	url := pumpPortalServer(t,
		`{"message":"Successfully subscribed to token creation events."}`,
		`{"signature":"sig1","mint":"MintA","traderPublicKey":"Creator1","txType":"create","name":"Alpha","symbol":"ALP","vTokensInBondingCurve":1000000000,"vSolInBondingCurve":30,"marketCapSol":30,"pool":"pump"}`,
		`{"signature":"sig2","mint":"MintA","traderPublicKey":"Trader","txType":"buy"}`,
		`not json`,
		`{"signature":"sig3","mint":"MintB","traderPublicKey":"Creator2","txType":"create","marketCapSol":0}`,
	)

	cfg := DefaultPumpPortalConfig()
	cfg.SOLUSDPrice = 100
	s, err := NewPumpPortalStream(context.Background(), url, &cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	got := drainUntil(t, s, 2)
	require.Len(t, got, 2)

	assert.Equal(t, "MintA", got[0].TokenAddress)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, CategoryPumpFun, got[0].Category)
	assert.Equal(t, "Creator1", got[0].Creator)
	assert.Equal(t, "3000", got[0].MarketCapUSD)
	assert.True(t, got[0].SOLQuoted)
	price, err := strconv.ParseFloat(got[0].PriceUSD, 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.000003, price, 1e-12)

	assert.Equal(t, "MintB", got[1].TokenAddress)
	assert.Equal(t, "", got[1].MarketCapUSD)

	more, err := s.FetchListings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, more)
}

func TestPumpPortalStream_DropsOldestWhenFull(t *testing.T) {
	cfg := DefaultPumpPortalConfig()
	cfg.MaxBuffered = 2
	s := &PumpPortalStream{config: cfg, logger: zapNop()}

	for _, mint := range []string{"A", "B", "C"} {
		s.handleMessage([]byte(`{"mint":"` + mint + `","txType":"create"}`))
	}

	got, err := s.FetchListings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].TokenAddress)
	assert.Equal(t, "C", got[1].TokenAddress)
}

func TestPumpPortalStream_Close(t *testing.T) {
	url := pumpPortalServer(t)
	s, err := NewPumpPortalStream(context.Background(), url, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.FetchListings(context.Background())
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestPumpPortalStream_DialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewPumpPortalStream(ctx, "ws://127.0.0.1:1/api/data", nil, nil)
	assert.Error(t, err)
}
