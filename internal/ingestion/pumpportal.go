package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultPumpPortalURL is the PumpPortal data stream.
const DefaultPumpPortalURL = "wss://pumpportal.fun/api/data"

// ErrStreamClosed is returned by FetchListings after Close.
var ErrStreamClosed = errors.New("listing stream closed")

// PumpPortalConfig configures the PumpPortal stream.
type PumpPortalConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// MaxBuffered bounds listings held between polls; the oldest are dropped first.
	MaxBuffered int
	// SOLUSDPrice converts SOL-denominated market caps.
	SOLUSDPrice float64
}

// DefaultPumpPortalConfig returns default stream configuration.
func DefaultPumpPortalConfig() PumpPortalConfig {
	return PumpPortalConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxBuffered:       10_000,
		SOLUSDPrice:       150,
	}
}

// PumpPortalStream subscribes to new-token events and buffers them.
// A reader goroutine appends to the buffer; FetchListings drains it.
type PumpPortalStream struct {
	endpoint string
	config   PumpPortalConfig
	logger   *zap.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	buf   []RawListing
	bufMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewPumpPortalStream connects, subscribes to token creation events and
// starts the reader goroutine.
func NewPumpPortalStream(ctx context.Context, endpoint string, config *PumpPortalConfig, logger *zap.Logger) (*PumpPortalStream, error) {
	cfg := DefaultPumpPortalConfig()
	if config != nil {
		cfg = *config
	}
	if endpoint == "" {
		endpoint = DefaultPumpPortalURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &PumpPortalStream{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	return s, nil
}

// Name returns the provider name.
func (s *PumpPortalStream) Name() string {
	return "pumpportal"
}

var _ ListingSource = (*PumpPortalStream)(nil)

// FetchListings returns and clears every listing received since the last call.
func (s *PumpPortalStream) FetchListings(ctx context.Context) ([]RawListing, error) {
	if s.closed.Load() {
		return nil, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	out := s.buf
	s.buf = nil
	return out, nil
}

// Close closes the connection and waits for the reader to exit.
func (s *PumpPortalStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// connect dials and sends the subscription.
func (s *PumpPortalStream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteJSON(map[string]string{"method": "subscribeNewToken"}); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	s.conn = conn
	return nil
}

// readLoop reads events and appends them to the buffer.
func (s *PumpPortalStream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			// A failed reconnect leaves no connection; schedule another attempt.
			if !s.reconnecting.Swap(true) {
				go s.reconnect(nil, reconnectDelay)
				reconnectDelay = min(reconnectDelay*2, s.config.MaxReconnectDelay)
			}
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				s.logger.Warn("pumpportal read failed, reconnecting",
					zap.Error(err), zap.Duration("delay", reconnectDelay))
				go s.reconnect(conn, reconnectDelay)
			}

			reconnectDelay = min(reconnectDelay*2, s.config.MaxReconnectDelay)

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = s.config.ReconnectDelay
		s.handleMessage(message)
	}
}

// reconnect replaces a failed connection after delay.
func (s *PumpPortalStream) reconnect(failed *websocket.Conn, delay time.Duration) {
	defer s.reconnecting.Store(false)

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn == failed && s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	if s.closed.Load() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		s.logger.Warn("pumpportal reconnect failed", zap.Error(err))
	}
}

type pumpPortalEvent struct {
	Signature             string  `json:"signature"`
	Mint                  string  `json:"mint"`
	TraderPublicKey       string  `json:"traderPublicKey"`
	TxType                string  `json:"txType"`
	Name                  string  `json:"name"`
	Symbol                string  `json:"symbol"`
	VTokensInBondingCurve float64 `json:"vTokensInBondingCurve"`
	VSolInBondingCurve    float64 `json:"vSolInBondingCurve"`
	MarketCapSol          float64 `json:"marketCapSol"`
	Pool                  string  `json:"pool"`
}

func (s *PumpPortalStream) handleMessage(message []byte) {
	var ev pumpPortalEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		s.logger.Debug("pumpportal: skipping undecodable message", zap.Error(err))
		return
	}
	// Subscription acknowledgements and trade events carry no create payload.
	if ev.Mint == "" || ev.TxType != "create" {
		return
	}

	listing := s.toListing(ev)

	s.bufMu.Lock()
	s.buf = append(s.buf, listing)
	if limit := s.config.MaxBuffered; limit > 0 && len(s.buf) > limit {
		dropped := len(s.buf) - limit
		s.buf = append(s.buf[:0], s.buf[dropped:]...)
		s.logger.Warn("pumpportal buffer full, dropped oldest listings", zap.Int("dropped", dropped))
	}
	s.bufMu.Unlock()
}

func (s *PumpPortalStream) toListing(ev pumpPortalEvent) RawListing {
	category := CategoryPumpFun
	if ev.Pool != "" && ev.Pool != "pump" {
		category = ev.Pool
	}

	listing := RawListing{
		TokenAddress: ev.Mint,
		Name:         ev.Name,
		Symbol:       ev.Symbol,
		Category:     category,
		Creator:      ev.TraderPublicKey,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		SOLQuoted:    true,
	}
	if ev.MarketCapSol > 0 {
		listing.MarketCapUSD = formatFloat(ev.MarketCapSol * s.config.SOLUSDPrice)
	}
	if ev.VTokensInBondingCurve > 0 {
		listing.PriceUSD = formatFloat(ev.VSolInBondingCurve / ev.VTokensInBondingCurve * s.config.SOLUSDPrice)
	}
	return listing
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
