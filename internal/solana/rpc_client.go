package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// ErrNotMint is returned when an account exists but is not an SPL token mint.
var ErrNotMint = errors.New("account is not a token mint")

// RPCClient implements AccountReader over HTTP JSON-RPC 2.0.
type RPCClient struct {
	endpoint    string
	http        *resty.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

var _ AccountReader = (*RPCClient)(nil)

// ClientOption configures RPCClient.
type ClientOption func(*RPCClient)

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *RPCClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.retryDelay = d
	}
}

// NewRPCClient creates a new Solana RPC client.
func NewRPCClient(endpoint string, opts ...ClientOption) *RPCClient {
	c := &RPCClient{
		endpoint:    endpoint,
		http:        resty.New().SetTimeout(DefaultTimeout).SetHeader("Content-Type", "application/json"),
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
// Transport failures, 429 and non-200 responses are retried; RPC errors are not.
func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		resp, err := c.http.R().SetContext(ctx).SetBody(reqBody).Post(c.endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode() != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

type parsedAccountResult struct {
	Value *struct {
		Owner string          `json:"owner"`
		Data  json.RawMessage `json:"data"`
	} `json:"value"`
}

type parsedMintData struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string `json:"type"`
		Info struct {
			MintAuthority   *string `json:"mintAuthority"`
			FreezeAuthority *string `json:"freezeAuthority"`
			Decimals        int     `json:"decimals"`
			Supply          string  `json:"supply"`
		} `json:"info"`
	} `json:"parsed"`
}

// GetMintAccount retrieves and parses an SPL token mint using jsonParsed encoding.
// Returns nil if the account does not exist and ErrNotMint if it is not a mint.
func (c *RPCClient) GetMintAccount(ctx context.Context, mint string) (*MintAccount, error) {
	params := []interface{}{
		mint,
		map[string]interface{}{
			"encoding": "jsonParsed",
		},
	}

	var result parsedAccountResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, nil
	}

	// Accounts the node cannot parse come back as [base64, encoding].
	var data parsedMintData
	if err := json.Unmarshal(result.Value.Data, &data); err != nil || data.Parsed.Type != "mint" {
		return nil, fmt.Errorf("%w: %s", ErrNotMint, mint)
	}

	info := data.Parsed.Info
	acct := &MintAccount{
		Decimals: info.Decimals,
		Supply:   info.Supply,
		Owner:    result.Value.Owner,
	}
	if info.MintAuthority != nil {
		acct.MintAuthority = *info.MintAuthority
	}
	if info.FreezeAuthority != nil {
		acct.FreezeAuthority = *info.FreezeAuthority
	}
	return acct, nil
}

type rawAccountResult struct {
	Value *struct {
		Data []string `json:"data"` // [base64_data, encoding]
	} `json:"value"`
}

// GetAccountData retrieves raw account data.
// Returns nil if the account does not exist.
func (c *RPCClient) GetAccountData(ctx context.Context, pubkey string) ([]byte, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{
			"encoding": "base64",
		},
	}

	var result rawAccountResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, nil
	}
	if len(result.Value.Data) == 0 {
		return []byte{}, nil
	}

	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return data, nil
}
