package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 15 * time.Second

// CallObserver is notified after every HTTP attempt.
// httpStatus is 0 when no response was received.
type CallObserver func(ctx context.Context, method string, httpStatus int, latency time.Duration, err error)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	observer  CallObserver
	requestID atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithObserver sets a callback invoked after each HTTP attempt.
func WithObserver(fn CallObserver) ClientOption {
	return func(c *HTTPClient) {
		c.observer = fn
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
// Each call makes exactly one HTTP attempt.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the RPC URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
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
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// HTTPStatusError is returned for non-200 responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return "rate limited (429)"
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// call performs a single JSON-RPC round trip.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	_, err = c.attempt(ctx, method, body, result)
	return err
}

// attempt performs one HTTP round trip and reports it to the observer.
func (c *HTTPClient) attempt(ctx context.Context, method string, body []byte, result interface{}) (status int, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer(ctx, method, status, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	status = resp.StatusCode
	if err != nil {
		return status, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return status, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return status, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return status, rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return status, fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return status, nil
}

// GetProgramAccounts returns jsonParsed token accounts owned by programID.
func (c *HTTPClient) GetProgramAccounts(ctx context.Context, programID string, filters []AccountFilter) ([]TokenAccount, error) {
	config := map[string]interface{}{
		"encoding": "jsonParsed",
	}
	if len(filters) > 0 {
		raw := make([]map[string]interface{}, len(filters))
		for i, f := range filters {
			raw[i] = f.toParam()
		}
		config["filters"] = raw
	}

	var result []programAccountResult
	if err := c.call(ctx, "getProgramAccounts", []interface{}{programID, config}, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result))
	for _, r := range result {
		info := r.Account.Data.Parsed.Info
		if info.Mint == "" {
			// Not a parsed token account
			continue
		}
		program := r.Account.Owner
		if program == "" {
			program = programID
		}
		accounts = append(accounts, TokenAccount{
			Address:        r.Pubkey,
			Owner:          info.Owner,
			Mint:           info.Mint,
			ProgramID:      program,
			Amount:         info.TokenAmount.Amount,
			Decimals:       info.TokenAmount.Decimals,
			UIAmountString: info.TokenAmount.UIAmountString,
		})
	}

	return accounts, nil
}

// programAccountResult is the raw RPC response item for getProgramAccounts with jsonParsed encoding.
type programAccountResult struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Owner string `json:"owner"`
		Data  struct {
			Parsed struct {
				Type string `json:"type"`
				Info struct {
					Mint        string `json:"mint"`
					Owner       string `json:"owner"`
					TokenAmount struct {
						Amount         string `json:"amount"`
						Decimals       int    `json:"decimals"`
						UIAmountString string `json:"uiAmountString"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

// GetMultipleAccounts retrieves account info for up to 100 addresses.
// The returned slice is index-aligned with addresses; missing accounts are nil.
func (c *HTTPClient) GetMultipleAccounts(ctx context.Context, addresses []string) ([]*AccountInfo, error) {
	params := []interface{}{
		addresses,
		map[string]interface{}{
			"encoding":  "base64",
			"dataSlice": map[string]interface{}{"offset": 0, "length": 0},
		},
	}

	var result getMultipleAccountsResult
	if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}

	infos := make([]*AccountInfo, len(addresses))
	for i, v := range result.Value {
		if i >= len(infos) || v == nil {
			continue
		}
		infos[i] = &AccountInfo{
			Lamports:   v.Lamports,
			Owner:      v.Owner,
			Executable: v.Executable,
			RentEpoch:  v.RentEpoch,
		}
	}

	return infos, nil
}

type getMultipleAccountsResult struct {
	Value []*getAccountInfoValue `json:"value"`
}

type getAccountInfoValue struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// GetSignaturesForAddress retrieves signatures for an address with pagination.
func (c *HTTPClient) GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error) {
	config := make(map[string]interface{})
	if opts != nil {
		if opts.Before != "" {
			config["before"] = opts.Before
		}
		if opts.Until != "" {
			config["until"] = opts.Until
		}
		if opts.Limit > 0 {
			config["limit"] = opts.Limit
		}
	}

	params := []interface{}{address}
	if len(config) > 0 {
		params = append(params, config)
	}

	var result []getSignaturesResult
	if err := c.call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}

	sigs := make([]SignatureInfo, len(result))
	for i, r := range result {
		sigs[i] = SignatureInfo{
			Signature: r.Signature,
			Slot:      r.Slot,
			BlockTime: r.BlockTime,
			Err:       r.Err,
		}
	}

	return sigs, nil
}

// getSignaturesResult is the raw RPC response item for getSignaturesForAddress.
type getSignaturesResult struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

var _ RPCClient = (*HTTPClient)(nil)
