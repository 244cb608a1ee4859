// Package rpc is a thin Solana JSON-RPC client covering the two queries the
// monitor needs: parsed transaction detail and parsed account state. All
// "field might be missing" handling lives in this package's types; callers
// operate on a strict decoded shape.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client is an HTTP client with retry and rate-limit support for Solana RPC
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// RequestsPerSecond throttles outbound calls so bursts of log events do
	// not trip public-endpoint rate limits. Zero disables throttling.
	RequestsPerSecond float64
	Logger            *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		limiter:      limiter,
		logger:       cfg.Logger,
	}
}

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// Call makes a single JSON-RPC call with retry logic, decoding the full
// response envelope into result
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	data, err := json.Marshal(request{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.send(ctx, method, data)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// send posts the request body with retry and exponential backoff
func (c *Client) send(ctx context.Context, method string, data []byte) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			lastErr = err
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// GetParsedTransactions fetches parsed transaction detail for a list of
// signatures as one batched request (confirmed commitment, jsonParsed
// encoding, version-tolerant). The result has one slot per signature, in
// order; a signature the node cannot resolve yields a nil slot rather than
// an error, because an unresolvable transaction is a normal outcome for the
// classification pipeline.
func (c *Client) GetParsedTransactions(ctx context.Context, signatures []string) ([]*TransactionResult, error) {
	if len(signatures) == 0 {
		return nil, nil
	}

	batch := make([]request, 0, len(signatures))
	for i, sig := range signatures {
		batch = append(batch, request{
			JSONRPC: "2.0",
			ID:      uint64(i + 1),
			Method:  "getTransaction",
			Params: []interface{}{
				sig,
				map[string]interface{}{
					"encoding":                       "jsonParsed",
					"commitment":                     "confirmed",
					"maxSupportedTransactionVersion": 0,
				},
			},
		})
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}

	resp, err := c.send(ctx, "getTransaction", data)
	if err != nil {
		return nil, err
	}

	var envelopes []batchEnvelope
	if err := json.Unmarshal(resp, &envelopes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch response: %w", err)
	}

	// Responses may arrive in any order; ids are 1-based positions.
	sort.Slice(envelopes, func(i, j int) bool { return envelopes[i].ID < envelopes[j].ID })

	results := make([]*TransactionResult, len(signatures))
	for _, env := range envelopes {
		if env.ID == 0 || env.ID > uint64(len(signatures)) {
			continue
		}
		if env.Error != nil {
			c.logger.WithField("code", env.Error.Code).Debug("getTransaction element error")
			continue
		}
		if len(env.Result) == 0 || string(env.Result) == "null" {
			continue
		}

		var tr TransactionResult
		if err := json.Unmarshal(env.Result, &tr); err != nil {
			c.logger.WithError(err).Debug("undecodable transaction result")
			continue
		}
		results[env.ID-1] = &tr
	}

	return results, nil
}

// GetParsedAccountInfo fetches an account's jsonParsed state. A missing
// account returns (nil, nil).
func (c *Client) GetParsedAccountInfo(ctx context.Context, address string) (*AccountValue, error) {
	params := []interface{}{
		address,
		map[string]interface{}{
			"encoding":   "jsonParsed",
			"commitment": "confirmed",
		},
	}

	var env accountInfoEnvelope
	if err := c.Call(ctx, "getAccountInfo", params, &env); err != nil {
		return nil, err
	}
	if env.Error != nil {
		return nil, env.Error
	}
	if env.Result == nil {
		return nil, nil
	}
	return env.Result.Value, nil
}
