// Package faucet talks to the testnet faucet endpoint. The client issues a
// single POST per call and classifies the outcome; retry policy belongs to
// the caller (see policy.go).
package faucet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/chainops-dev/testnet-funder/pkg/logger"
)

// ErrRateLimited marks an HTTP 429 from the faucet. The single-wallet flow
// retries on it; everything else treats it as a terminal failure.
var ErrRateLimited = errors.New("faucet rate limited (HTTP 429)")

// sleep is swapped out by tests so claim flows run without real delays.
var sleep = time.Sleep

// Client is an HTTP faucet client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	minPreDelay int
	maxPreDelay int
}

// Fauceter is the claim surface the shell programs against.
type Fauceter interface {
	Claim(ctx context.Context, address string) (*ClaimResult, error)
}

// ClaimRequest is the POST body sent to the faucet.
type ClaimRequest struct {
	Address string `json:"address"`
}

// ClaimResponse is the faucet's JSON reply.
type ClaimResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Hash   string `json:"hash"`
		Amount string `json:"amount"`
	} `json:"data"`
}

// ClaimResult is the outcome of one claim attempt.
type ClaimResult struct {
	Address  string
	Hash     string
	Amount   string
	Success  bool
	Duration time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPreDelay sets the randomized pre-request delay bounds in whole
// seconds. Zero bounds disable the delay.
func WithPreDelay(minSeconds, maxSeconds int) ClientOption {
	return func(c *Client) {
		c.minPreDelay = minSeconds
		c.maxPreDelay = maxSeconds
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a faucet client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		minPreDelay: 5,
		maxPreDelay: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claim requests a drip for address. It waits a randomized whole-second
// politeness delay, sends one POST, and never retries internally.
func (c *Client) Claim(ctx context.Context, address string) (*ClaimResult, error) {
	startTime := time.Now()
	result := &ClaimResult{Address: address}

	if delay := c.preDelay(); delay > 0 {
		logger.Debugf("waiting %v before faucet request for %s", delay, address)
		sleep(delay)
	}

	reqBody := ClaimRequest{Address: address}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/faucet", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read response: %w", err)
	}

	result.Duration = time.Since(startTime)

	if resp.StatusCode == http.StatusTooManyRequests {
		return result, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("received non-200 status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var claimResp ClaimResponse
	if err := json.Unmarshal(body, &claimResp); err != nil {
		return result, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !claimResp.Success {
		return result, fmt.Errorf("faucet reported failure for address %s", address)
	}

	result.Success = true
	result.Hash = claimResp.Data.Hash
	result.Amount = claimResp.Data.Amount

	logger.Infof("faucet claim succeeded for %s, tx: %s, amount: %s, duration: %v",
		address, result.Hash, result.Amount, result.Duration)

	return result, nil
}

func (c *Client) preDelay() time.Duration {
	if c.maxPreDelay <= 0 || c.maxPreDelay < c.minPreDelay {
		return 0
	}
	seconds := c.minPreDelay
	if span := c.maxPreDelay - c.minPreDelay; span > 0 {
		seconds += rand.Intn(span + 1)
	}
	return time.Duration(seconds) * time.Second
}
