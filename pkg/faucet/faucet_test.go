package faucet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// noDelay disables the randomized politeness delay for tests.
func noDelay() ClientOption {
	return WithPreDelay(0, 0)
}

func TestClaimSuccess(t *testing.T) {
	var gotBody ClaimRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/faucet", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"hash": "0xdeadbeef", "amount": "100000000000000000"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, noDelay())
	result, err := client.Claim(context.Background(), "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "0xdeadbeef", result.Hash)
	assert.Equal(t, "100000000000000000", result.Amount)
	assert.Equal(t, "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", gotBody.Address)
}

func TestClaimRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, noDelay())
	result, err := client.Claim(context.Background(), "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, result.Success)
}

func TestClaimApplicationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, noDelay())
	_, err := client.Claim(context.Background(), "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestClaimTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, noDelay())
	_, err := client.Claim(context.Background(), "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

// fakeFauceter scripts claim outcomes for policy tests.
type fakeFauceter struct {
	calls   int
	outcome func(call int) (*ClaimResult, error)
}

func (f *fakeFauceter) Claim(ctx context.Context, address string) (*ClaimResult, error) {
	f.calls++
	return f.outcome(f.calls)
}

// captureSleeps replaces the package sleep hook for the duration of a test.
func captureSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	prev := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = prev })
	return &slept
}

func TestRetryOnRateLimitExhaustion(t *testing.T) {
	slept := captureSleeps(t)
	fake := &fakeFauceter{outcome: func(int) (*ClaimResult, error) {
		return &ClaimResult{}, ErrRateLimited
	}}

	policy := &RetryOnRateLimit{Attempts: 3, Wait: 60 * time.Second}
	_, err := policy.Run(context.Background(), fake, "0xabc")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "3 attempts")
	assert.Equal(t, 3, fake.calls, "exactly 3 attempts must be made")
	assert.Equal(t, []time.Duration{60 * time.Second, 60 * time.Second}, *slept,
		"attempts are separated by the fixed backoff")
}

func TestRetryOnRateLimitEventualSuccess(t *testing.T) {
	captureSleeps(t)
	fake := &fakeFauceter{outcome: func(call int) (*ClaimResult, error) {
		if call < 2 {
			return &ClaimResult{}, ErrRateLimited
		}
		return &ClaimResult{Success: true, Hash: "0x1"}, nil
	}}

	policy := &RetryOnRateLimit{Attempts: 3, Wait: time.Second}
	result, err := policy.Run(context.Background(), fake, "0xabc")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, fake.calls)
}

func TestRetryOnRateLimitDoesNotRetryOtherErrors(t *testing.T) {
	slept := captureSleeps(t)
	fake := &fakeFauceter{outcome: func(int) (*ClaimResult, error) {
		return &ClaimResult{}, errors.New("boom")
	}}

	policy := &RetryOnRateLimit{Attempts: 3, Wait: time.Second}
	_, err := policy.Run(context.Background(), fake, "0xabc")

	assert.Error(t, err)
	assert.Equal(t, 1, fake.calls, "non-rate-limit failures are terminal")
	assert.Empty(t, *slept)
}

func TestNoRetryFixedPacing(t *testing.T) {
	slept := captureSleeps(t)
	fake := &fakeFauceter{outcome: func(int) (*ClaimResult, error) {
		return &ClaimResult{}, ErrRateLimited
	}}

	policy := &NoRetryFixedPacing{Delay: 5 * time.Second}
	_, err := policy.Run(context.Background(), fake, "0xabc")

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, fake.calls, "bulk flow never retries")
	assert.Equal(t, []time.Duration{5 * time.Second}, *slept,
		"pacing delay applies regardless of outcome")
}

func TestDefaultPolicies(t *testing.T) {
	single := DefaultRetryOnRateLimit()
	assert.Equal(t, 3, single.Attempts)
	assert.Equal(t, 60*time.Second, single.Wait)

	bulk := DefaultNoRetryFixedPacing()
	assert.Equal(t, 5*time.Second, bulk.Delay)
}

func TestPreDelayBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantMin  time.Duration
		wantMax  time.Duration
	}{
		{"default range", 5, 10, 5 * time.Second, 10 * time.Second},
		{"fixed", 7, 7, 7 * time.Second, 7 * time.Second},
		{"disabled", 0, 0, 0, 0},
		{"inverted disables", 10, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("http://localhost", time.Second, WithPreDelay(tt.min, tt.max))
			for i := 0; i < 50; i++ {
				d := c.preDelay()
				assert.GreaterOrEqual(t, d, tt.wantMin)
				assert.LessOrEqual(t, d, tt.wantMax)
				assert.Zero(t, d%time.Second, "delays are whole seconds")
			}
		})
	}
}
