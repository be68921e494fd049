package faucet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainops-dev/testnet-funder/pkg/logger"
)

// Policy runs one claim through a flow-specific retry strategy. The two
// flows intentionally differ: the single-wallet flow waits out rate limits,
// the bulk sweep does not.
type Policy interface {
	Run(ctx context.Context, client Fauceter, address string) (*ClaimResult, error)
}

// RetryOnRateLimit is the single-wallet policy: on a rate-limit result it
// waits a fixed interval and tries again, up to Attempts total attempts.
// Any other failure is terminal.
type RetryOnRateLimit struct {
	Attempts int
	Wait     time.Duration
}

// DefaultRetryOnRateLimit returns the stock single-wallet policy.
func DefaultRetryOnRateLimit() *RetryOnRateLimit {
	return &RetryOnRateLimit{
		Attempts: 3,
		Wait:     60 * time.Second,
	}
}

func (p *RetryOnRateLimit) Run(ctx context.Context, client Fauceter, address string) (*ClaimResult, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 3
	}

	var lastResult *ClaimResult
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logger.Warnf("faucet rate limited for %s, waiting %v before attempt %d/%d",
				address, p.Wait, attempt, attempts)
			select {
			case <-ctx.Done():
				return lastResult, ctx.Err()
			default:
			}
			sleep(p.Wait)
		}

		result, err := client.Claim(ctx, address)
		if err == nil {
			return result, nil
		}

		lastResult = result
		lastErr = err

		if !errors.Is(err, ErrRateLimited) {
			return result, err
		}
	}

	return lastResult, fmt.Errorf("rate limited after %d attempts: %w", attempts, lastErr)
}

// NoRetryFixedPacing is the bulk-sweep policy: a single attempt per wallet
// and a fixed pacing sleep after every outcome, success or not.
type NoRetryFixedPacing struct {
	Delay time.Duration
}

// DefaultNoRetryFixedPacing returns the stock bulk policy.
func DefaultNoRetryFixedPacing() *NoRetryFixedPacing {
	return &NoRetryFixedPacing{
		Delay: 5 * time.Second,
	}
}

func (p *NoRetryFixedPacing) Run(ctx context.Context, client Fauceter, address string) (*ClaimResult, error) {
	result, err := client.Claim(ctx, address)
	if p.Delay > 0 {
		sleep(p.Delay)
	}
	return result, err
}
