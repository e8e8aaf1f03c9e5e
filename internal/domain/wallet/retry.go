package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds automatic retries of ErrConcurrencyConflict.
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries a lost race twice with a short exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, InitialInterval: 25 * time.Millisecond}
}

// Do runs op until it succeeds, fails with an error other than
// ErrConcurrencyConflict, or the attempts are used up.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	if p.Attempts <= 1 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = 20 * p.InitialInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.Attempts-1)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
