package app

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// conflictRetries bounds how many times a lost update is retried before
// domain.ErrConflict surfaces to the caller.
const conflictRetries = 3

// retryPolicy returns the bounded exponential backoff used for
// lost-update retries on members and sequence counters.
func retryPolicy(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), conflictRetries), ctx)
}
