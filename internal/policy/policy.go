// Package policy defines the bounded retry policies shared across the
// download pipeline. Two named policies exist: Network retries are bounded
// by elapsed wall-clock time with exponential backoff, Filesystem retries
// are bounded by attempt count with no delay. Network calls are rate-limited
// by time, filesystem races by attempts.
package policy

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Policy is a bounded retry configuration passed into each retried
// operation. Zero Attempts means the policy is bounded by MaxElapsed alone;
// zero MaxElapsed means it is bounded by Attempts alone.
type Policy struct {
	Attempts   uint
	MaxElapsed time.Duration
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Network is the bounded-time policy for metadata and page fetches.
var Network = Policy{
	MaxElapsed: 2 * time.Minute,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   15 * time.Second,
}

// Filesystem is the bounded-count policy for local writes and deletes.
var Filesystem = Policy{
	Attempts: 5,
}

// Do runs op under p, honoring ctx cancellation. The error returned after
// exhaustion is the last error op produced.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	if p.MaxElapsed > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.MaxElapsed)
		defer cancel()
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.LastErrorOnly(true),
		// On deadline expiry, keep the last operation error instead of a
		// bare context.DeadlineExceeded.
		retry.WrapContextErrorWithLastError(true),
	}
	if p.BaseDelay > 0 {
		opts = append(opts,
			retry.Delay(p.BaseDelay),
			retry.DelayType(retry.BackOffDelay),
		)
	} else {
		opts = append(opts,
			retry.Delay(0),
			retry.DelayType(retry.FixedDelay),
		)
	}
	if p.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(p.MaxDelay))
	}

	return retry.Do(func() error { return op(ctx) }, opts...)
}
