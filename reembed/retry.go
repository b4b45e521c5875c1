// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// RetryPolicy bounds how embedding requests and index writes are retried.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Must be positive.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt. It doubles after
	// each further failure.
	BaseDelay time.Duration
	// MaxDelay caps the wait between attempts. Zero means no cap.
	MaxDelay time.Duration
	// Logger receives one Debug record per failed attempt. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// EmbeddingRetryPolicy is the default for calls to an embedding provider.
func EmbeddingRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

// ConflictRetryPolicy is the default for vector index writes that race
// other writers.
func ConflictRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 8, BaseDelay: 2 * time.Millisecond, MaxDelay: 100 * time.Millisecond}
}

// Permanent reports whether err cannot be cured by retrying: the caller
// gave up, the entity or vector is invalid, or the store is closed.
func Permanent(err error) bool {
	for _, target := range []error{
		context.Canceled,
		context.DeadlineExceeded,
		core.ErrInvalidEntity,
		storage.ErrStorageClosed,
		storage.ErrDimensionMismatch,
		storage.ErrInvalidQuery,
		ErrEmptyVector,
		ErrZeroVector,
		ErrNonFiniteVector,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Do runs op until it succeeds, fails with a Permanent error, or the
// attempts run out. The last error is returned wrapped with the attempt
// count.
func (p RetryPolicy) Do(ctx context.Context, what string, op func() error) error {
	return p.run(ctx, what, op, func(err error) bool { return !Permanent(err) })
}

// DoOnConflict is Do restricted to storage.ErrConflict. Any other error is
// returned at once.
func (p RetryPolicy) DoOnConflict(ctx context.Context, what string, op func() error) error {
	return p.run(ctx, what, op, func(err error) bool { return errors.Is(err, storage.ErrConflict) })
}

func (p RetryPolicy) run(ctx context.Context, what string, op func() error, retryable func(error) bool) error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("succeeded after retry", "op", what, "attempt", attempt)
			}
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		logger.Debug("attempt failed", "op", what, "attempt", attempt, "maxAttempts", p.MaxAttempts, "err", lastErr)

		if attempt == p.MaxAttempts {
			break
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", what, p.MaxAttempts, lastErr)
}

// delay returns the wait after the given failed attempt.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
