/*
Package poll implements a bounded fixed interval retry. It's used to wait
until a remote resource reaches a wanted state. There is no growing backoff,
the ceiling is the only thing which stops the waiting.
*/
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
)

// ErrTimeout is returned when the ceiling is reached before the condition
// became true.
var ErrTimeout = errors.New("poll timeout")

var errPending = errors.New("pending")

// Config tells how often and how long we poll. The first try is done
// immediately, so Timeout/Interval+1 tries are done at most.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Retries returns the count of the tries after the first one.
func (c Config) Retries() uint64 {
	if c.Interval <= 0 || c.Timeout <= 0 {
		return 0
	}
	return uint64(c.Timeout / c.Interval)
}

// Func is a condition to poll. When it returns an error the polling stops
// immediately and the error is returned to the caller.
type Func func(ctx context.Context) (done bool, err error)

// Until calls f until it reports done, returns an error, ctx is done or the
// ceiling is reached. The last case returns an error which wraps ErrTimeout.
func Until(ctx context.Context, cfg Config, f Func) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Interval), cfg.Retries()),
		ctx)

	tries := 0
	err := backoff.RetryNotify(func() error {
		tries++
		done, err := f(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !done {
			return errPending
		}
		return nil
	}, b, func(_ error, next time.Duration) {
		glog.V(3).Infof("poll try %d pending, next try in %v", tries, next)
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, errPending):
		return fmt.Errorf("%w after %d tries in %v", ErrTimeout, tries, cfg.Timeout)
	}
	return err
}
