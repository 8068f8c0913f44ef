// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package transport provides a connection-establishment retry helper
// shared by the uart transport. Retries here only ever cover opening or
// re-opening a port; once a FrameTransfer is built, no layer above this
// package retries a protocol exchange automatically.
package transport

import (
	"time"

	lin "github.com/mestrode/lin-go"
)

// Attempt is one connection step: a result and an error. A nil error
// ends Retry successfully; any other error is retried until Options
// exhausts or Retryable rejects it.
type Attempt[T any] func() (T, error)

// Retryable decides whether an error from Attempt is worth another try.
// A nil Retryable in Options retries every non-nil error.
type Retryable func(err error) bool

// Options bounds a Retry call by a maximum attempt count, a wall-clock
// deadline, or both — whichever is reached first stops retrying. A zero
// Options makes exactly one attempt.
type Options struct {
	MaxAttempts int // 0 means unbounded by count
	Deadline    time.Duration
	Delay       time.Duration
	Retryable   Retryable
}

// Retry runs attempt until it succeeds, Options exhausts, or Retryable
// rejects the error, sleeping Delay between tries. On exhaustion it
// returns a *lin.TransportError wrapping the last attempt's error.
func Retry[T any](opts Options, attempt Attempt[T]) (T, error) {
	retryable := opts.Retryable
	if retryable == nil {
		retryable = func(error) bool { return true }
	}

	var deadline time.Time
	if opts.Deadline > 0 {
		deadline = time.Now().Add(opts.Deadline)
	}

	var zero T
	var lastErr error
	for tries := 0; ; tries++ {
		value, err := attempt()
		if err == nil {
			return value, nil
		}
		lastErr = err

		countExhausted := opts.MaxAttempts > 0 && tries+1 >= opts.MaxAttempts
		noBound := opts.MaxAttempts <= 0 && deadline.IsZero()
		timeExhausted := !deadline.IsZero() && !time.Now().Before(deadline)
		if countExhausted || noBound || timeExhausted || !retryable(err) {
			break
		}
		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	return zero, &lin.TransportError{
		Op:        "open",
		Err:       orFramingTimeout(lastErr),
		Type:      lin.ErrorTypeTransient,
		Retryable: true,
	}
}

func orFramingTimeout(err error) error {
	if err != nil {
		return err
	}
	return lin.ErrFramingTimeout
}
