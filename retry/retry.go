// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package retry provides combinators for Sitter.Retry on top of
// github.com/cenkalti/backoff. A combinator wraps the raw computation only, so
// one eventual success still yields a single completion and an exhausted budget
// fails like any other error.
package retry

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/codeactual/sitter"
)

// StopAfterAttempt retries the computation until it succeeds or n attempts have
// run, with no delay between attempts.
func StopAfterAttempt(n uint64) sitter.Retry {
	return WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, max(n, 1)-1)
	})
}

// ConstantDelay is StopAfterAttempt with a fixed wait between attempts.
func ConstantDelay(d time.Duration, n uint64) sitter.Retry {
	return WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(d), max(n, 1)-1)
	})
}

// WithBackOff adapts any backoff policy into a combinator. The factory runs once
// per call, so every invocation — and every restart iteration — begins with a
// fresh budget.
//
// Cancellation is terminal, never retried: a timeout, restart, or cancel unwinds
// the attempt loop immediately so the supervisor can classify the unwind.
func WithBackOff(factory func() backoff.BackOff) sitter.Retry {
	return func(call sitter.Call) sitter.Call {
		return func(ctx context.Context) (interface{}, error) {
			var result interface{}

			attempt := func() error {
				value, err := call(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return backoff.Permanent(err)
					}
					return err
				}
				result = value
				return nil
			}

			if err := backoff.Retry(attempt, backoff.WithContext(factory(), ctx)); err != nil {
				return nil, err
			}
			return result, nil
		}
	}
}
