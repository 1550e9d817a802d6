// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package retry_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/codeactual/sitter"
	"github.com/codeactual/sitter/retry"
)

// flaky returns a computation which fails until the given attempt number.
func flaky(succeedOn int32, calls *int32) sitter.Func {
	return func(context.Context, []interface{}, map[string]interface{}) (interface{}, error) {
		n := atomic.AddInt32(calls, 1)
		if n < succeedOn {
			return nil, errors.Errorf("attempt %d failed", n)
		}
		return true, nil
	}
}

func TestRetriesOnFnThatEventuallySucceeds(t *testing.T) {
	const attempts = 5

	var calls int32
	var completions, exceptions int32

	s := sitter.New(flaky(attempts, &calls))
	s.Retry = retry.StopAfterAttempt(attempts)
	s.CompletionHooks = []sitter.Hook{func(context.Context) error {
		atomic.AddInt32(&completions, 1)
		return nil
	}}
	s.ExceptionHooks = []sitter.Hook{func(context.Context) error {
		atomic.AddInt32(&exceptions, 1)
		return nil
	}}

	result, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, true, result)
	require.Exactly(t, int32(attempts), atomic.LoadInt32(&calls))
	require.Exactly(t, int32(1), atomic.LoadInt32(&completions))
	require.Exactly(t, int32(0), atomic.LoadInt32(&exceptions))
}

func TestRetriesOnFnThatAlwaysFails(t *testing.T) {
	const attempts = 5

	var calls int32

	s := sitter.New(func(context.Context, []interface{}, map[string]interface{}) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("boom")
	})
	s.Retry = retry.StopAfterAttempt(attempts)

	result, err := s.Call(context.Background())

	require.Nil(t, result)
	require.Error(t, err)
	require.Exactly(t, int32(attempts), atomic.LoadInt32(&calls))
}

func TestSuccessfulFnWithoutRetries(t *testing.T) {
	var calls int32

	s := sitter.New(flaky(1, &calls))

	result, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, true, result)
	require.Exactly(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCancellationIsNotRetried(t *testing.T) {
	var calls int32

	s := sitter.New(func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s.Retry = retry.StopAfterAttempt(5)
	s.Timeout = 100 * time.Millisecond

	result, err := s.Call(context.Background())

	// A timeout is terminal: the attempt loop unwinds instead of retrying.
	require.NoError(t, err)
	require.Nil(t, result)
	require.Exactly(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConstantDelayRetries(t *testing.T) {
	const attempts = 3

	var calls int32
	startTime := time.Now()

	s := sitter.New(flaky(attempts, &calls))
	s.Retry = retry.ConstantDelay(50*time.Millisecond, attempts)

	result, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, true, result)
	require.Exactly(t, int32(attempts), atomic.LoadInt32(&calls))
	require.GreaterOrEqual(t, time.Since(startTime), 100*time.Millisecond)
}
