// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/codeactual/sitter"
	cage_time "github.com/codeactual/sitter/internal/cage/time"
)

func TestFunctionsAreRun(t *testing.T) {
	calls := new(counter)

	result, err := newSitter(sleepReturn(0, "done", calls)).Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, "done", result)
	require.Exactly(t, 1, calls.get())
}

func TestNestedRuns(t *testing.T) {
	calls := new(counter)
	inner := newSitter(sleepReturn(0, "g", calls))

	outer := newSitter(func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		return inner.Call(ctx)
	})

	result, err := outer.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, "g", result)
	require.Exactly(t, 1, calls.get())
}

func TestArgumentsReachComputation(t *testing.T) {
	var gotArgs []interface{}
	var gotKwargs map[string]interface{}

	s := newSitter(func(_ context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
		gotArgs = args
		gotKwargs = kwargs
		return len(args), nil
	})

	result, err := s.CallNamed(context.Background(), []interface{}{1, "two"}, map[string]interface{}{"three": 3})

	require.NoError(t, err)
	require.Exactly(t, 2, result)
	require.Exactly(t, []interface{}{1, "two"}, gotArgs)
	require.Exactly(t, map[string]interface{}{"three": 3}, gotKwargs)
}

func TestFailurePropagates(t *testing.T) {
	boom := errors.New("boom")

	s := newSitter(func(context.Context, []interface{}, map[string]interface{}) (interface{}, error) {
		return nil, boom
	})

	result, err := s.Call(context.Background())

	require.Nil(t, result)
	require.ErrorIs(t, err, boom)
}

func TestMissingFuncIsRejected(t *testing.T) {
	s := &sitter.Sitter{}

	result, err := s.Call(context.Background())

	require.Nil(t, result)
	require.Error(t, err)
}

func TestNameOverride(t *testing.T) {
	var name string

	s := newSitter(sleepReturn(0, true, nil))
	s.Name = "nightly-report"
	s.StartupHooks = []sitter.Hook{func(ctx context.Context) error {
		sit, err := sitter.Current(ctx)
		if err != nil {
			return err
		}
		name = sit.Name
		return nil
	}}

	_, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, "nightly-report", name)
}

func TestTimestampsUseClock(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	clock := cage_time.NewFakeClock(now)

	var sit *sitter.SitContext
	s := newSitter(sleepReturn(0, true, nil))
	s.Clock = clock
	s.StartupHooks = []sitter.Hook{func(ctx context.Context) error {
		var err error
		sit, err = sitter.Current(ctx)
		return err
	}}

	_, err := s.Call(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sit)
	require.Exactly(t, now, sit.StartedAt)

	stoppedAt, ok := sit.StoppedAt()
	require.True(t, ok)
	require.Exactly(t, now, stoppedAt)
}

func TestStoppedAtOnlyAfterTerminal(t *testing.T) {
	var runningStopped bool

	var sit *sitter.SitContext
	s := newSitter(func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		var err error
		sit, err = sitter.Current(ctx)
		if err != nil {
			return nil, err
		}
		_, runningStopped = sit.StoppedAt()
		return true, nil
	})

	_, err := s.Call(context.Background())

	require.NoError(t, err)
	require.False(t, runningStopped)

	require.Exactly(t, sitter.StateCompleted, sit.State())
	_, ok := sit.StoppedAt()
	require.True(t, ok)
}
