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
)

// stateHook captures the state visible to a user hook, which by contract already
// reflects the transition the hook list fires on.
func stateHook(state *sitter.SitState) sitter.Hook {
	return func(ctx context.Context) error {
		sit, err := sitter.Current(ctx)
		if err != nil {
			return err
		}
		*state = sit.State()
		return nil
	}
}

func TestActiveSitIsRunning(t *testing.T) {
	var state sitter.SitState

	s := newSitter(func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		sit, err := sitter.Current(ctx)
		if err != nil {
			return nil, err
		}
		state = sit.State()
		return true, nil
	})

	_, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, sitter.StateRunning, state)
}

func TestFailedSitState(t *testing.T) {
	var state sitter.SitState

	s := newSitter(func(context.Context, []interface{}, map[string]interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})
	s.ExceptionHooks = []sitter.Hook{stateHook(&state)}

	_, err := s.Call(context.Background())

	require.Error(t, err)
	require.Exactly(t, sitter.StateFailed, state)
}

func TestTimedOutSitState(t *testing.T) {
	var state sitter.SitState

	s := newSitter(sleepReturn(time.Second, true, nil))
	s.Timeout = 100 * time.Millisecond
	s.TimeoutHooks = []sitter.Hook{stateHook(&state)}

	result, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Nil(t, result)
	require.Exactly(t, sitter.StateCancelled, state)
}

func TestCompletedSitState(t *testing.T) {
	var state sitter.SitState

	s := newSitter(sleepReturn(0, true, nil))
	s.CompletionHooks = []sitter.Hook{stateHook(&state)}

	_, err := s.Call(context.Background())

	require.NoError(t, err)
	require.Exactly(t, sitter.StateCompleted, state)
}

func TestTerminalStatesAbsorbTransitions(t *testing.T) {
	require.True(t, sitter.StateCompleted.Terminal())
	require.True(t, sitter.StateFailed.Terminal())
	require.True(t, sitter.StateCancelled.Terminal())
	require.False(t, sitter.StatePending.Terminal())
	require.False(t, sitter.StateRunning.Terminal())
}
