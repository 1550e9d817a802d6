// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sitter runs asynchronous computations under a managed lifecycle: observable
// state transitions, timeouts, retries, memoized results, signal-driven restart and
// cancellation, and user hooks fired at each lifecycle event.
//
// A Sitter wraps one computation. Calling it admits one invocation, driven by a
// Supervisor from admission to termination:
//
//	s := sitter.New(sitter.Thunk(func(ctx context.Context) (interface{}, error) {
//		return fetch(ctx)
//	}))
//	s.Timeout = 30 * time.Second
//	result, err := s.Call(ctx)
//
// Call returns (result, nil) on completion, (nil, nil) when the invocation timed out
// or was cancelled, and (nil, err) when the computation failed. Within the computation
// and within hooks, Current returns the invocation's SitContext.
//
// Sub-packages retry and lrucache provide the optional retry combinators and
// result cache. The internal "standard library" (internal/cage/*) is extracted
// from a private monorepo.
package sitter
