// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter

import (
	"context"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	cage_time "github.com/codeactual/sitter/internal/cage/time"
)

// Func is the supervised computation. The context is cancelled when the
// invocation's timeout elapses, a restart unwinds the iteration, or the
// invocation is cancelled; a cooperative Func returns ctx.Err() promptly in
// those cases. args and kwargs are the invocation arguments from Call/CallNamed.
type Func func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error)

// Call is a computation with its invocation arguments already bound.
type Call func(ctx context.Context) (interface{}, error)

// Retry transforms a bound call to add retry behavior, e.g. retry.StopAfterAttempt.
// The Supervisor applies it to the raw call only: one successful attempt yields one
// completion, and an exhausted budget fails like any other error.
type Retry func(Call) Call

// Thunk adapts a computation that takes no invocation arguments.
func Thunk(fn Call) Func {
	return func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		return fn(ctx)
	}
}

// Sitter is the runnable unit: one computation plus the lifecycle configuration
// its invocations run under. Fields may be populated directly; only Func is
// required. A Sitter is immutable once invocations begin — hooks may hold a
// reference through SitContext.Sitter but must not mutate it.
type Sitter struct {
	// Func is the supervised computation.
	Func Func

	// Name labels invocations in logs and forms part of the cache key. When empty,
	// it is derived from Func via the runtime.
	Name string

	// Timeout bounds each iteration of the computation. Zero means no timeout.
	// Restarts reset the clock.
	Timeout time.Duration

	// Retry wraps the raw call with retry logic. Nil means a single attempt.
	Retry Retry

	// Cache memoizes committed successful results keyed by argument tuple.
	// Nil disables memoization.
	Cache Cache

	// StartupHooks fire before the computation runs, once per iteration —
	// including once per restart.
	StartupHooks []Hook

	// CompletionHooks fire on normal return.
	CompletionHooks []Hook

	// ExceptionHooks fire on a non-cancellation error.
	ExceptionHooks []Hook

	// TimeoutHooks fire when Timeout elapses.
	TimeoutHooks []Hook

	// CancellationHooks fire on an external cancel.
	CancellationHooks []Hook

	// RestartHooks fire when a restart unwinds the running iteration.
	RestartHooks []Hook

	// Signals feeds the invocation's signal demultiplexer, e.g. from Notify.
	// Nil disables signal-driven control.
	Signals <-chan os.Signal

	// Log receives debug/info-level supervisor and demultiplexer messages.
	// Nil means no logging.
	Log *zap.Logger

	// Clock supports timestamp mocking for tests.
	Clock cage_time.Clock
}

// New returns a runnable unit for fn with no timeout, retry, cache, hooks, or
// signal handling; callers populate fields for the behavior they need.
func New(fn Func) *Sitter {
	return &Sitter{Func: fn}
}

// Call admits one invocation with positional arguments and blocks until it
// terminates. It returns (result, nil) on completion — including a cache hit —
// (nil, nil) when the invocation timed out or was cancelled, and (nil, err) when
// the computation failed or a hook failed.
func (s *Sitter) Call(ctx context.Context, args ...interface{}) (interface{}, error) {
	return s.CallNamed(ctx, args, nil)
}

// CallNamed is Call with keyword arguments as well. Keyword order never affects
// the cache key; positional order does.
func (s *Sitter) CallNamed(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if s.Func == nil {
		return nil, errors.New("sitter requires a Func")
	}
	return newSupervisor(s, args, kwargs).Start(ctx)
}

// label returns Name, or a name derived from the computation.
func (s *Sitter) label() string {
	if s.Name != "" {
		return s.Name
	}
	return funcName(s.Func)
}

// funcName resolves fn's symbol name to its bare identifier, e.g.
// "github.com/acme/report.Generate" to "Generate". Anonymous functions keep the
// runtime's "funcN" style suffix, which at least distinguishes siblings.
func funcName(fn Func) string {
	if fn == nil {
		return "unknown"
	}

	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if n := strings.LastIndex(name, "/"); n != -1 {
		name = name[n+1:]
	}
	if n := strings.Index(name, "."); n != -1 {
		name = name[n+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
