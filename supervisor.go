// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter

import (
	"context"
	std_errors "errors"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	cage_zap "github.com/codeactual/sitter/internal/cage/log/zap"
	cage_time "github.com/codeactual/sitter/internal/cage/time"
)

// Cancellation-cause tokens. Classification of an unwound computation reads
// context.Cause of the innermost scope and compares against these, so the
// three-way timeout/restart/cancel discrimination never depends on which
// cancellation error the computation chose to return.
var (
	errCancelCommand  = errors.New("sit cancelled by command")
	errRestartCommand = errors.New("sit restart requested")
	errDeadline       = errors.New("sit timed out")
)

// outcome classifies one iteration of the computation.
type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeFailed
	outcomeTimedOut
	outcomeCancelled
	outcomeRestart
)

type callResult struct {
	value interface{}
	err   error
}

// Supervisor drives a single invocation from admission to termination. It owns the
// invocation's SitContext and its cancellation scopes: the invocation scope, which
// a cancel command collapses; a restart scope per iteration; and a timeout scope
// nested inside the restart scope.
type Supervisor struct {
	sitter *Sitter
	args   []interface{}
	kwargs map[string]interface{}

	clock cage_time.Clock
	log   *zap.Logger
}

func newSupervisor(s *Sitter, args []interface{}, kwargs map[string]interface{}) *Supervisor {
	clock := s.Clock
	if clock == nil {
		clock = cage_time.RealClock{}
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{sitter: s, args: args, kwargs: kwargs, clock: clock, log: log}
}

// Start runs the invocation and returns its delivered result: the computation's
// value on completion (possibly from cache), nil without error when the invocation
// timed out or was cancelled, and the computation's error on failure.
func (s *Supervisor) Start(ctx context.Context) (interface{}, error) {
	sit := newSitContext(s.sitter, s.clock)
	ctx = withSit(ctx, sit)

	logAttrs := []zap.Field{
		cage_zap.Tag("supervisor"),
		zap.String("sit", sit.Name),
		zap.String("id", sit.ID.String()),
	}

	var key string
	if s.sitter.Cache != nil {
		key = CacheKey(sit.Name, s.args, s.kwargs)
		if value, ok := s.sitter.Cache.Get(key); ok {
			// The call driver is bypassed entirely: no hooks fire, no timeout
			// applies, and the SitContext stays pending.
			s.log.Debug("cache hit", append(logAttrs, zap.String("key", key))...)
			return value, nil
		}
	}

	s.log.Debug("admitted", logAttrs...)

	// The invocation scope. A cancel command collapses it, which both unwinds the
	// computation and ends the demultiplexer.
	runCtx, cancelRun := context.WithCancelCause(ctx)
	defer cancelRun(nil)

	commands := make(chan Command)
	demuxDone := make(chan struct{})
	if s.sitter.Signals != nil {
		d := &demux{signals: s.sitter.Signals, commands: commands, log: s.log}
		go func() {
			defer close(demuxDone)
			d.run(runCtx)
		}()
	} else {
		close(demuxDone)
	}

	result, err := s.drive(runCtx, cancelRun, commands, sit, key)

	cancelRun(nil)
	<-demuxDone

	s.log.Debug(
		"terminated",
		append(logAttrs, zap.String("state", sit.State().String()), zap.Bool("err", err != nil))...,
	)
	return result, err
}

// drive is the restart loop. It iterates rather than recursing so scopes are
// re-created cleanly and the stack does not grow per restart; restarts are
// unbounded and externally driven.
func (s *Supervisor) drive(
	runCtx context.Context,
	cancelRun context.CancelCauseFunc,
	commands <-chan Command,
	sit *SitContext,
	key string,
) (interface{}, error) {
	for {
		out, result, err := s.runIteration(runCtx, cancelRun, commands, sit)
		if out == outcomeRestart {
			s.log.Info(
				"restarting",
				cage_zap.Tag("supervisor"),
				zap.String("sit", sit.Name),
				zap.String("id", sit.ID.String()),
			)
			continue
		}

		if out == outcomeCompleted && err == nil && s.sitter.Cache != nil {
			// Only committed successful results are recorded; timeouts, failures,
			// cancellations, and restarts never write.
			s.sitter.Cache.Add(key, result)
		}

		return result, err
	}
}

// runIteration performs one pass through the computation: fresh restart and
// timeout scopes, startup hooks, the (optionally retry-wrapped) call, then the
// terminal hook list selected by how the call ended.
func (s *Supervisor) runIteration(
	runCtx context.Context,
	cancelRun context.CancelCauseFunc,
	commands <-chan Command,
	sit *SitContext,
) (outcome, interface{}, error) {
	iterID := sit.beginIteration()

	iterAttrs := []zap.Field{
		cage_zap.Tag("supervisor"),
		zap.String("sit", sit.Name),
		zap.String("id", sit.ID.String()),
		zap.String("iter", iterID.String()),
	}

	// The restart scope wraps the timeout scope: on unwinding, cause identity
	// distinguishes why cancellation occurred.
	restartCtx, cancelRestart := context.WithCancelCause(runCtx)
	defer cancelRestart(nil)

	var callCtx context.Context
	var cancelCall context.CancelFunc
	if s.sitter.Timeout > 0 {
		// The timeout clock starts here, so each restart re-arms it.
		callCtx, cancelCall = context.WithTimeoutCause(restartCtx, s.sitter.Timeout, errDeadline)
	} else {
		callCtx, cancelCall = context.WithCancel(restartCtx)
	}
	defer cancelCall()

	// Startup hooks run shielded like every other hook list. An unwind that
	// arrives during startup reaches the call through callCtx and is classified
	// when the call returns.
	if hookErr := runHooks(context.WithoutCancel(callCtx), prependHook(sit.setStarting, s.sitter.StartupHooks)); hookErr != nil {
		return outcomeFailed, nil, hookErr
	}

	s.log.Debug("running", iterAttrs...)

	call := func(ctx context.Context) (interface{}, error) {
		return s.sitter.Func(ctx, s.args, s.kwargs)
	}
	if s.sitter.Retry != nil {
		// The combinator wraps the raw call only, inside the timeout scope and
		// outside the hook machinery. Each iteration applies it anew, so a
		// restart begins a fresh retry budget.
		call = s.sitter.Retry(call)
	}

	done := make(chan callResult, 1)
	go func() {
		value, err := call(callCtx)
		done <- callResult{value: value, err: err}
	}()

	// Pump demultiplexer commands while the computation runs. Cancel collapses the
	// invocation scope; restart collapses only this iteration's restart scope.
	var res callResult
	for waiting := true; waiting; {
		select {
		case cmd := <-commands:
			switch cmd {
			case CommandCancel:
				cancelRun(errCancelCommand)
			case CommandRestart:
				cancelRestart(errRestartCommand)
			}
		case res = <-done:
			waiting = false
		}
	}

	// Terminal hooks run shielded: once a list begins, teardown of the scopes
	// above cannot truncate it. Values (and so the SitContext) survive.
	shielded := context.WithoutCancel(callCtx)

	switch {
	case res.err == nil:
		if hookErr := runHooks(shielded, prependHook(sit.setCompleted, s.sitter.CompletionHooks)); hookErr != nil {
			return outcomeFailed, nil, hookErr
		}
		s.log.Debug("completed", iterAttrs...)
		return outcomeCompleted, res.value, nil

	case isCancellation(res.err):
		cause := context.Cause(callCtx)
		switch {
		case std_errors.Is(cause, errDeadline):
			s.log.Info("timed out", iterAttrs...)
			hookErr := runHooks(shielded, prependHook(sit.setTimedOut, s.sitter.TimeoutHooks))
			return outcomeTimedOut, nil, hookErr

		case std_errors.Is(cause, errRestartCommand):
			// No state transition and no delivery: the next iteration re-enters
			// startup with fresh scopes.
			if hookErr := runHooks(shielded, s.sitter.RestartHooks); hookErr != nil {
				return outcomeFailed, nil, hookErr
			}
			return outcomeRestart, nil, nil

		default:
			// Neither scope claims the cancellation, so it came from outside:
			// a cancel command or the caller's own context.
			s.log.Info("cancelled", iterAttrs...)
			hookErr := runHooks(shielded, prependHook(sit.setCancelled, s.sitter.CancellationHooks))
			return outcomeCancelled, nil, hookErr
		}

	default:
		// Failures both fire hooks and propagate to the caller.
		s.log.Info("failed", append(iterAttrs, zap.Error(res.err))...)
		hookErr := runHooks(shielded, prependHook(sit.setFailed, s.sitter.ExceptionHooks))
		return outcomeFailed, nil, multierr.Append(res.err, hookErr)
	}
}

// isCancellation reports whether the computation unwound due to scope
// cancellation rather than failing in its own right.
func isCancellation(err error) bool {
	return std_errors.Is(err, context.Canceled) || std_errors.Is(err, context.DeadlineExceeded)
}
