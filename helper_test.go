// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter_test

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/codeactual/sitter"
	"github.com/codeactual/sitter/internal/cage/testkit"
)

// signalDelay paces injected signal streams so the supervised computation has an
// opportunity to run between deliveries, mirroring real signal arrival.
const signalDelay = 50 * time.Millisecond

type counter struct {
	n int32
}

func (c *counter) incr() {
	atomic.AddInt32(&c.n, 1)
}

func (c *counter) get() int {
	return int(atomic.LoadInt32(&c.n))
}

// countHook returns a hook which only records that it ran.
func countHook(c *counter) sitter.Hook {
	return func(context.Context) error {
		c.incr()
		return nil
	}
}

// countHooks returns n independent counted hooks sharing one counter.
func countHooks(c *counter, n int) []sitter.Hook {
	hooks := make([]sitter.Hook, 0, n)
	for i := 0; i < n; i++ {
		hooks = append(hooks, countHook(c))
	}
	return hooks
}

// sleepReturn returns a cooperative computation: it counts the call, sleeps for d
// unless its context ends first, and then returns result.
func sleepReturn(d time.Duration, result interface{}, calls *counter) sitter.Func {
	return func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		if calls != nil {
			calls.incr()
		}
		select {
		case <-time.After(d):
			return result, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// signalStream delivers the signals in order, one per signalDelay tick. The
// channel is buffered so undelivered signals never strand the sender.
func signalStream(sigs ...os.Signal) <-chan os.Signal {
	ch := make(chan os.Signal, len(sigs))
	go func() {
		for _, sig := range sigs {
			time.Sleep(signalDelay)
			ch <- sig
		}
	}()
	return ch
}

// newSitter wires the test logger into a fresh runnable unit.
func newSitter(fn sitter.Func) *sitter.Sitter {
	s := sitter.New(fn)
	s.Log = testkit.NewZapLogger()
	return s
}
