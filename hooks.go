// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Hook is a lifecycle callback. The context carries the invocation's SitContext
// for Current and is shielded during dispatch: a concurrent cancellation does not
// truncate a hook list that has begun running.
type Hook func(ctx context.Context) error

// runHooks launches every hook on its own goroutine, waits for all of them, and
// returns their failures combined. Hooks within one list are unordered relative
// to each other. An empty list is a no-op.
func runHooks(ctx context.Context, hooks []Hook) error {
	if len(hooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(hooks))

	for n, h := range hooks {
		wg.Add(1)
		go func(n int, h Hook) {
			defer wg.Done()
			errs[n] = h(ctx)
		}(n, h)
	}

	wg.Wait()
	return multierr.Combine(errs...)
}

// prependHook returns hooks with first at the head, without mutating hooks. Each
// of the other hooks waits for first to return before it runs, so they all
// observe what first did.
func prependHook(first Hook, hooks []Hook) []Hook {
	done := make(chan struct{})
	all := make([]Hook, 0, len(hooks)+1)
	all = append(all, func(ctx context.Context) error {
		defer close(done)
		return first(ctx)
	})
	for _, h := range hooks {
		h := h
		all = append(all, func(ctx context.Context) error {
			<-done
			return h(ctx)
		})
	}
	return all
}
