// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	cage_time "github.com/codeactual/sitter/internal/cage/time"
)

// ErrNoActiveContext is returned by Current when the context.Context does not
// belong to a supervised invocation.
var ErrNoActiveContext = errors.New("sit context is only available from within a sit")

type sitCtxKey struct{}

// Current returns the SitContext of the innermost invocation which ctx belongs to.
//
// It is usable from hooks, from the computation, and from any function the computation
// passes its context to. Nested invocations shadow outer ones: the inner computation
// observes its own SitContext, and the outer one is visible again after the inner
// invocation returns.
func Current(ctx context.Context) (*SitContext, error) {
	sit, ok := ctx.Value(sitCtxKey{}).(*SitContext)
	if !ok {
		return nil, errors.WithStack(ErrNoActiveContext)
	}
	return sit, nil
}

func withSit(ctx context.Context, sit *SitContext) context.Context {
	return context.WithValue(ctx, sitCtxKey{}, sit)
}

// SitContext carries one invocation's identity, timing, and state. The Supervisor
// creates it at admission and owns it for the invocation's lifetime; hooks and the
// computation read it through Current.
type SitContext struct {
	// ID uniquely identifies the invocation.
	ID uuid.UUID

	// Name is the human-readable label of the invocation, derived from the wrapped
	// function unless Sitter.Name overrides it.
	Name string

	// StartedAt is the UTC admission time.
	StartedAt time.Time

	// Sitter points back to the configuration the invocation runs under. Hooks may
	// read it but must not mutate it.
	Sitter *Sitter

	clock cage_time.Clock

	// mu guards the fields below against concurrent reads from hooks, which run
	// on their own goroutines.
	mu        sync.RWMutex
	iterID    ksuid.KSUID
	state     SitState
	stoppedAt time.Time
}

func newSitContext(s *Sitter, clock cage_time.Clock) *SitContext {
	return &SitContext{
		ID:        uuid.New(),
		Name:      s.label(),
		StartedAt: clock.Now(),
		Sitter:    s,
		clock:     clock,
		state:     StatePending,
	}
}

// State returns the current lifecycle state.
func (c *SitContext) State() SitState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// StoppedAt returns the UTC time of the first terminal transition. ok is false
// while the invocation is still pending or running.
func (c *SitContext) StoppedAt() (t time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stoppedAt, !c.stoppedAt.IsZero()
}

// IterID identifies the current iteration. Restarts assign a fresh value, so log
// lines from different iterations of one invocation remain distinguishable.
func (c *SitContext) IterID() ksuid.KSUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.iterID
}

func (c *SitContext) beginIteration() ksuid.KSUID {
	id := ksuid.New()
	c.mu.Lock()
	c.iterID = id
	c.mu.Unlock()
	return id
}

// transition moves to next unless the current state is terminal. Terminal states
// absorb all later transition attempts, and the first terminal transition stamps
// stoppedAt.
func (c *SitContext) transition(next SitState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Terminal() {
		return
	}

	c.state = next
	if next.Terminal() {
		c.stoppedAt = c.clock.Now()
	}
}

// The transition methods are hook-shaped so the Supervisor can prepend them to the
// matching hook list: state reflects the event before any user hook observes it.

func (c *SitContext) setStarting(context.Context) error {
	c.transition(StateRunning)
	return nil
}

func (c *SitContext) setCompleted(context.Context) error {
	c.transition(StateCompleted)
	return nil
}

func (c *SitContext) setFailed(context.Context) error {
	c.transition(StateFailed)
	return nil
}

func (c *SitContext) setTimedOut(context.Context) error {
	c.transition(StateCancelled)
	return nil
}

func (c *SitContext) setCancelled(context.Context) error {
	c.transition(StateCancelled)
	return nil
}
