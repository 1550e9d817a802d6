// Copyright (C) 2019 The CodeActual Go Environment Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package time

import (
	std_time "time"
)

// Clock supports timestamp mocking for time-sensitive tests.
type Clock interface {
	Now() std_time.Time
}

type RealClock struct{}

// Now returns the current UTC time.Time (unlike the standard lib which returns local).
func (r RealClock) Now() std_time.Time {
	return std_time.Now().UTC()
}

var _ Clock = (*RealClock)(nil)

// FakeClock returns a fixed time until advanced.
type FakeClock struct {
	now std_time.Time
}

func NewFakeClock(now std_time.Time) *FakeClock {
	return &FakeClock{now: now.UTC()}
}

func (f *FakeClock) Now() std_time.Time {
	return f.now
}

// Advance moves the clock forward and returns it for chaining.
func (f *FakeClock) Advance(d std_time.Duration) *FakeClock {
	f.now = f.now.Add(d)
	return f
}

var _ Clock = (*FakeClock)(nil)
