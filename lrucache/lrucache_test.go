// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package lrucache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeactual/sitter/lrucache"
)

func TestRoundTrip(t *testing.T) {
	cache, err := lrucache.New(10)
	require.NoError(t, err)

	require.False(t, cache.Contains("k"))

	cache.Add("k", 42)

	require.True(t, cache.Contains("k"))
	value, ok := cache.Get("k")
	require.True(t, ok)
	require.Exactly(t, 42, value)
	require.Exactly(t, 1, cache.Len())
}

func TestEvictionBeyondCapacity(t *testing.T) {
	const size = 3

	cache, err := lrucache.New(size)
	require.NoError(t, err)

	for i := 0; i < size*2; i++ {
		cache.Add(fmt.Sprintf("k%d", i), i)
	}

	require.Exactly(t, size, cache.Len())

	// The least recently used entries were evicted.
	require.False(t, cache.Contains("k0"))
	require.True(t, cache.Contains(fmt.Sprintf("k%d", size*2-1)))
}

func TestInvalidSize(t *testing.T) {
	_, err := lrucache.New(0)
	require.Error(t, err)
}
