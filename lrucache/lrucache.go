// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package lrucache provides a bounded Sitter.Cache backed by
// github.com/hashicorp/golang-lru.
package lrucache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/codeactual/sitter"
)

// Cache is a fixed-capacity LRU keyed by sitter cache keys. All operations are
// safe for concurrent use.
type Cache struct {
	inner *lru.Cache[string, interface{}]
}

var _ sitter.Cache = (*Cache)(nil)

// New returns a cache which holds at most size entries, evicting the least
// recently used beyond that.
func New(size int) (*Cache, error) {
	inner, err := lru.New[string, interface{}](size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create cache of size %d", size)
	}
	return &Cache{inner: inner}, nil
}

func (c *Cache) Contains(key string) bool {
	return c.inner.Contains(key)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.inner.Get(key)
}

func (c *Cache) Add(key string, value interface{}) {
	c.inner.Add(key, value)
}

// Len returns the number of stored results.
func (c *Cache) Len() int {
	return c.inner.Len()
}
