// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
)

// Cache memoizes results of completed invocations. Any keyed container works;
// package lrucache provides one. The Supervisor treats each operation as atomic
// but performs no locking of its own around them.
type Cache interface {
	Contains(key string) bool
	Get(key string) (value interface{}, ok bool)
	Add(key string, value interface{})
}

// kwdMark separates positional arguments from keyword arguments in the key so
// that Call(ctx, "a") and CallNamed(ctx, nil, {"a": ...}) never collide.
const kwdMark = "\x00kwd\x00"

// CacheKey returns the deterministic key for one argument tuple: the function
// name, the positional arguments in order, a sentinel, and the keyword arguments
// sorted by key. Callers passing equivalent keyword arguments in any order
// therefore share one cache entry, while positional order stays significant.
func CacheKey(name string, args []interface{}, kwargs map[string]interface{}) string {
	h := sha256.New()

	fmt.Fprintf(h, "%s\x1f", name)
	for _, a := range args {
		fmt.Fprintf(h, "%#v\x1f", a)
	}

	io.WriteString(h, kwdMark)

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%#v\x1f", k, kwargs[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}
