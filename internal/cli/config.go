// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cli converts config files into runnable units for the sitter CLI.
package cli

import (
	"time"

	"github.com/pkg/errors"
	std_viper "github.com/spf13/viper"
)

const (
	// DefaultRetry is the default TaskConfig.Retry value: a single attempt.
	DefaultRetry = 1
)

// TaskConfig defines the supervised command.
//
// Its config section is Task.
type TaskConfig struct {
	// Label is displayed to users in output for reference/debugging/etc.
	//
	// It is a required field.
	Label string

	// Cmd holds a single command or multiple commands in a "|" pipeline.
	Cmd string

	// Dir is the working directory.
	Dir string

	// Env holds "KEY=VALUE" pairs to overwrite in the current environment.
	Env []string

	// Timeout is a time.Duration compatible string that defines how long one
	// iteration of the command may run. Empty means no timeout.
	Timeout string

	// Retry is the maximum attempt count per iteration. Zero and one mean a
	// single attempt; negative values are rejected.
	Retry int

	// timeout is the parsed version of Timeout.
	timeout time.Duration
}

// GetTimeout returns the parsed value of Timeout.
func (t TaskConfig) GetTimeout() time.Duration {
	return t.timeout
}

// HooksConfig holds shell commands to run at each lifecycle event.
//
// Its config section is Hooks.
type HooksConfig struct {
	Startup      []string
	Completion   []string
	Exception    []string
	Timeout      []string
	Cancellation []string
	Restart      []string
}

// CacheConfig defines result memoization.
//
// Its config section is Cache.
type CacheConfig struct {
	// Size is the maximum number of memoized results. Zero disables memoization.
	Size int
}

// Config defines the structure of a config file.
type Config struct {
	// Task defines the supervised command.
	Task TaskConfig

	// Hooks defines commands to run at lifecycle events.
	Hooks HooksConfig

	// Cache defines result memoization.
	Cache CacheConfig
}

// ReadConfigFile converts a file to a Config value.
func ReadConfigFile(name string) (c Config, err error) {
	file := std_viper.New()
	file.SetConfigFile(name)
	if err = file.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file [%s]", name)
	}

	if err = file.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrapf(err, "failed to unmarshal config from file [%s]", name)
	}

	if err = FinalizeConfig(&c); err != nil {
		return Config{}, errors.WithStack(err)
	}

	return c, nil
}

// FinalizeConfig validates and finalizes Config fields.
func FinalizeConfig(c *Config) error {
	if c.Task.Label == "" {
		return errors.New("config: Task.Label is required")
	}
	if c.Task.Cmd == "" {
		return errors.Errorf("config: [task: %s]: Task.Cmd is required", c.Task.Label)
	}

	if c.Task.Timeout != "" {
		timeout, err := time.ParseDuration(c.Task.Timeout)
		if err != nil {
			return errors.Wrapf(err, "config: [task: %s]: failed to parse Timeout [%s]", c.Task.Label, c.Task.Timeout)
		}
		if timeout < 0 {
			return errors.Errorf("config: [task: %s]: Timeout [%s] is negative", c.Task.Label, c.Task.Timeout)
		}
		c.Task.timeout = timeout
	}

	if c.Task.Retry == 0 {
		c.Task.Retry = DefaultRetry
	}
	if c.Task.Retry < 0 {
		return errors.Errorf("config: [task: %s]: Retry [%d] is negative", c.Task.Label, c.Task.Retry)
	}

	if c.Cache.Size < 0 {
		return errors.Errorf("config: [task: %s]: Cache.Size [%d] is negative", c.Task.Label, c.Cache.Size)
	}

	return nil
}
