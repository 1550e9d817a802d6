// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Sub-command eval validates a configuration file and prints how its task would be
// supervised. It provides a way to test a configuration without running the task.
//
// Usage:
//
//	sitter eval --config /path/to/config
package eval

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/codeactual/sitter/internal/cli"
	cage_shell "github.com/codeactual/sitter/internal/cage/shell"
	cage_time "github.com/codeactual/sitter/internal/cage/time"
)

// Handler defines the sub-command flags and logic.
type Handler struct {
	ConfigPath string
}

// NewCommand returns the eval sub-command.
func NewCommand() *cobra.Command {
	h := new(Handler)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Validate a configuration file and print the supervision plan",
		Example: strings.Join([]string{
			"sitter eval --config /path/to/config",
		}, "\n"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return h.Run(cmd)
		},
	}
	h.BindFlags(cmd.Flags())

	return cmd
}

// BindFlags binds the flags to Handler fields.
func (h *Handler) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&h.ConfigPath, "config", "c", "", "viper-readable config file")
}

// Run performs the sub-command logic.
func (h *Handler) Run(cmd *cobra.Command) error {
	cfg, err := cli.ReadConfigFile(h.ConfigPath)
	if err != nil {
		return errors.WithStack(err)
	}

	stages, err := cage_shell.Parse(cfg.Task.Cmd)
	if err != nil {
		return errors.Wrapf(err, "[task: %s]: failed to parse command [%s]", cfg.Task.Label, cfg.Task.Cmd)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "task: %s\n", cfg.Task.Label)
	fmt.Fprintf(out, "pipeline stages: %d\n", len(stages))

	if timeout := cfg.Task.GetTimeout(); timeout > 0 {
		fmt.Fprintf(out, "timeout: %s\n", cage_time.DurationShort(timeout))
	} else {
		fmt.Fprintln(out, "timeout: none")
	}

	if cfg.Task.Retry > 1 {
		fmt.Fprintf(out, "retry: up to %d attempts\n", cfg.Task.Retry)
	} else {
		fmt.Fprintln(out, "retry: single attempt")
	}

	if cfg.Cache.Size > 0 {
		fmt.Fprintf(out, "cache: %d results\n", cfg.Cache.Size)
	} else {
		fmt.Fprintln(out, "cache: disabled")
	}

	hookEvents := []struct {
		event string
		cmds  []string
	}{
		{"startup", cfg.Hooks.Startup},
		{"completion", cfg.Hooks.Completion},
		{"exception", cfg.Hooks.Exception},
		{"timeout", cfg.Hooks.Timeout},
		{"cancellation", cfg.Hooks.Cancellation},
		{"restart", cfg.Hooks.Restart},
	}
	for _, group := range hookEvents {
		if len(group.cmds) > 0 {
			fmt.Fprintf(out, "%s hooks: %d\n", group.event, len(group.cmds))
		}
	}

	return nil
}
