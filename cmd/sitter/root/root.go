// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Root command sitter supervises the configured command: restart it with SIGHUP,
// pause/resume command dispatch with SIGUSR1/SIGUSR2, and cancel with SIGTERM/SIGINT.
//
// Usage:
//
//	sitter --config /path/to/config
package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/codeactual/sitter"
	"github.com/codeactual/sitter/internal/cli"
	cage_exec "github.com/codeactual/sitter/internal/cage/os/exec"
)

// Handler defines the command flags and logic.
type Handler struct {
	ConfigPath string

	Verbose bool
}

// NewCommand returns the root command.
func NewCommand() *cobra.Command {
	h := new(Handler)

	cmd := &cobra.Command{
		Use:   "sitter",
		Short: "Supervise a command with lifecycle hooks, timeout, retries, and signal control",
		Example: strings.Join([]string{
			"sitter --config /path/to/config",
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
	fs.BoolVarP(&h.Verbose, "verbose", "v", false, "include debug-level log messages")
}

// Run performs the command logic.
func (h *Handler) Run(cmd *cobra.Command) error {
	cfg, err := cli.ReadConfigFile(h.ConfigPath)
	if err != nil {
		return errors.WithStack(err)
	}

	log, err := h.newLogger()
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	s, err := cli.NewSitter(cfg, cage_exec.CommonExecutor{}, log)
	if err != nil {
		return errors.WithStack(err)
	}

	signals, stop := sitter.Notify()
	defer stop()
	s.Signals = signals

	result, err := s.Call(cmd.Context())
	if err != nil {
		return errors.Wrapf(err, "task [%s] failed", cfg.Task.Label)
	}

	if result == nil {
		// Timed out or cancelled: no result to print, and the exit code says so.
		log.Info("no result", zap.String("task", cfg.Task.Label))
		os.Exit(1)
	}

	fmt.Fprint(cmd.OutOrStdout(), result)
	return nil
}

func (h *Handler) newLogger() (*zap.Logger, error) {
	if h.Verbose {
		return zap.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
