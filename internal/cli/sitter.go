// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/codeactual/sitter"
	cage_zap "github.com/codeactual/sitter/internal/cage/log/zap"
	cage_exec "github.com/codeactual/sitter/internal/cage/os/exec"
	cage_shell "github.com/codeactual/sitter/internal/cage/shell"
	cage_time "github.com/codeactual/sitter/internal/cage/time"
	"github.com/codeactual/sitter/lrucache"
	"github.com/codeactual/sitter/retry"
)

// NewSitter converts a Config into a runnable unit whose computation runs the
// configured command pipeline and whose hooks run the configured hook commands.
func NewSitter(cfg Config, executor cage_exec.Executor, log *zap.Logger) (*sitter.Sitter, error) {
	stages, err := cage_shell.Parse(cfg.Task.Cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "[task: %s]: failed to parse command [%s]", cfg.Task.Label, cfg.Task.Cmd)
	}
	if len(stages) == 0 {
		return nil, errors.Errorf("[task: %s]: command [%s] is empty after parsing", cfg.Task.Label, cfg.Task.Cmd)
	}

	stageStrs := make([]string, len(stages))
	for n, stage := range stages {
		stageStrs[n] = cage_exec.CmdToString(stage)
	}
	log.Debug(
		"parsed task command",
		cage_zap.Tag("cli"),
		zap.String("task", cfg.Task.Label),
		zap.Strings("stages", stageStrs),
	)

	opt := cage_exec.Option{Dir: cfg.Task.Dir, Env: cfg.Task.Env}

	s := sitter.New(func(ctx context.Context, _ []interface{}, _ map[string]interface{}) (interface{}, error) {
		startTime := time.Now()
		stdout, stderr, err := executor.Buffered(ctx, opt, stages...)

		// The supervisor classifies a cancelled iteration by the context, not by
		// the process error, so surface the context error when present.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}

		logAttrs := []zap.Field{
			cage_zap.Tag("cli"),
			zap.String("task", cfg.Task.Label),
			zap.String("runLen", cage_time.DurationShort(time.Since(startTime))),
		}
		if stderr != nil {
			logAttrs = append(logAttrs, zap.String("stderr", stderr.String()))
		}

		if err != nil {
			log.Info("task command finished", append(logAttrs, zap.Error(err))...)
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, errors.Wrapf(err, "[task: %s]: command failed", cfg.Task.Label)
		}

		log.Info("task command finished", logAttrs...)
		return stdout.String(), nil
	})

	s.Name = cfg.Task.Label
	s.Timeout = cfg.Task.GetTimeout()
	s.Log = log

	if cfg.Task.Retry > 1 {
		s.Retry = retry.StopAfterAttempt(uint64(cfg.Task.Retry))
	}

	if cfg.Cache.Size > 0 {
		cache, err := lrucache.New(cfg.Cache.Size)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		s.Cache = cache
	}

	s.StartupHooks = hookCmds(cfg, executor, log, "startup", cfg.Hooks.Startup)
	s.CompletionHooks = hookCmds(cfg, executor, log, "completion", cfg.Hooks.Completion)
	s.ExceptionHooks = hookCmds(cfg, executor, log, "exception", cfg.Hooks.Exception)
	s.TimeoutHooks = hookCmds(cfg, executor, log, "timeout", cfg.Hooks.Timeout)
	s.CancellationHooks = hookCmds(cfg, executor, log, "cancellation", cfg.Hooks.Cancellation)
	s.RestartHooks = hookCmds(cfg, executor, log, "restart", cfg.Hooks.Restart)

	return s, nil
}

// hookCmds converts each configured hook command into a Hook which runs it and
// logs the outcome. Hook commands inherit the task's working directory and
// environment but never its timeout: the supervisor shields hook dispatch.
func hookCmds(cfg Config, executor cage_exec.Executor, log *zap.Logger, event string, cmds []string) []sitter.Hook {
	hooks := make([]sitter.Hook, 0, len(cmds))

	for _, cmd := range cmds {
		cmd := cmd
		hooks = append(hooks, func(ctx context.Context) error {
			stages, err := cage_shell.Parse(cmd)
			if err != nil {
				return errors.Wrapf(err, "[task: %s]: failed to parse %s hook [%s]", cfg.Task.Label, event, cmd)
			}

			sit, err := sitter.Current(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			opt := cage_exec.Option{
				Dir: cfg.Task.Dir,
				Env: append(
					append([]string{}, cfg.Task.Env...),
					"SITTER_ID="+sit.ID.String(),
					"SITTER_NAME="+sit.Name,
					"SITTER_STATE="+sit.State().String(),
				),
			}

			_, stderr, err := executor.Buffered(ctx, opt, stages...)
			if err != nil {
				var detail string
				if stderr != nil {
					detail = stderr.String()
				}
				return errors.Wrapf(err, "[task: %s]: %s hook [%s] failed: %s", cfg.Task.Label, event, cmd, detail)
			}

			log.Debug(
				"hook finished",
				cage_zap.Tag("cli"),
				zap.String("task", cfg.Task.Label),
				zap.String("event", event),
				zap.String("cmd", cmd),
			)
			return nil
		})
	}

	return hooks
}
