// Copyright (C) 2019 The CodeActual Go Environment Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package exec

import (
	"bytes"
	"context"
	"os"
	std_exec "os/exec"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Option adjusts how a pipeline runs.
type Option struct {
	// Dir is the working directory of every stage. Empty means the process default.
	Dir string

	// Env holds "KEY=VALUE" pairs appended to the current environment.
	Env []string
}

// Executor supports exec.Cmd mocking for tests.
type Executor interface {
	// Buffered runs the stages as a pipeline, each stage's stdout feeding the next
	// stage's stdin, and returns the final stage's stdout plus all stages' stderr.
	Buffered(ctx context.Context, opt Option, stages ...[]string) (stdout, stderr *bytes.Buffer, err error)
}

type CommonExecutor struct{}

var _ Executor = (*CommonExecutor)(nil)

func (CommonExecutor) Buffered(ctx context.Context, opt Option, stages ...[]string) (*bytes.Buffer, *bytes.Buffer, error) {
	if len(stages) == 0 {
		return nil, nil, errors.New("no command to run")
	}

	var stdout, stderr bytes.Buffer

	cmds := make([]*std_exec.Cmd, len(stages))
	for n, args := range stages {
		if len(args) == 0 {
			return nil, nil, errors.Errorf("empty pipeline stage at position %d", n)
		}

		cmd := std_exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = opt.Dir
		cmd.Stderr = &stderr
		if len(opt.Env) > 0 {
			cmd.Env = append(os.Environ(), opt.Env...)
		}

		if n > 0 {
			pipe, err := cmds[n-1].StdoutPipe()
			if err != nil {
				return nil, nil, errors.Wrapf(err, "failed to pipe [%s] into [%s]", stages[n-1][0], args[0])
			}
			cmd.Stdin = pipe
		}

		cmds[n] = cmd
	}
	cmds[len(cmds)-1].Stdout = &stdout

	for n, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			return &stdout, &stderr, errors.Wrapf(err, "failed to start [%s]", stages[n][0])
		}
	}

	g := new(errgroup.Group)
	for _, cmd := range cmds {
		cmd := cmd
		g.Go(cmd.Wait)
	}
	if err := g.Wait(); err != nil {
		return &stdout, &stderr, errors.WithStack(err)
	}

	return &stdout, &stderr, nil
}

// CmdToString returns a loggable rendering of one pipeline stage.
func CmdToString(args []string) string {
	return strings.Join(args, " ")
}
