// Copyright (C) 2026 The sitter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sitter

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	cage_zap "github.com/codeactual/sitter/internal/cage/log/zap"
)

// Command is a lifecycle order the signal demultiplexer derives from an OS signal.
type Command int

const (
	// CommandCancel ends the invocation without a result. SIGTERM, SIGINT, and
	// SIGKILL map to it.
	CommandCancel Command = iota

	// CommandRestart unwinds the computation and relaunches it. SIGHUP maps to it.
	CommandRestart
)

func (c Command) String() string {
	switch c {
	case CommandCancel:
		return "cancel"
	case CommandRestart:
		return "restart"
	}
	return "unknown"
}

// Notify returns a channel fed by the process signal dispositions the demultiplexer
// understands, suitable for Sitter.Signals, and a stop function which releases the
// registration.
//
// SIGKILL is absent: the demultiplexer maps it to CommandCancel when it appears on
// an injected stream, but a process cannot catch it, so no handler is registered.
func Notify() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)
	return ch, func() { signal.Stop(ch) }
}

// demux turns the signal stream into Commands for the Supervisor. It runs on its
// own goroutine for the invocation's lifetime and exits when ctx is done.
type demux struct {
	signals  <-chan os.Signal
	commands chan<- Command
	log      *zap.Logger
}

func (d *demux) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-d.signals:
			if !ok {
				return
			}

			switch sig {
			case syscall.SIGTERM, syscall.SIGINT, syscall.SIGKILL:
				if !d.dispatch(ctx, sig, CommandCancel) {
					return
				}
			case syscall.SIGHUP:
				if !d.dispatch(ctx, sig, CommandRestart) {
					return
				}
			case syscall.SIGUSR1:
				cmd, sig, forward, alive := d.pause(ctx)
				if !alive {
					return
				}
				if forward && !d.dispatch(ctx, sig, cmd) {
					return
				}
			default:
				// SIGUSR2 outside a pause, and anything unrecognized.
				d.log.Debug("ignored signal", cage_zap.Tag("signal"), zap.String("signal", sig.String()))
			}
		}
	}
}

// pause blocks on the signal stream until the invocation is unpaused. While paused,
// no commands are dispatched, so a restart or cancel requested mid-pause is
// delivered only after the pause exits. Further SIGUSR1s are absorbed rather than
// re-entering, SIGUSR2 resumes, SIGHUP resumes and carries a restart out of the
// loop, and the cancel family resumes and carries a cancel.
func (d *demux) pause(ctx context.Context) (cmd Command, sig os.Signal, forward, alive bool) {
	d.log.Info("paused", cage_zap.Tag("signal"))

	for {
		select {
		case <-ctx.Done():
			return 0, nil, false, false
		case sig, ok := <-d.signals:
			if !ok {
				return 0, nil, false, false
			}

			switch sig {
			case syscall.SIGUSR1:
				d.log.Debug("already paused", cage_zap.Tag("signal"))
			case syscall.SIGUSR2:
				d.log.Info("unpaused", cage_zap.Tag("signal"))
				return 0, nil, false, true
			case syscall.SIGHUP:
				d.log.Info("unpaused", cage_zap.Tag("signal"), zap.String("then", CommandRestart.String()))
				return CommandRestart, sig, true, true
			case syscall.SIGTERM, syscall.SIGINT, syscall.SIGKILL:
				d.log.Info("unpaused", cage_zap.Tag("signal"), zap.String("then", CommandCancel.String()))
				return CommandCancel, sig, true, true
			}
		}
	}
}

func (d *demux) dispatch(ctx context.Context, sig os.Signal, cmd Command) bool {
	d.log.Info(
		"signal command",
		cage_zap.Tag("signal"),
		zap.String("signal", sig.String()),
		zap.String("command", cmd.String()),
	)

	select {
	case d.commands <- cmd:
		return true
	case <-ctx.Done():
		return false
	}
}
