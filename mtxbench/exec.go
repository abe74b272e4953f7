// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Running commands.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// A runMode controls the details of running a command.
type runMode int

const (
	_       runMode = 1 << iota
	runTrim         // trim spaces in output
)

// A result is the outcome of one timed run.
type result struct {
	status int           // exit status; -1 if killed by a signal
	wall   time.Duration // monotonic wall-clock time around the run
	cpu    time.Duration // user+system time used by the child
}

// elapsed returns the run's duration on the named clock.
func (r result) elapsed(clock string) time.Duration {
	if clock == "cpu" {
		return r.cpu
	}
	return r.wall
}

// millis rounds d to whole milliseconds.
func millis(d time.Duration) int64 {
	return int64(d.Round(time.Millisecond) / time.Millisecond)
}

// An executor runs commands.
type executor interface {
	// run has the same semantics as runLocal,
	// except that it need not handle runTrim.
	run(mode runMode, cmd ...string) (out string, err error)

	// measure runs cmd once and waits for it to exit.
	// The command's output goes to the driver's stdout and stderr,
	// or nowhere if quiet is set.
	// A non-zero exit status is reported in the result, not as an error;
	// measure only returns an error if the command could not be started
	// or ctx was canceled.
	measure(ctx context.Context, quiet bool, cmd ...string) (result, error)
}

// runLocal runs cmd on the local system according to mode.
// If the command fails, runLocal returns an empty output
// and an error message that contains both stdout and stderr.
// If mode has the runTrim bit set, runLocal trims leading and trailing spaces from the output.
func (l *Lab) runLocal(mode runMode, cmd ...string) (out string, err error) {
	out, err = l.exec.run(mode&^runTrim, cmd...)
	if mode&runTrim != 0 {
		out = strings.TrimSpace(out)
	}
	return out, err
}

// A localExec is an executor that runs commands locally.
// It is replaced in tests to avoid needing to run actual commands.
type localExec struct{}

// command returns the exec.Cmd for cmd, treating leading
// KEY=value words as additions to the environment.
func (*localExec) command(ctx context.Context, cmd []string) (*exec.Cmd, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("missing command")
	}
	orig := cmd
	var env []string
	for len(cmd) > 0 && strings.Contains(cmd[0], "=") {
		if env == nil {
			env = os.Environ()
		}
		env = append(env, cmd[0])
		cmd = cmd[1:]
	}
	if len(cmd) == 0 {
		return nil, fmt.Errorf("command entirely environment: %s", strings.Join(orig, " "))
	}

	c := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	c.Env = env
	return c, nil
}

func (e *localExec) run(mode runMode, cmd ...string) (out string, err error) {
	c, err := e.command(context.Background(), cmd)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("%s: %s\n%s%s", strings.Join(cmd, " "), err, stdout.Bytes(), stderr.Bytes())
	}
	return stdout.String(), nil
}

func (e *localExec) measure(ctx context.Context, quiet bool, cmd ...string) (result, error) {
	c, err := e.command(ctx, cmd)
	if err != nil {
		return result{}, err
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if quiet {
		c.Stdin = nil
		c.Stdout = io.Discard
		c.Stderr = io.Discard
	}

	start := time.Now()
	err = c.Run()
	wall := time.Since(start)

	if ctx.Err() != nil {
		return result{}, ctx.Err()
	}
	if c.ProcessState == nil {
		// Never started.
		return result{}, fmt.Errorf("%s: %w", strings.Join(cmd, " "), err)
	}
	return result{
		status: c.ProcessState.ExitCode(),
		wall:   wall,
		cpu:    c.ProcessState.UserTime() + c.ProcessState.SystemTime(),
	}, nil
}
