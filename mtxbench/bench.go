// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Running benchmarks.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ponymath/mtxbench/internal/stats"
	"github.com/sony/gobreaker"
)

// errFailed marks a run that exited with a non-zero status.
var errFailed = errors.New("non-zero exit status")

// breaker returns the circuit breaker that ends the retry loop.
// It opens after l.MaxFail consecutive failed runs,
// or never if l.MaxFail is 0.
// The loop checks its state after reporting each failure.
func (l *Lab) breaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: strings.Join(l.cmd, " "),
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return l.MaxFail > 0 && c.ConsecutiveFailures >= uint32(l.MaxFail)
		},
	})
}

// runAll runs the command until it has succeeded l.prof.Reps times,
// printing a line for each run.
// A failed run is reported and retried; it does not count
// toward the repetitions.
func (l *Lab) runAll(ctx context.Context) error {
	if err := l.report.start(l); err != nil {
		return err
	}

	cb := l.breaker()
	agg := stats.New(l.prof.Reps)
	g := stats.GALL(l.prof.Size)
	cmdline := strings.Join(l.cmd, " ")
	for !agg.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.pretty && l.Quiet {
			fmt.Fprintf(l.stdout, "#%d lap: ", agg.Count()+1)
		}
		stop := l.startTimer()
		var res result
		var runErr error
		_, err := cb.Execute(func() (any, error) {
			res, runErr = l.exec.measure(ctx, l.Quiet, l.cmd...)
			if runErr != nil {
				return nil, runErr
			}
			if res.status != 0 {
				return nil, errFailed
			}
			return nil, nil
		})
		stop()
		l.clearLine()

		if runErr != nil {
			return runErr
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			return l.aborted()
		}

		d := res.elapsed(l.prof.Clock)
		ms := millis(d)
		if res.status != 0 {
			l.failures++
			l.laps = append(l.laps, lap{status: res.status, ms: ms, d: d})
			if l.pretty {
				fmt.Fprint(l.stdout, "\x1b[1;31mkilled\x1b[0m\n")
			} else {
				fmt.Fprintln(l.stdout, "killed")
			}
			l.log.Printf("%s: exit status %d after %d ms", cmdline, res.status, ms)
			if cb.State() == gobreaker.StateOpen {
				l.log.Printf("%s: giving up after %d failed runs in a row", cb.Name(), l.MaxFail)
				return l.aborted()
			}
			continue
		}

		n := agg.Add(ms)
		lp := lap{n: n, ms: ms, d: d}
		l.laps = append(l.laps, lp)
		fmt.Fprintf(l.stdout, "#%d lap: %d ms elapsed\n", n, ms)
		l.report.lap(l, lp, stats.Rate(g, ms))
	}

	l.summary = agg.Summary()
	l.throughput = l.summary.Throughput(l.prof.Size)
	return nil
}

func (l *Lab) aborted() error {
	return fmt.Errorf("benchmark aborted after %d consecutive failures", l.MaxFail)
}
