// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats folds benchmark lap times into summary statistics
// and derives matrix-multiplication throughput from them.
//
// Times are whole milliseconds. Rounding follows round-half-to-even,
// so an average of 110.5 ms reports as 110 ms.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// An Aggregator accumulates the times of successful runs
// until it has seen the number of runs it wants.
// Failed runs are never passed to an Aggregator.
type Aggregator struct {
	want  int
	n     int
	sum   int64
	min   int64
	max   int64
	times []float64 // for StdDev
}

// New returns an Aggregator that wants r successful runs.
// It panics if r < 1.
func New(r int) *Aggregator {
	if r < 1 {
		panic(fmt.Sprintf("stats.New: invalid repeat count %d", r))
	}
	return &Aggregator{want: r}
}

// Add records a successful run that took ms milliseconds
// and returns the 1-based lap number it was counted as.
// A negative ms is recorded as 0.
// Runs added after Done reports true are ignored and return 0.
func (a *Aggregator) Add(ms int64) int {
	if a.Done() {
		return 0
	}
	if ms < 0 {
		ms = 0
	}
	a.n++
	a.sum += ms
	// First success sets both ends; there is no sentinel.
	if a.n == 1 || ms < a.min {
		a.min = ms
	}
	if a.n == 1 || ms > a.max {
		a.max = ms
	}
	a.times = append(a.times, float64(ms))
	return a.n
}

// Done reports whether the wanted number of runs has been recorded.
func (a *Aggregator) Done() bool { return a.n >= a.want }

// Count returns the number of runs recorded so far.
func (a *Aggregator) Count() int { return a.n }

// Want returns the number of runs the Aggregator is waiting for.
func (a *Aggregator) Want() int { return a.want }

// Summary returns the statistics of the runs recorded so far.
// Avg is only meaningful once Done reports true, since it always
// divides by the wanted count.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		N:   a.n,
		Sum: a.sum,
		Min: a.min,
		Max: a.max,
		Avg: int64(math.RoundToEven(float64(a.sum) / float64(a.want))),
	}
	if len(a.times) > 1 {
		_, s.StdDev = stat.MeanStdDev(a.times, nil)
	}
	return s
}

// A Summary is the aggregate of a benchmark's successful runs.
type Summary struct {
	N      int     // successful runs
	Sum    int64   // total ms
	Min    int64   // fastest run, ms
	Avg    int64   // round(Sum/R), ms
	Max    int64   // slowest run, ms
	StdDev float64 // sample standard deviation, ms
}

func (s Summary) String() string {
	return fmt.Sprintf("min %d ms\tav %d ms\tmax %d ms", s.Min, s.Avg, s.Max)
}

// An Outcome is a single run as seen by Fold.
type Outcome struct {
	Status int   // exit status; 0 is success
	MS     int64 // elapsed milliseconds
}

// Fold aggregates the first r zero-status outcomes in outs,
// skipping every outcome with a non-zero status.
// It returns an error if outs holds fewer than r successes.
func Fold(outs []Outcome, r int) (Summary, error) {
	if r < 1 {
		return Summary{}, fmt.Errorf("invalid repeat count %d", r)
	}
	a := New(r)
	for _, o := range outs {
		if o.Status != 0 {
			continue
		}
		if a.Add(o.MS); a.Done() {
			return a.Summary(), nil
		}
	}
	return a.Summary(), fmt.Errorf("only %d of %d runs succeeded", a.Count(), r)
}
