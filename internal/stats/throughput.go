// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"
	"strconv"
)

// GALL returns the work of one N×N by N×N matrix multiplication
// in units of 2³⁰ floating-point operations: 2·N³ / 1024³.
func GALL(n int) float64 {
	f := float64(n)
	return 2 * f * f * f / (1024 * 1024 * 1024)
}

// Rate returns the throughput of gall units of work done in ms milliseconds,
// rounded to two decimal places. A zero time reports +Inf.
func Rate(gall float64, ms int64) float64 {
	if ms <= 0 {
		return math.Inf(1)
	}
	return Round2(1000 * gall / float64(ms))
}

// Round2 rounds x to two decimal places, halves to even.
func Round2(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	return math.RoundToEven(x*100) / 100
}

// A Throughput is a GFLOPS triple derived from a Summary.
// Min comes from the slowest run and Max from the fastest.
type Throughput struct {
	Min float64
	Avg float64
	Max float64
}

// Throughput converts s to GFLOPS for an N×N problem.
func (s Summary) Throughput(n int) Throughput {
	g := GALL(n)
	return Throughput{
		Min: Rate(g, s.Max),
		Avg: Rate(g, s.Avg),
		Max: Rate(g, s.Min),
	}
}

func (t Throughput) String() string {
	return fmt.Sprintf("min %s GFLOPS\tav %s GFLOPS\tmax %s GFLOPS", FormatRate(t.Min), FormatRate(t.Avg), FormatRate(t.Max))
}

// FormatRate formats a rate with the fewest digits that represent it,
// so 18.6 prints as "18.6" and 18 as "18.0".
func FormatRate(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !math.IsInf(x, 0) && !math.IsNaN(x) && x == math.Trunc(x) {
		s += ".0"
	}
	return s
}
