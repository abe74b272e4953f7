// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Mtxbench times a matrix multiplication program.
It runs the program until it has succeeded a fixed number of times
and reports the fastest, average and slowest run,
along with the corresponding throughput in GFLOPS.

Usage:

	mtxbench [-profile=cmatrix] [-config=file.yaml] [-cmd=line] \
		[-n=N] [-reps=R] [-clock=wall|cpu] [-maxfail=K] [-env=list] \
		[-q] [-raw] [-md=file] [-html=file] [-C dir] [-list]

Each run prints one line:

	#1 lap: 100 ms elapsed

A run that exits with a non-zero status prints “killed” instead
and is retried; it does not count toward the R runs.
After R successful runs, mtxbench prints the summary:

	min 100 ms	av 110 ms	max 120 ms
	min 15.52 GFLOPS	av 16.93 GFLOPS	max 18.63 GFLOPS

The average is the total time divided by R, rounded half to even.
Throughput treats one run as 2·N³ floating-point operations
(counted in units of 1024³) and is rounded to two decimal places.
The slowest run gives the minimum throughput, and the fastest run the maximum.

# Profiles

The benchmark constants come from a profile, selected with -profile.
The built-in profiles are:

	cmatrix   n=1000 reps=5  ./cmatrix --ponyminthreads 2 --ponysuspendthreshold 1000 --ponynoyield --ponynoblock --ponypin
	ponymath  n=2000 reps=5  ./ponymath --ponyminthreads 2
	mtxmul    n=1000 reps=5  mtxmul -n 1000

The -config flag loads more profiles from a YAML file:

	profiles:
	  - name: big
	    cmd: mtxmul -n 3000 -threads 8
	    size: 3000
	    reps: 3
	    clock: cpu

A profile in the file with the name of a built-in profile
overrides only the fields it sets. The -list flag prints all known profiles.

The -cmd, -n, -reps and -clock flags override the profile's command,
matrix size, repetition count and clock; -n=-1 and -reps=-1,
the defaults, keep the profile's values. The command line is split
at spaces and run directly, not through a shell. Leading KEY=value
words, and the settings given with -env, are added to its environment.
The -env list is separated by commas; a comma followed by text
without a KEY= prefix is part of the preceding value.

# Clocks

The wall clock (the default) measures the monotonic elapsed time
of each run. The cpu clock measures the user and system CPU time
consumed by the command and its waited-for children.

# Failures

By default mtxbench gives up with “benchmark aborted after K consecutive failures”
once 10 runs in a row have failed. The -maxfail flag changes the limit;
-maxfail=0 retries forever. A command that cannot be started at all
is reported as an error immediately.

An interrupt kills the running command and stops mtxbench.

# Output

The benchmarked command's output passes through to mtxbench's own,
unless -q is given. With -q on a terminal, each lap shows a running timer.

The -raw flag writes each successful lap in Go benchmark format
to a file named mtxbench.YYYY-MM-DD[.N].txt, choosing .N
to avoid overwriting existing files, so that results from
several invocations can be compared with benchstat.

The -md and -html flags write a report with the configuration,
every lap (including failed ones) and the summary.
*/
package main
