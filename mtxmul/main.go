// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Mtxmul multiplies two N×N matrices and exits.
// It is a self-contained workload for mtxbench.
//
// Usage:
//
//	mtxmul [-n N] [-threads T] [-v]
//
// The -n flag sets the matrix dimension (default 1000).
// The -threads flag splits the work across T goroutines;
// the default of 0 means one per CPU.
// The -v flag prints the dimension, thread count and a checksum.
//
// For compatibility with the flag strings used for the Pony runtime,
// mtxmul also accepts --ponyminthreads (as a synonym for -threads),
// --ponysuspendthreshold, --ponynoyield, --ponynoblock and --ponypin;
// all but the first are ignored.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/ponymath/mtxbench/internal/mtx"
)

type config struct {
	n       int
	threads int
	verbose bool
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: mtxmul [-n N] [-threads T] [-v]\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("mtxmul: ")
	log.SetFlags(0)

	flags := flag.NewFlagSet("mtxmul", flag.ExitOnError)
	flags.Usage = usage
	cfg, err := parse(flags, os.Args[1:])
	if err != nil {
		log.Print(err)
		usage()
	}
	run(cfg, os.Stdout)
}

func parse(flags *flag.FlagSet, args []string) (*config, error) {
	cfg := new(config)
	flags.IntVar(&cfg.n, "n", 1000, "multiply `N`×N matrices")
	flags.IntVar(&cfg.threads, "threads", 0, "use `T` goroutines (0 means one per CPU)")
	flags.IntVar(&cfg.threads, "ponyminthreads", 0, "same as -threads")
	flags.BoolVar(&cfg.verbose, "v", false, "print a checksum of the result")
	flags.Int("ponysuspendthreshold", 0, "ignored")
	flags.Bool("ponynoyield", false, "ignored")
	flags.Bool("ponynoblock", false, "ignored")
	flags.Bool("ponypin", false, "ignored")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() != 0 {
		return nil, fmt.Errorf("unexpected arguments: %q", flags.Args())
	}
	if cfg.n < 1 {
		return nil, fmt.Errorf("invalid -n=%d", cfg.n)
	}
	if cfg.threads <= 0 {
		cfg.threads = runtime.NumCPU()
	}
	return cfg, nil
}

func run(cfg *config, w io.Writer) float64 {
	n := cfg.n
	a := mtx.Fill(n, n, 1)
	bt := mtx.Fill(n, n, 2)
	c := mtx.MulPar(a, bt, n, n, n, cfg.threads)
	sum := mtx.Sum(c)
	if cfg.verbose {
		fmt.Fprintf(w, "n=%d threads=%d checksum=%.6f\n", n, cfg.threads, sum)
	}
	return sum
}
