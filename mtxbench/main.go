// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tebeka/atexit"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: mtxbench [options]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("mtxbench: ")
	log.SetFlags(0)

	var chdir string
	var list bool
	var lab Lab
	lab.Init(flag.CommandLine)
	flag.StringVar(&chdir, "C", "", "change to `dir` immediately at startup")
	flag.BoolVar(&list, "list", false, "list the known profiles and exit")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		usage()
	}
	if chdir != "" {
		if err := os.Chdir(chdir); err != nil {
			log.Fatal(err)
		}
	}
	lab.pretty = isPretty(os.Stdout)
	atexit.Register(lab.Close)

	if list {
		if err := lab.List(os.Stdout); err != nil {
			atexit.Fatal(err)
		}
		atexit.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := lab.Run(ctx)
	stop()
	if err != nil {
		atexit.Fatal(err)
	}
	os.Stdout.WriteString(lab.Stats())
	atexit.Exit(0)
}
