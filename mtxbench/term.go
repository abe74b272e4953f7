// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Terminal output.

package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// isPretty reports whether f is a terminal that supports vt100 control codes.
func isPretty(f *os.File) bool {
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// startTimer prints a running m:ss timer at the end of the current line
// and returns a function that stops and erases it.
// It does nothing unless the output is pretty and the benchmarked
// command's own output is discarded.
func (l *Lab) startTimer() func() {
	if !l.pretty || !l.Quiet {
		return func() {}
	}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var now string
		start := time.Now()
		for delta := time.Duration(0); ; delta += time.Second {
			// Delay until delta.
			select {
			case <-time.After(time.Until(start.Add(delta))):
			case <-stop:
				// Clear the timer text.
				l.printEOL(strings.Repeat(" ", len(now)), "")
				return
			}
			now = fmt.Sprintf("%d:%02d", delta/time.Minute, (delta/time.Second)%60)
			l.printEOL(now, "")
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}

// printEOL prints text at the right edge of the terminal
// in the given SGR attributes, leaving the cursor after it.
func (l *Lab) printEOL(text string, attrs string) {
	if !l.pretty {
		fmt.Fprint(l.stdout, text)
		return
	}

	var buf bytes.Buffer
	if attrs != "" {
		fmt.Fprintf(&buf, "\x1b[%sm", attrs)
	}
	// Move to the end of the line, then back up
	// and print text.
	fmt.Fprintf(&buf, "\x1b[999C\x1b[%dD%s", len(text), text)
	if attrs != "" {
		fmt.Fprintf(&buf, "\x1b[0m")
	}
	l.stdout.Write(buf.Bytes())
}

// clearLine erases the current terminal line and returns to its start.
func (l *Lab) clearLine() {
	if l.pretty {
		fmt.Fprint(l.stdout, "\r\x1b[K")
	}
}
