// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Reporting results.

package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/ponymath/mtxbench/internal/stats"
	"rsc.io/markdown"
)

// A reporter writes results to files as they arrive.
type reporter struct {
	rawFile string         // path to raw benchmark output file
	rawOut  io.WriteCloser // raw benchmark output, in Go benchmark format
}

// start records the start time and, with -raw, creates the
// raw output file and writes its configuration header.
func (r *reporter) start(l *Lab) error {
	l.started = l.now()
	if !l.Raw {
		return nil
	}

	// Choose output file, avoiding existing files.
	date := l.started.Format("2006-01-02")
	var rawFile string
	for i := 0; ; i++ {
		suffix := ""
		if i > 0 {
			suffix = fmt.Sprintf(".%d", i)
		}
		rawFile = "mtxbench." + date + suffix + ".txt"
		if _, err := l.fs.Stat(rawFile); err != nil {
			break
		}
	}
	f, err := l.fs.Create(rawFile)
	if err != nil {
		return err
	}
	r.rawFile = rawFile
	r.rawOut = f
	l.log.Printf("writing laps to %s", rawFile)

	var buf bytes.Buffer
	for _, kv := range l.config() {
		fmt.Fprintf(&buf, "%s: %s\n", kv[0], kv[1])
	}
	buf.WriteString("\n")
	_, err = r.rawOut.Write(buf.Bytes())
	return err
}

// lap appends a successful lap to the raw output.
func (r *reporter) lap(l *Lab, lp lap, gflops float64) {
	if r.rawOut == nil {
		return
	}
	_, err := fmt.Fprintf(r.rawOut, "%s\t%8d\t%12d ns/op\t%8s GFLOPS\n",
		l.benchName(), 1, lp.d.Nanoseconds(), stats.FormatRate(gflops))
	if err != nil {
		l.log.Print(err)
	}
}

func (r *reporter) close(l *Lab) {
	if r.rawOut == nil {
		return
	}
	if err := r.rawOut.Close(); err != nil {
		l.log.Print(err)
	}
	r.rawOut = nil
}

// benchName returns the benchmark name used in the raw output,
// like BenchmarkCmatrix/n=1000.
func (l *Lab) benchName() string {
	name := []rune(l.prof.Name)
	for i, c := range name {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			name[i] = '_'
		}
	}
	if len(name) > 0 {
		name[0] = unicode.ToUpper(name[0])
	}
	return fmt.Sprintf("Benchmark%s/n=%d", string(name), l.prof.Size)
}

// config returns the key-value pairs describing the benchmark,
// in the order they are reported.
func (l *Lab) config() [][2]string {
	kv := [][2]string{
		{"profile", l.prof.Name},
		{"command", strings.Join(l.cmd, " ")},
		{"size", fmt.Sprintf("%d (%.4f Gflop per run)", l.prof.Size, stats.GALL(l.prof.Size))},
		{"clock", l.prof.Clock},
	}
	if l.host.goos != "" {
		kv = append(kv, [2]string{"goos", l.host.goos})
	}
	if l.host.goarch != "" {
		kv = append(kv, [2]string{"goarch", l.host.goarch})
	}
	if l.host.cpu > 0 {
		kv = append(kv, [2]string{"cpus", fmt.Sprint(l.host.cpu)})
	}
	if l.host.commit != "" {
		kv = append(kv, [2]string{"commit", l.host.commit})
	}
	kv = append(kv, [2]string{"date", l.started.Format(time.RFC3339)})
	return kv
}

// writeReports writes the -md and -html reports, if requested.
func (l *Lab) writeReports() error {
	if l.Markdown == "" && l.HTML == "" {
		return nil
	}
	md := l.markdown()
	if l.Markdown != "" {
		if err := l.fs.WriteFile(l.Markdown, []byte(md), 0666); err != nil {
			return err
		}
	}
	if l.HTML != "" {
		if err := l.fs.WriteFile(l.HTML, []byte(toHTML(md)), 0666); err != nil {
			return err
		}
	}
	return nil
}

// markdown returns the Markdown report for a completed run.
func (l *Lab) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# mtxbench %s\n\n", l.prof.Name)
	for _, kv := range l.config() {
		fmt.Fprintf(&b, "- %s: `%s`\n", kv[0], kv[1])
	}

	g := stats.GALL(l.prof.Size)
	b.WriteString("\n## Laps\n\n")
	b.WriteString("| lap | status | ms | GFLOPS |\n")
	b.WriteString("|---:|---:|---:|---:|\n")
	for _, lp := range l.laps {
		if lp.status != 0 {
			fmt.Fprintf(&b, "| - | %d | %d | killed |\n", lp.status, lp.ms)
			continue
		}
		fmt.Fprintf(&b, "| %d | 0 | %d | %s |\n", lp.n, lp.ms, stats.FormatRate(stats.Rate(g, lp.ms)))
	}

	s, t := l.summary, l.throughput
	b.WriteString("\n## Summary\n\n")
	b.WriteString("| | min | av | max |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| ms | %d | %d | %d |\n", s.Min, s.Avg, s.Max)
	fmt.Fprintf(&b, "| GFLOPS | %s | %s | %s |\n", stats.FormatRate(t.Min), stats.FormatRate(t.Avg), stats.FormatRate(t.Max))
	fmt.Fprintf(&b, "\nStandard deviation %.2f ms over %d runs; %d failed.\n", s.StdDev, s.N, l.failures)
	return b.String()
}

// toHTML renders a Markdown report as an HTML page.
func toHTML(md string) string {
	p := &markdown.Parser{
		HeadingID: true,
		Table:     true,
	}
	doc := p.Parse(md)
	return "<!DOCTYPE html>\n<meta charset=\"utf-8\">\n<title>mtxbench</title>\n" + markdown.ToHTML(doc)
}
