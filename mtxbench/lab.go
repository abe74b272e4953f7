// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ponymath/mtxbench/internal/stats"
)

// A Lab holds all the state for a benchmark run.
type Lab struct {
	Profile  string   // -profile
	Config   string   // -config
	Cmd      string   // -cmd
	Env      []string // -env
	Size     int      // -n; fromProfile means unset
	Reps     int      // -reps; fromProfile means unset
	Clock    string   // -clock
	MaxFail  int      // -maxfail
	Quiet    bool     // -q
	Raw      bool     // -raw
	Markdown string   // -md
	HTML     string   // -html

	exec   executor         // replaced for testing
	log    *log.Logger      // replaced for testing
	fs     fileSystem       // replaced for testing
	stdout io.Writer        // replaced for testing
	now    func() time.Time // replaced for testing
	pretty bool             // stdout is a vt100 terminal

	prof    *profile  // resolved profile
	cmd     []string  // command to benchmark
	host    hostInfo  // where the benchmark runs
	started time.Time // start of runAll
	report  *reporter

	laps       []lap
	failures   int
	summary    stats.Summary
	throughput stats.Throughput
}

type fileSystem interface {
	Create(name string) (io.WriteCloser, error)
	ReadFile(name string) ([]byte, error)
	Stat(name string) (fs.FileInfo, error)
	WriteFile(name string, data []byte, mode fs.FileMode) error
}

// fromProfile is the value of Lab.Size and Lab.Reps
// that leaves the profile's setting in place.
const fromProfile = -1

// A lap is a single run of the benchmarked command.
type lap struct {
	n      int           // lap number, 0 for failed runs
	status int           // exit status
	ms     int64         // elapsed milliseconds on the chosen clock
	d      time.Duration // elapsed time on the chosen clock
}

func (l *Lab) Init(flags *flag.FlagSet) {
	*l = Lab{
		Profile: defaultProfile,
		Size:    fromProfile,
		Reps:    fromProfile,
		MaxFail: 10,
		exec:    new(localExec),
		log:     log.Default(),
		fs:      new(localFS),
		stdout:  os.Stdout,
		now:     time.Now,
		report:  new(reporter),
	}
	if flags != nil {
		flags.StringVar(&l.Profile, "profile", l.Profile, "benchmark the profile `name`")
		flags.StringVar(&l.Config, "config", "", "load additional profiles from the YAML `file`")
		flags.StringVar(&l.Cmd, "cmd", "", "benchmark the command `line` instead of the profile's")
		flags.Var((*envList)(&l.Env), "env", "run the command with the KEY=value settings in `list`")
		flags.IntVar(&l.Size, "n", l.Size, "compute throughput for `N`×N matrices; -1 uses the profile's size")
		flags.IntVar(&l.Reps, "reps", l.Reps, "wait for `R` successful runs; -1 uses the profile's count")
		flags.StringVar(&l.Clock, "clock", "", "measure `clock` time: wall or cpu (default from profile)")
		flags.IntVar(&l.MaxFail, "maxfail", l.MaxFail, "abort after `K` consecutive failed runs (0 means never)")
		flags.BoolVar(&l.Quiet, "q", false, "discard the output of the benchmarked command")
		flags.BoolVar(&l.Raw, "raw", false, "write laps in benchmark format to mtxbench.YYYY-MM-DD[.N].txt")
		flags.StringVar(&l.Markdown, "md", "", "write a Markdown report to `file`")
		flags.StringVar(&l.HTML, "html", "", "write an HTML report to `file`")
	}
}

func (l *Lab) Run(ctx context.Context) error {
	steps := []func() error{
		l.resolve,
		l.scanHost,
		func() error { return l.runAll(ctx) },
		l.writeReports,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the two summary lines: times, then throughput.
func (l *Lab) Stats() string {
	return l.summary.String() + "\n" + l.throughput.String() + "\n"
}

// Close closes any output files still open.
func (l *Lab) Close() {
	l.report.close(l)
}

// resolve combines the selected profile with the flag overrides
// and checks the result.
func (l *Lab) resolve() error {
	profiles, err := l.profiles()
	if err != nil {
		return err
	}
	p := lookupProfile(profiles, l.Profile)
	if p == nil {
		return fmt.Errorf("unknown profile %q", l.Profile)
	}
	prof := *p
	if l.Cmd != "" {
		prof.Cmd = l.Cmd
	}
	if l.Size != fromProfile {
		prof.Size = l.Size
	}
	if l.Reps != fromProfile {
		prof.Reps = l.Reps
	}
	if l.Clock != "" {
		prof.Clock = l.Clock
	}
	if prof.Clock == "" {
		prof.Clock = "wall"
	}

	switch {
	case prof.Reps < 1:
		return fmt.Errorf("invalid repeat count %d", prof.Reps)
	case prof.Size < 1:
		return fmt.Errorf("invalid matrix size %d", prof.Size)
	case prof.Clock != "wall" && prof.Clock != "cpu":
		return fmt.Errorf("unknown clock %q (want wall or cpu)", prof.Clock)
	case l.MaxFail < 0:
		return fmt.Errorf("invalid -maxfail=%d", l.MaxFail)
	}
	for _, kv := range l.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return fmt.Errorf("invalid -env setting %q", kv)
		}
	}
	l.cmd = stringList(l.Env, strings.Fields(prof.Cmd))
	if len(l.cmd) == len(l.Env) {
		return fmt.Errorf("profile %s: missing command", prof.Name)
	}
	l.prof = &prof
	return nil
}

type localFS struct{}

func (*localFS) Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*localFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (*localFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (*localFS) WriteFile(name string, data []byte, mode fs.FileMode) error {
	return os.WriteFile(name, data, mode)
}

// stringList flattens its arguments into a single []string.
// Each argument in args must have type string or []string.
func stringList(args ...any) []string {
	var x []string
	for _, arg := range args {
		switch arg := arg.(type) {
		case []string:
			x = append(x, arg...)
		case string:
			x = append(x, arg)
		default:
			panic("stringList: invalid argument of type " + fmt.Sprintf("%T", arg))
		}
	}
	return x
}

// An envList is a comma-separated list of KEY=value settings
// that can be used as a flag.
// A comma starts a new setting only if the text after it
// begins with KEY=, so values may themselves contain commas:
// "A=1,2,B=3" sets A to "1,2" and B to "3".
type envList []string

func (s *envList) String() string {
	return strconv.Quote(strings.Join(*s, ","))
}

func (s *envList) Set(value string) error {
	*s = nil
	for _, f := range strings.Split(value, ",") {
		k, _, ok := strings.Cut(f, "=")
		if len(*s) == 0 || ok && k != "" {
			*s = append(*s, f)
			continue
		}
		(*s)[len(*s)-1] += "," + f
	}
	return nil
}
