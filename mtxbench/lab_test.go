// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rsc.io/rf/diff"
)

// A fakeRun is one scripted outcome of the benchmarked command.
type fakeRun struct {
	status int
	ms     int64 // wall time
	cpu    int64 // cpu time, ms
	err    error
	delay  time.Duration // how long measure blocks
}

func ok(ms int64) fakeRun   { return fakeRun{ms: ms} }
func fail(ms int64) fakeRun { return fakeRun{status: 1, ms: ms} }

// A fakeExec replays scripted runs and canned command output.
type fakeExec struct {
	outputs map[string]string // command line -> output
	runs    []fakeRun
	cmds    [][]string // commands passed to measure
}

func (f *fakeExec) run(mode runMode, cmd ...string) (string, error) {
	line := strings.Join(cmd, " ")
	out, ok := f.outputs[line]
	if !ok {
		return "", fmt.Errorf("%s: executable file not found", line)
	}
	return out, nil
}

func (f *fakeExec) measure(ctx context.Context, quiet bool, cmd ...string) (result, error) {
	if err := ctx.Err(); err != nil {
		return result{}, err
	}
	if len(f.cmds) >= len(f.runs) {
		return result{}, errors.New("fake: out of runs")
	}
	r := f.runs[len(f.cmds)]
	f.cmds = append(f.cmds, cmd)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return result{}, ctx.Err()
		}
	}
	if r.err != nil {
		return result{}, r.err
	}
	return result{
		status: r.status,
		wall:   time.Duration(r.ms) * time.Millisecond,
		cpu:    time.Duration(r.cpu) * time.Millisecond,
	}, nil
}

// A memFS is an in-memory fileSystem.
type memFS struct {
	files fstest.MapFS
}

type memFile struct {
	f *fstest.MapFile
}

func (m memFile) Write(b []byte) (int, error) {
	m.f.Data = append(m.f.Data, b...)
	return len(b), nil
}

func (memFile) Close() error { return nil }

func (m *memFS) Create(name string) (io.WriteCloser, error) {
	f := &fstest.MapFile{Mode: 0666}
	m.files[name] = f
	return memFile{f}, nil
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(m.files, name)
}

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(m.files, name)
}

func (m *memFS) WriteFile(name string, data []byte, mode fs.FileMode) error {
	m.files[name] = &fstest.MapFile{Data: data, Mode: mode}
	return nil
}

type testLab struct {
	*Lab
	exec *fakeExec
	fs   *memFS
	out  bytes.Buffer
	logs bytes.Buffer
}

var testTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestLab(runs ...fakeRun) *testLab {
	t := &testLab{
		Lab: new(Lab),
		exec: &fakeExec{
			outputs: map[string]string{
				"uname":                      "Linux\n",
				"uname -m":                   "x86_64\n",
				"nproc":                      "8\n",
				"git rev-parse --short HEAD": "abc1234\n",
			},
			runs: runs,
		},
		fs: &memFS{files: fstest.MapFS{}},
	}
	t.Init(nil)
	t.Lab.exec = t.exec
	t.Lab.fs = t.fs
	t.stdout = &t.out
	t.log = log.New(&t.logs, "", 0)
	t.now = func() time.Time { return testTime }
	return t
}

func checkOutput(t *testing.T, name, have, want string) {
	t.Helper()
	if have == want {
		return
	}
	d, err := diff.Diff("want", []byte(want), "have", []byte(have))
	if err != nil {
		t.Fatalf("%s: diff: %v", name, err)
	}
	t.Errorf("%s:\n%s", name, d)
}

func TestRun(t *testing.T) {
	l := newTestLab(ok(100), fail(30), ok(120), ok(110), ok(105), ok(115))
	require.NoError(t, l.Run(context.Background()))

	checkOutput(t, "stdout", l.out.String(), `#1 lap: 100 ms elapsed
killed
#2 lap: 120 ms elapsed
#3 lap: 110 ms elapsed
#4 lap: 105 ms elapsed
#5 lap: 115 ms elapsed
`)
	checkOutput(t, "stats", l.Stats(),
		"min 100 ms\tav 110 ms\tmax 120 ms\n"+
			"min 15.52 GFLOPS\tav 16.93 GFLOPS\tmax 18.63 GFLOPS\n")

	assert.Equal(t, int64(550), l.summary.Sum)
	assert.Equal(t, 1, l.failures)
	assert.Len(t, l.laps, 6)
	require.Len(t, l.exec.cmds, 6)
	assert.Equal(t, []string{"./cmatrix", "--ponyminthreads", "2", "--ponysuspendthreshold", "1000",
		"--ponynoyield", "--ponynoblock", "--ponypin"}, l.exec.cmds[0])
	assert.Contains(t, l.logs.String(), "exit status 1 after 30 ms")
}

func TestRunRetryThenSucceed(t *testing.T) {
	l := newTestLab(fail(40), ok(100))
	l.Reps = 1
	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, "killed\n#1 lap: 100 ms elapsed\n", l.out.String())
	assert.Equal(t, int64(100), l.summary.Min)
	assert.Equal(t, int64(100), l.summary.Avg)
	assert.Equal(t, int64(100), l.summary.Max)
}

func TestRunAbort(t *testing.T) {
	var runs []fakeRun
	for range 10 {
		runs = append(runs, fail(1))
	}
	l := newTestLab(runs...)
	l.MaxFail = 3
	err := l.Run(context.Background())
	assert.EqualError(t, err, "benchmark aborted after 3 consecutive failures")
	assert.Len(t, l.exec.cmds, 3)
	assert.Equal(t, "killed\nkilled\nkilled\n", l.out.String())

	// The last failure is reported before giving up.
	cmdline := strings.Join(l.cmd, " ")
	logs := strings.Split(strings.TrimSuffix(l.logs.String(), "\n"), "\n")
	require.NotEmpty(t, logs)
	assert.Equal(t, cmdline+": giving up after 3 failed runs in a row", logs[len(logs)-1])
	assert.Equal(t, cmdline+": exit status 1 after 1 ms", logs[len(logs)-2])
}

func TestRunSuccessResetsFailures(t *testing.T) {
	l := newTestLab(fail(1), ok(10), fail(1), ok(20), fail(1), ok(30))
	l.MaxFail = 2
	l.Reps = 3
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 3, l.failures)
	assert.Equal(t, int64(20), l.summary.Avg)
}

func TestRunUnbounded(t *testing.T) {
	var runs []fakeRun
	for range 50 {
		runs = append(runs, fail(1))
	}
	runs = append(runs, ok(7))
	l := newTestLab(runs...)
	l.MaxFail = 0
	l.Reps = 1
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 50, l.failures)
	assert.Equal(t, int64(7), l.summary.Max)
}

func TestRunStartError(t *testing.T) {
	notFound := errors.New("./cmatrix: no such file or directory")
	l := newTestLab(fakeRun{err: notFound}, ok(1))
	err := l.Run(context.Background())
	assert.ErrorIs(t, err, notFound)
	assert.Len(t, l.exec.cmds, 1, "start errors are not retried")
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newTestLab(ok(1))
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.Empty(t, l.exec.cmds)
}

func TestRunCPUClock(t *testing.T) {
	l := newTestLab(fakeRun{ms: 500, cpu: 100}, fakeRun{ms: 700, cpu: 300})
	l.Clock = "cpu"
	l.Reps = 2
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, "#1 lap: 100 ms elapsed\n#2 lap: 300 ms elapsed\n", l.out.String())
	assert.Equal(t, int64(200), l.summary.Avg)
}

func TestRunOverrides(t *testing.T) {
	l := newTestLab(ok(50))
	l.Cmd = "mtxmul -n 10"
	l.Env = []string{"GOMAXPROCS=2"}
	l.Size = 10
	l.Reps = 1
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []string{"GOMAXPROCS=2", "mtxmul", "-n", "10"}, l.exec.cmds[0])
	assert.Equal(t, 10, l.prof.Size)
}

func TestResolveErrors(t *testing.T) {
	var tests = []struct {
		name string
		set  func(l *Lab)
		err  string
	}{
		{"profile", func(l *Lab) { l.Profile = "nope" }, `unknown profile "nope"`},
		{"reps", func(l *Lab) { l.Reps = 0 }, "invalid repeat count 0"},
		{"negreps", func(l *Lab) { l.Reps = -3 }, "invalid repeat count -3"},
		{"size", func(l *Lab) { l.Size = 0 }, "invalid matrix size 0"},
		{"negsize", func(l *Lab) { l.Size = -5 }, "invalid matrix size -5"},
		{"clock", func(l *Lab) { l.Clock = "sundial" }, `unknown clock "sundial" (want wall or cpu)`},
		{"maxfail", func(l *Lab) { l.MaxFail = -1 }, "invalid -maxfail=-1"},
		{"env", func(l *Lab) { l.Env = []string{"NOEQUALS"} }, `invalid -env setting "NOEQUALS"`},
		{"cmd", func(l *Lab) { l.Cmd = "   " }, "profile cmatrix: missing command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLab()
			tt.set(l.Lab)
			assert.EqualError(t, l.resolve(), tt.err)
		})
	}
}

func TestRepsFlag(t *testing.T) {
	var tests = []struct {
		args []string
		reps int
		err  string
	}{
		{nil, 5, ""},
		{[]string{"-reps=-1"}, 5, ""},
		{[]string{"-reps=2"}, 2, ""},
		{[]string{"-reps=0"}, 0, "invalid repeat count 0"},
		{[]string{"-n=0"}, 0, "invalid matrix size 0"},
	}
	for _, tt := range tests {
		l := newTestLab()
		flags := flag.NewFlagSet("mtxbench", flag.ContinueOnError)
		l.Lab.Init(flags)
		l.Lab.exec = l.exec
		l.Lab.fs = l.fs
		require.NoError(t, flags.Parse(tt.args))
		err := l.resolve()
		if tt.err != "" {
			assert.EqualError(t, err, tt.err, "%v", tt.args)
			continue
		}
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.reps, l.prof.Reps, "%v", tt.args)
	}
}

func TestEnvList(t *testing.T) {
	var tests = []struct {
		in   string
		want []string
	}{
		{"A=1", []string{"A=1"}},
		{"A=1,B=2", []string{"A=1", "B=2"}},
		{"A=1,2,B=3", []string{"A=1,2", "B=3"}},
		{"PATH=/bin,/usr/bin", []string{"PATH=/bin,/usr/bin"}},
		{"X,A=1", []string{"X", "A=1"}},
		{"A=1,=2", []string{"A=1,=2"}},
	}
	for _, tt := range tests {
		var env envList
		require.NoError(t, env.Set(tt.in))
		assert.Equal(t, tt.want, []string(env), "%q", tt.in)
	}

	// A leading word without = is still rejected.
	l := newTestLab()
	var env envList
	require.NoError(t, env.Set("X,A=1"))
	l.Env = env
	assert.EqualError(t, l.resolve(), `invalid -env setting "X"`)
}

func TestScanHost(t *testing.T) {
	l := newTestLab()
	require.NoError(t, l.scanHost())
	assert.Equal(t, "linux/amd64, 8 CPUs", l.host.String())
	assert.Equal(t, "abc1234", l.host.commit)
	assert.Empty(t, l.logs.String())

	// Nothing available: logged, not fatal.
	l = newTestLab()
	l.exec.outputs = nil
	require.NoError(t, l.scanHost())
	assert.Equal(t, "unknown/unknown", l.host.String())
	assert.Empty(t, l.host.commit)
	assert.Contains(t, l.logs.String(), "uname: executable file not found")

	l = newTestLab()
	l.exec.outputs["uname"] = "Darwin\n"
	l.exec.outputs["uname -m"] = "arm64\n"
	l.exec.outputs["sysctl hw.ncpu"] = "hw.ncpu: 10\n"
	require.NoError(t, l.scanHost())
	assert.Equal(t, "darwin/arm64, 10 CPUs", l.host.String())
}

func TestMillis(t *testing.T) {
	assert.Equal(t, int64(1), millis(1499*time.Microsecond))
	assert.Equal(t, int64(2), millis(1500*time.Microsecond))
	assert.Equal(t, int64(0), millis(0))
	assert.Equal(t, 3*time.Second, result{wall: 2 * time.Second, cpu: 3 * time.Second}.elapsed("cpu"))
	assert.Equal(t, 2*time.Second, result{wall: 2 * time.Second, cpu: 3 * time.Second}.elapsed("wall"))
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, stringList("a", []string{"b", "c"}))
	assert.Panics(t, func() { stringList(1) })
}
