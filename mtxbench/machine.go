// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Describing the benchmark host.

package main

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// A hostInfo describes the system running the benchmark.
// Fields that could not be determined are left empty.
type hostInfo struct {
	goos   string // from uname
	goarch string // from uname -m
	cpu    int    // number of CPUs (cores)
	commit string // git commit of the current directory
}

func (h hostInfo) String() string {
	s := cmp.Or(h.goos, "unknown") + "/" + cmp.Or(h.goarch, "unknown")
	if h.cpu > 0 {
		s += fmt.Sprintf(", %d CPUs", h.cpu)
	}
	return s
}

// scanHost fills in l.host.
// Nothing about the host is essential to the benchmark,
// so scanHost logs problems and carries on.
func (l *Lab) scanHost() error {
	if err := l.scanArch(); err != nil {
		l.log.Print(err)
	}
	if err := l.scanNumCPU(); err != nil {
		l.log.Print(err)
	}
	// Not being in a git checkout is normal.
	if out, err := l.runLocal(runTrim, "git", "rev-parse", "--short", "HEAD"); err == nil {
		l.host.commit = out
	}
	return nil
}

// scanArch determines the GOOS and GOARCH for the host.
func (l *Lab) scanArch() error {
	out, err := l.runLocal(runTrim, "uname")
	if err != nil {
		return err
	}
	var ok bool
	if l.host.goos, ok = goosByUname[out]; !ok {
		return fmt.Errorf("unknown uname: %s", out)
	}
	out, err = l.runLocal(runTrim, "uname", "-m")
	if err != nil {
		return err
	}
	if l.host.goarch, ok = goarchByUname[out]; !ok {
		return fmt.Errorf("unknown uname -m: %s", out)
	}
	return nil
}

// scanNumCPU determines the number of CPUs for the host.
func (l *Lab) scanNumCPU() error {
	var cmd []string
	switch l.host.goos {
	default:
		return fmt.Errorf("cannot count CPUs on GOOS=%s", l.host.goos)
	case "linux":
		cmd = []string{"nproc"}
	case "darwin", "freebsd", "openbsd", "netbsd", "dragonfly":
		cmd = []string{"sysctl", "hw.ncpu"}
	}
	out, err := l.runLocal(0, cmd...)
	if err != nil {
		return err
	}

	// Use last space-separated field, to skip leading chatter
	// like "hw.ncpu:".
	f := strings.Fields(out)
	if len(f) == 0 {
		return fmt.Errorf("'%s': no output", strings.Join(cmd, " "))
	}
	n, err := strconv.Atoi(f[len(f)-1])
	if err != nil {
		return fmt.Errorf("'%s': unexpected output:\n%s", strings.Join(cmd, " "), out)
	}
	l.host.cpu = n
	return nil
}

// goosByUname maps "uname" output to GOOS.
var goosByUname = map[string]string{
	"Linux":     "linux",
	"Darwin":    "darwin",
	"FreeBSD":   "freebsd",
	"OpenBSD":   "openbsd",
	"NetBSD":    "netbsd",
	"DragonFly": "dragonfly",
}

// goarchByUname maps "uname -m" output to GOARCH.
var goarchByUname = map[string]string{
	"x86_64":  "amd64",
	"amd64":   "amd64",
	"arm64":   "arm64",
	"aarch64": "arm64",
	"arm":     "arm",
	"i386":    "386",
	"i686":    "386",
	"ppc64le": "ppc64le",
	"riscv64": "riscv64",
	"s390x":   "s390x",
}
