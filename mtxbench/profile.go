// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchmark profiles.

package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// A profile is a named set of benchmark constants.
type profile struct {
	Name  string `yaml:"name"`
	Cmd   string `yaml:"cmd"`   // command line, split on spaces
	Size  int    `yaml:"size"`  // matrix dimension N
	Reps  int    `yaml:"reps"`  // successful runs wanted
	Clock string `yaml:"clock"` // wall or cpu; empty means wall
}

// A profileFile is the layout of a -config file.
type profileFile struct {
	Profiles []profile `yaml:"profiles"`
}

const defaultProfile = "cmatrix"

// builtinProfiles are the constants the benchmark was written with.
var builtinProfiles = []profile{
	{
		Name: "cmatrix",
		Cmd: "./cmatrix --ponyminthreads 2 --ponysuspendthreshold 1000" +
			" --ponynoyield --ponynoblock --ponypin",
		Size:  1000,
		Reps:  5,
		Clock: "wall",
	},
	{
		Name:  "ponymath",
		Cmd:   "./ponymath --ponyminthreads 2",
		Size:  2000,
		Reps:  5,
		Clock: "wall",
	},
	{
		Name:  "mtxmul",
		Cmd:   "mtxmul -n 1000",
		Size:  1000,
		Reps:  5,
		Clock: "wall",
	},
}

// profiles returns the built-in profiles followed by those
// loaded from l.Config. A loaded profile with the name of an
// earlier one overrides the fields it sets.
func (l *Lab) profiles() ([]profile, error) {
	list := append([]profile(nil), builtinProfiles...)
	if l.Config == "" {
		return list, nil
	}
	data, err := l.fs.ReadFile(l.Config)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	loaded, err := parseProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", l.Config, err)
	}
	for _, p := range loaded {
		if old := lookupProfile(list, p.Name); old != nil {
			old.merge(p)
			continue
		}
		list = append(list, p)
	}
	return list, nil
}

func parseProfiles(data []byte) ([]profile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for i, p := range pf.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile #%d has no name", i+1)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
	}
	return pf.Profiles, nil
}

func (p *profile) merge(q profile) {
	if q.Cmd != "" {
		p.Cmd = q.Cmd
	}
	if q.Size != 0 {
		p.Size = q.Size
	}
	if q.Reps != 0 {
		p.Reps = q.Reps
	}
	if q.Clock != "" {
		p.Clock = q.Clock
	}
}

func lookupProfile(list []profile, name string) *profile {
	for i := range list {
		if list[i].Name == name {
			return &list[i]
		}
	}
	return nil
}

// List prints the known profiles to w.
func (l *Lab) List(w io.Writer) error {
	list, err := l.profiles()
	if err != nil {
		return err
	}
	for _, p := range list {
		clock := p.Clock
		if clock == "" {
			clock = "wall"
		}
		fmt.Fprintf(w, "%-10s n=%-5d reps=%-3d clock=%-4s  %s\n", p.Name, p.Size, p.Reps, clock, p.Cmd)
	}
	return nil
}
