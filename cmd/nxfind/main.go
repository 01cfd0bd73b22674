// Command nxfind runs the `find` stage: blob detection and merging
// (spec.md §4.6 "find", §4.5).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"

	"github.com/nxreduce/nxreduce/cmd/internal/bind"
	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
)

func main() {
	fs := flag.NewFlagSet("nxfind", flag.ExitOnError)
	first := fs.Int("first", 0, "first frame (inclusive)")
	last := fs.Int("last", -1, "last frame (exclusive); -1 means the full scan")
	threshold := fs.Float64("threshold", 0, "blob threshold; 0 means maximum/10 from nxmax")
	c := cliutil.Parse(fs, " [-first n] [-last n] [-threshold v]")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxfind", err)
	}

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		l := *last
		if l < 0 {
			if r.Raw != nil {
				frames, _, _ := r.Raw.Shape()
				l = frames
			}
		}
		if err := r.Find(ctx, *first, l, *threshold, nil, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxfind[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
