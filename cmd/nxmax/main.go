// Command nxmax runs the `max` stage: frame-sum, detector-sum, pixel
// mask augmentation, and radial sum (spec.md §4.6 "max").
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
	"github.com/nxreduce/nxreduce/geometry"
)

func main() {
	fs := flag.NewFlagSet("nxmax", flag.ExitOnError)
	first := fs.Int("first", 0, "first frame (inclusive)")
	last := fs.Int("last", -1, "last frame (exclusive); -1 means the full scan")
	c := cliutil.Parse(fs, " [-first n] [-last n]")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxmax", err)
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
		if err := r.Max(ctx, *first, l, geometry.Detector{}, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxmax[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
