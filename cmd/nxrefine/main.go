// Command nxrefine runs the `refine` stage: three successive
// orientation/lattice optimisation passes (spec.md §4.6 "refine").
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
	fs := flag.NewFlagSet("nxrefine", flag.ExitOnError)
	lattice := fs.Bool("lattice", false, "this entry owns the lattice refinement (parent or first entry)")
	c := cliutil.Parse(fs, " [-lattice]")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxrefine", err)
	}

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		if err := r.Refine(ctx, geometry.Lattice{}, *lattice, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxrefine[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
