// Command nxprepare runs the `prepare` stage: predicted-peak z-frame
// optimisation and mask array construction (spec.md §4.6 "prepare").
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
	"github.com/nxreduce/nxreduce/reduce"
)

func main() {
	c := cliutil.Parse(flag.NewFlagSet("nxprepare", flag.ExitOnError), "")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxprepare", err)
	}

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		var shape [3]int
		if r.Raw != nil {
			f, h, w := r.Raw.Shape()
			shape = [3]int{f, h, w}
		}
		// The predicted-peak list comes from the refined orientation
		// matrix via the external azimuthal/crystallographic
		// collaborators; a production binding supplies it here.
		var predicted []reduce.PredictedPeak
		brightness := func(x, y, z int) (float64, bool) { return 0, false }
		if _, err := r.Prepare(ctx, predicted, shape, brightness, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxprepare[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
