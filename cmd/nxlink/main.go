// Command nxlink runs the `link` stage for one or more entries of a
// scan (spec.md §4.6 "link", §6 CLI surface).
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
	c := cliutil.Parse(flag.NewFlagSet("nxlink", flag.ExitOnError), "")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxlink", err)
	}

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		if err := r.Link(ctx, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxlink[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
