// Command nxcopy runs the `copy` stage: copy sample/instrument
// parameters from a resolved parent wrapper (spec.md §4.6 "copy").
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/nxreduce/nxreduce/cmd/internal/bind"
	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
	"github.com/nxreduce/nxreduce/nxfile"
)

func main() {
	c := cliutil.Parse(flag.NewFlagSet("nxcopy", flag.ExitOnError), "")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxcopy", err)
	}

	// The parent wrapper is the scan opened from the directory above -d
	// (spec.md §6/glossary "Parent"); the "<sample>_parent.nxs" link is
	// not read here.
	var parentWrapper *nxfile.Wrapper
	if p, err := bind.Open(filepath.Join(c.Directory, "..")); err == nil {
		parentWrapper = p.Wrapper
	}

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		if err := r.Copy(ctx, parentWrapper, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxcopy[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
