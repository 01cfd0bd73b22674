// Command nxtransform runs the `transform`/`masked_transform` stage:
// invoke the external cctw transform subprocess (spec.md §4.6
// "transform", "masked_transform").
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/nxreduce/nxreduce/cmd/internal/bind"
	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
	"github.com/nxreduce/nxreduce/cmn/config"
)

func main() {
	fs := flag.NewFlagSet("nxtransform", flag.ExitOnError)
	masked := fs.Bool("M", false, "run the masked transform instead")
	c := cliutil.Parse(fs, " [-M]")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxtransform", err)
	}
	cfg := config.Global()
	timeout := time.Duration(cfg.Subprocess.TimeoutSecs) * time.Second

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		r.CCTWBinPath = cfg.Subprocess.CCTWPath
		rawPath := filepath.Join(c.Directory, entry+".h5")
		settingsPath := filepath.Join(c.Directory, entry+"_transform.pars")
		suffix := "_transform.nxs"
		if *masked {
			suffix = "_masked_transform.nxs"
		}
		transformPath := filepath.Join(c.Directory, entry+suffix)
		if err := r.Transform(ctx, rawPath, settingsPath, transformPath, timeout, *masked, c.Overwrite); err != nil {
			os.Stderr.WriteString("nxtransform[" + entry + "]: " + err.Error() + "\n")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
