// Command nxreduce drives an entry through the requested subset of its
// stage chain in one invocation (spec.md §6 "nxreduce additionally:
// -l link, -m max, -f find, -c copy, -r refine, -p prepare, -t
// transform, -M mask").
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
	"github.com/nxreduce/nxreduce/geometry"
	"github.com/nxreduce/nxreduce/reduce"
)

func main() {
	fs := flag.NewFlagSet("nxreduce", flag.ExitOnError)
	doLink := fs.Bool("l", false, "run link")
	doMax := fs.Bool("m", false, "run max")
	doFind := fs.Bool("f", false, "run find")
	doCopy := fs.Bool("c", false, "run copy")
	doRefine := fs.Bool("r", false, "run refine")
	doPrepare := fs.Bool("p", false, "run prepare")
	doTransform := fs.Bool("t", false, "run transform")
	doMasked := fs.Bool("M", false, "run masked_transform (with -t) or use the masked mask")
	c := cliutil.Parse(fs, " [-l] [-m] [-f] [-c] [-r] [-p] [-t] [-M]")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxreduce", err)
	}
	cfg := config.Global()
	timeout := time.Duration(cfg.Subprocess.TimeoutSecs) * time.Second

	var parentWrapper = scan.Wrapper // single-file scans are their own parent entry's sibling
	if p, err := bind.Open(filepath.Join(c.Directory, "..")); err == nil {
		parentWrapper = p.Wrapper
	}

	ctx := context.Background()
	failed := false
	for _, entry := range c.Entries {
		r := scan.NewReducer(entry, nil, nil, nil)
		r.CCTWBinPath = cfg.Subprocess.CCTWPath

		run := func(name string, fn func() error) {
			if failed {
				return
			}
			if err := fn(); err != nil {
				os.Stderr.WriteString("nxreduce[" + entry + "]: " + name + ": " + err.Error() + "\n")
				failed = true
			}
		}

		if *doLink {
			run("link", func() error { return r.Link(ctx, c.Overwrite) })
		}
		if *doMax {
			run("max", func() error { return r.Max(ctx, 0, maxFrames(r), geometry.Detector{}, c.Overwrite) })
		}
		if *doFind {
			run("find", func() error { return r.Find(ctx, 0, maxFrames(r), 0, nil, c.Overwrite) })
		}
		if *doCopy {
			run("copy", func() error { return r.Copy(ctx, parentWrapper, c.Overwrite) })
		}
		if *doRefine {
			run("refine", func() error { return r.Refine(ctx, geometry.Lattice{}, false, c.Overwrite) })
		}
		if *doPrepare {
			run("prepare", func() error {
				var shape [3]int
				if r.Raw != nil {
					f, h, w := r.Raw.Shape()
					shape = [3]int{f, h, w}
				}
				var predicted []reduce.PredictedPeak
				_, err := r.Prepare(ctx, predicted, shape, func(int, int, int) (float64, bool) { return 0, false }, c.Overwrite)
				return err
			})
		}
		if *doTransform {
			run("transform", func() error {
				rawPath := filepath.Join(c.Directory, entry+".h5")
				settingsPath := filepath.Join(c.Directory, entry+"_transform.pars")
				suffix := "_transform.nxs"
				if *doMasked {
					suffix = "_masked_transform.nxs"
				}
				transformPath := filepath.Join(c.Directory, entry+suffix)
				return r.Transform(ctx, rawPath, settingsPath, transformPath, timeout, *doMasked, c.Overwrite)
			})
		}
	}
	if failed {
		os.Exit(1)
	}
}

func maxFrames(r *reduce.Reducer) int {
	if r.Raw == nil {
		return 0
	}
	frames, _, _ := r.Raw.Shape()
	return frames
}
