// Command nxparent resolves or creates the parent-scan symlink
// described in spec.md's glossary: "Parent: the reference scan whose
// refined parameters are copied into sibling scans; represented on
// disk as a relative symbolic link <sample>_parent.nxs."
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
)

func main() {
	fs := flag.NewFlagSet("nxparent", flag.ExitOnError)
	sample := fs.String("sample", "", "sample name, e.g. the <sample> in <sample>_parent.nxs")
	target := fs.String("target", "", "scan wrapper file the link should point at, relative to -d")
	show := fs.Bool("show", false, "print the current parent link target instead of setting it")
	c := cliutil.Parse(fs, " -sample name [-target file.nxs | -show]")

	if *sample == "" {
		cliutil.Fail("nxparent", errNeedSample)
	}
	linkPath := filepath.Join(c.Directory, *sample+"_parent.nxs")

	if *show {
		dest, err := os.Readlink(linkPath)
		if err != nil {
			cliutil.Fail("nxparent", err)
		}
		fmt.Println(dest)
		return
	}

	if *target == "" {
		cliutil.Fail("nxparent", errNeedTarget)
	}
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			cliutil.Fail("nxparent", err)
		}
	}
	if err := os.Symlink(*target, linkPath); err != nil {
		cliutil.Fail("nxparent", err)
	}
}

var errNeedSample = parentErr("nxparent: -sample is required")
var errNeedTarget = parentErr("nxparent: -target is required unless -show is given")

type parentErr string

func (e parentErr) Error() string { return string(e) }
