/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package pdf

import (
	"testing"

	"github.com/nxreduce/nxreduce/internal/tassert"
)

func TestComputeTagsScalingFactor(t *testing.T) {
	shape := [3]int{4, 4, 4}
	data := make([]float64, 4*4*4)
	result := Compute(shape, data, Lattice{A: 1.5, B: 2.5, C: 3.5})
	tassert.Errorf(t, result.ScalingFactor == [3]float64{1.5, 2.5, 3.5}, "expected lattice constants carried into ScalingFactor, got %v", result.ScalingFactor)
	tassert.Errorf(t, result.Shape == shape, "expected result shape to match input shape, got %v", result.Shape)
}

func TestTotalAndDeltaPDFShareThePipeline(t *testing.T) {
	shape := [3]int{4, 4, 4}
	data := make([]float64, 4*4*4)
	for i := range data {
		data[i] = float64(i)
	}
	lattice := Lattice{A: 1, B: 1, C: 1}
	a := TotalPDF(shape, data, lattice)
	b := DeltaPDF(shape, data, lattice)
	for i := range a.Data {
		tassert.Fatalf(t, a.Data[i] == b.Data[i], "expected total_pdf and delta_pdf to agree on identical input at %d", i)
	}
}
