/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package pdf

import (
	"testing"

	"github.com/nxreduce/nxreduce/internal/tassert"
)

func TestTukey1DCenterIsFlat(t *testing.T) {
	w := Tukey1D(21, 0.5)
	tassert.Errorf(t, w[10] == 1, "expected window center to be 1, got %v", w[10])
}

func TestTukey1DEdgesTaperToZero(t *testing.T) {
	w := Tukey1D(21, 0.5)
	tassert.Errorf(t, w[0] < 0.1, "expected first sample near 0, got %v", w[0])
	tassert.Errorf(t, w[len(w)-1] < 0.1, "expected last sample near 0, got %v", w[len(w)-1])
}

func TestTukey1DSingleSample(t *testing.T) {
	w := Tukey1D(1, 0.5)
	tassert.Fatalf(t, len(w) == 1 && w[0] == 1, "expected single-sample window to be [1], got %v", w)
}

func TestReciprocalTukeyWeightsNeverInfinite(t *testing.T) {
	shape := [3]int{8, 8, 8}
	w := ReciprocalTukeyWeights(shape, 0.5)
	for i := range w {
		for j := range w[i] {
			for k := range w[i][j] {
				v := w[i][j][k]
				tassert.Fatalf(t, v > 0 && v < 1e9, "expected finite positive reciprocal weight, got %v at (%d,%d,%d)", v, i, j, k)
			}
		}
	}
}

func TestRepairZerosUsesHalfNeighbour(t *testing.T) {
	v := []float64{0, 2, 4}
	repairZeros(v)
	tassert.Errorf(t, v[0] == 1, "expected leading zero repaired to half its right neighbour, got %v", v[0])
}
