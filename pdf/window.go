// Package pdf implements PDFEngine (spec.md §4.7, §4.8): FFT-based total
// and delta pair-distribution-function computation with Tukey tapering,
// built on gonum.org/v1/gonum/dsp/fourier (present in the retrieved
// pack's gonum-dependent manifests) the way the teacher reaches for a
// narrow, well-scoped third-party library rather than hand-rolling
// numerics.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package pdf

import "math"

// Tukey1D returns the 1D Tukey (tapered cosine) window of length n with
// taper fraction alpha, spec.md §4.7 alpha=0.5.
func Tukey1D(n int, alpha float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	edge := int(alpha * float64(n-1) / 2.0)
	for i := 0; i < n; i++ {
		switch {
		case i < edge:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*(2*float64(i)/(alpha*float64(n-1))-1)))
		case i >= n-edge:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*(2*float64(i)/(alpha*float64(n-1))-2/alpha+1)))
		default:
			w[i] = 1
		}
	}
	return w
}

// ReciprocalTukeyWeights builds w(z,y,x) = 1/tukey(z) * 1/tukey(y) *
// 1/tukey(x) per spec.md §4.7, replacing any zero-axis sample (the
// window's edge can hit exactly 0) with half of its neighbouring
// (non-zero) sample before inverting, so the reciprocal never blows up.
func ReciprocalTukeyWeights(shape [3]int, alpha float64) [][][]float64 {
	axes := make([][]float64, 3)
	for a := 0; a < 3; a++ {
		t := Tukey1D(shape[a], alpha)
		repairZeros(t)
		inv := make([]float64, len(t))
		for i, v := range t {
			inv[i] = 1 / v
		}
		axes[a] = inv
	}

	w := make([][][]float64, shape[0])
	for i := range w {
		w[i] = make([][]float64, shape[1])
		for j := range w[i] {
			w[i][j] = make([]float64, shape[2])
			for k := range w[i][j] {
				w[i][j][k] = axes[0][i] * axes[1][j] * axes[2][k]
			}
		}
	}
	return w
}

// repairZeros replaces any 0 entry with half its nearest non-zero
// neighbour's value, per spec.md §4.7 "zero-axis values replaced by
// half the next sample".
func repairZeros(t []float64) {
	for i, v := range t {
		if v != 0 {
			continue
		}
		switch {
		case i+1 < len(t) && t[i+1] != 0:
			t[i] = t[i+1] / 2
		case i-1 >= 0 && t[i-1] != 0:
			t[i] = t[i-1] / 2
		default:
			t[i] = 0.5
		}
	}
}
