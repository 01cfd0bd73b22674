// Package symmetry implements SymmetryEngine (spec.md §4.7, §9): Laue-
// group symmetrization of a reciprocal-space volume by axis flips,
// rotations, and transpositions, with weight bookkeeping and FFT-taper
// weights. Modeled on the teacher's tagged-variant dispatch style
// (xreg.Renewable factories keyed by a Kind string, xreg/bucket.go)
// replacing the source's dynamic per-group dispatch with the fixed
// table in spec.md §9.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package symmetry

// Volume is a dense 3D array with row-major (z,y,x) layout.
type Volume struct {
	Shape [3]int
	Data  []float64
}

func NewVolume(shape [3]int) *Volume {
	n := shape[0] * shape[1] * shape[2]
	return &Volume{Shape: shape, Data: make([]float64, n)}
}

func (v *Volume) strides() [3]int {
	return [3]int{v.Shape[1] * v.Shape[2], v.Shape[2], 1}
}

func (v *Volume) Index(i, j, k int) int {
	s := v.strides()
	return i*s[0] + j*s[1] + k*s[2]
}

func (v *Volume) At(i, j, k int) float64    { return v.Data[v.Index(i, j, k)] }
func (v *Volume) Set(i, j, k int, x float64) { v.Data[v.Index(i, j, k)] = x }
