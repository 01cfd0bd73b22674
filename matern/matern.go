// Package matern wraps the external Julia-based Laplace interpolator
// (spec.md §1, §6) used by `fill`: given a 3D array and a list of
// indices, return a dense array of the same shape with those indices
// replaced by a smooth Matern-3 interpolation.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package matern

import "context"

// Index3 is a single (z,y,x) index into a 3D volume.
type Index3 struct{ Z, Y, X int }

// Interpolator is the matrix->matrix contract spec.md §1 names.
type Interpolator interface {
	Fill(ctx context.Context, volume [][][]float64, indices []Index3) ([][][]float64, error)
}
