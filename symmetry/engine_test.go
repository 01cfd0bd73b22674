/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package symmetry

import (
	"testing"

	"github.com/nxreduce/nxreduce/internal/tassert"
)

func TestClosureSizeMmm(t *testing.T) {
	ops := closure(generators(GroupMmm))
	tassert.Errorf(t, len(ops) == 8, "expected mmm's orbit to have order 8, got %d", len(ops))
}

func TestClosureSizeBar1(t *testing.T) {
	ops := closure(generators(GroupBar1))
	tassert.Errorf(t, len(ops) == 2, "expected -1's orbit to have order 2, got %d", len(ops))
}

func TestClosureSizeMBar3M(t *testing.T) {
	ops := closure(generators(GroupMBar3M))
	tassert.Errorf(t, len(ops) == 48, "expected m-3m's orbit to have order 48, got %d", len(ops))
}

func TestSymmetrizeNormalizesByWeight(t *testing.T) {
	e := NewEngine(GroupMmm)
	shape := [3]int{2, 2, 2}
	signal := NewVolume(shape)
	weight := NewVolume(shape)
	for i := range signal.Data {
		signal.Data[i] = 1
		weight.Data[i] = 1
	}
	result, outWeight := e.Symmetrize(signal, weight)
	for i, v := range result.Data {
		tassert.Errorf(t, v == 1, "expected normalized result 1, got %v at %d", v, i)
	}
	for i, w := range outWeight.Data {
		tassert.Errorf(t, w == 8, "expected summed weight 8 for mmm orbit, got %v at %d", w, i)
	}
}

func TestSymmetrizeZeroWeightStaysZero(t *testing.T) {
	e := NewEngine(GroupBar1)
	shape := [3]int{2, 2, 2}
	signal := NewVolume(shape)
	weight := NewVolume(shape)
	result, _ := e.Symmetrize(signal, weight)
	for i, v := range result.Data {
		tassert.Errorf(t, v == 0, "expected zero-weight voxel to stay zero, got %v at %d", v, i)
	}
}

func TestFlipAllIsInvolution(t *testing.T) {
	shape := [3]int{3, 4, 5}
	idx := [3]int{1, 2, 3}
	op := flipAll()
	once := op(idx, shape)
	twice := op(once, shape)
	tassert.Fatalf(t, twice == idx, "expected flipAll applied twice to return the original index, got %v", twice)
}
