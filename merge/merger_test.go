/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package merge

import (
	"testing"

	"github.com/nxreduce/nxreduce/blob"
	"github.com/nxreduce/nxreduce/internal/tassert"
)

func TestMergeCoalescesAcrossFrames(t *testing.T) {
	m := New(10, 50)
	raw := []blob.Peak{
		{NP: 4, Average: 10, X: 100, Y: 100, Z: 0},
		{NP: 4, Average: 10, X: 101, Y: 100, Z: 1},
		{NP: 4, Average: 10, X: 100, Y: 101, Z: 2},
	}
	merged := m.Merge(raw)
	tassert.Fatalf(t, len(merged) == 1, "expected one merged peak across nearby frames, got %d", len(merged))
	tassert.Errorf(t, merged[0].NP == 12, "expected summed np 12, got %d", merged[0].NP)
	tassert.Errorf(t, len(merged[0].Peaks) == 3, "expected 3 absorbed raw blobs, got %d", len(merged[0].Peaks))
}

func TestMergeKeepsDistantPeaksSeparate(t *testing.T) {
	m := New(10, 5)
	raw := []blob.Peak{
		{NP: 4, Average: 10, X: 10, Y: 10, Z: 0},
		{NP: 4, Average: 10, X: 500, Y: 500, Z: 0},
	}
	merged := m.Merge(raw)
	tassert.Fatalf(t, len(merged) == 2, "expected two distinct peaks, got %d", len(merged))
}

func TestMergeRespectsFrameTolerance(t *testing.T) {
	m := New(2, 50)
	raw := []blob.Peak{
		{NP: 4, Average: 10, X: 10, Y: 10, Z: 0},
		{NP: 4, Average: 10, X: 10, Y: 10, Z: 10},
	}
	merged := m.Merge(raw)
	tassert.Fatalf(t, len(merged) == 2, "expected peaks beyond frame_tolerance to stay separate, got %d", len(merged))
}

func TestMergeRecomputesIntensityWeightedCentroid(t *testing.T) {
	m := New(10, 50)
	raw := []blob.Peak{
		{NP: 1, Average: 1, X: 0, Y: 0, Z: 0},
		{NP: 1, Average: 3, X: 10, Y: 10, Z: 1},
	}
	merged := m.Merge(raw)
	tassert.Fatalf(t, len(merged) == 1, "expected one merged peak, got %d", len(merged))
	// weight 1 at x=0, weight 3 at x=10 -> centroid 7.5
	tassert.Errorf(t, merged[0].X > 7.4 && merged[0].X < 7.6, "expected weighted centroid near 7.5, got %v", merged[0].X)
}

func TestBucketKeyStableAndDistinct(t *testing.T) {
	a := bucketKey(10, 10)
	b := bucketKey(10, 10)
	c := bucketKey(1000, 1000)
	tassert.Fatalf(t, string(a) == string(b), "expected bucketKey to be deterministic")
	tassert.Fatalf(t, string(a) != string(c), "expected distant coordinates to hash to different keys")
}
