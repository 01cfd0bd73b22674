/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package blob

import (
	"testing"

	"github.com/nxreduce/nxreduce/internal/tassert"
)

func makeFrame(h, w int, fill func(y, x int) float64) Frame {
	data := make([][]float64, h)
	mask := make([][]bool, h)
	for y := 0; y < h; y++ {
		data[y] = make([]float64, w)
		mask[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			data[y][x] = fill(y, x)
		}
	}
	return Frame{Data: data, Mask: mask, Height: h, Width: w}
}

func TestDetectSingleBlob(t *testing.T) {
	f := makeFrame(10, 10, func(y, x int) float64 { return 0 })
	for _, p := range [][2]int{{4, 4}, {4, 5}, {5, 4}, {5, 5}} {
		f.Data[p[0]][p[1]] = 100
	}
	peaks := Detect(f, 3, 10, 1)
	tassert.Fatalf(t, len(peaks) == 1, "expected 1 peak, got %d", len(peaks))
	p := peaks[0]
	tassert.Errorf(t, p.NP == 4, "expected np=4, got %d", p.NP)
	tassert.Errorf(t, p.Z == 3, "expected z=3, got %v", p.Z)
	tassert.Errorf(t, p.X > 4.4 && p.X < 4.6, "expected x near 4.5, got %v", p.X)
	tassert.Errorf(t, p.Y > 4.4 && p.Y < 4.6, "expected y near 4.5, got %v", p.Y)
}

func TestDetectTwoDisjointBlobs(t *testing.T) {
	f := makeFrame(10, 10, func(y, x int) float64 { return 0 })
	f.Data[1][1] = 50
	f.Data[8][8] = 50
	f.Data[8][9] = 50
	peaks := Detect(f, 0, 10, 1)
	tassert.Fatalf(t, len(peaks) == 2, "expected 2 peaks, got %d", len(peaks))
}

func TestDetectRejectsBelowMinPixelCount(t *testing.T) {
	f := makeFrame(5, 5, func(y, x int) float64 { return 0 })
	f.Data[2][2] = 50
	peaks := Detect(f, 0, 10, 5)
	tassert.Fatalf(t, len(peaks) == 0, "expected blob below minPixelCount to be dropped, got %d", len(peaks))
}

func TestDetectRejectsMaskedCentroid(t *testing.T) {
	f := makeFrame(5, 5, func(y, x int) float64 { return 0 })
	for _, p := range [][2]int{{2, 2}, {2, 3}, {3, 2}, {3, 3}} {
		f.Data[p[0]][p[1]] = 50
	}
	f.Mask[3][3] = true
	peaks := Detect(f, 0, 10, 1)
	tassert.Fatalf(t, len(peaks) == 0, "expected masked-centroid blob to be dropped, got %d", len(peaks))
}

func TestDetectNoPeaksBelowThreshold(t *testing.T) {
	f := makeFrame(5, 5, func(y, x int) float64 { return 1 })
	peaks := Detect(f, 0, 10, 1)
	tassert.Fatalf(t, len(peaks) == 0, "expected no peaks below threshold, got %d", len(peaks))
}
