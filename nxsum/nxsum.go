// Package nxsum implements the sum-across-scans utility of spec.md
// §4.8: verify each scan's raw data and monitor1 presence, copy the
// first scan as the destination, then chunkwise-add the rest. Modeled
// on the teacher's downloader-style chunked-copy loop (downloader/dl.go)
// that streams a large object in fixed-size pieces rather than loading
// it whole.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package nxsum

import (
	"github.com/nxreduce/nxreduce/cmn"
)

// ScanSource is the narrow per-scan data access contract this package
// depends on, mirroring reduce.RawSource but scoped to what summing
// needs: shape, chunked frame reads, and the monitor channels.
type ScanSource interface {
	Entry() string
	Shape() (frames, height, width int)
	ReadChunk(first, last int) ([][][]float64, error) // [frame][y][x]
	Monitor1() ([]float64, bool)
	Monitor2() ([]float64, bool)
	Mask() ([][][]int8, bool)
}

// Destination receives the summed result, written chunkwise.
type Destination interface {
	WriteChunk(first int, data [][][]float64) error
	WriteMonitor1(v []float64) error
	WriteMonitor2(v []float64) error
	WriteMask(v [][][]int8) error
}

// Sum verifies every scan has a raw data file and a monitor1 channel,
// then writes the chunkwise sum of all scans' data plus the sum of
// monitor1/monitor2 into dst, preserving the first scan's mask
// (spec.md §4.8).
func Sum(scans []ScanSource, dst Destination, chunkFrames int) error {
	if len(scans) == 0 {
		return cmn.NewStageError(cmn.ErrNotFound, "", "nxsum", "no scans given", nil)
	}
	if chunkFrames <= 0 {
		chunkFrames = 50
	}

	frames, height, width, err := verifyShapes(scans)
	if err != nil {
		return err
	}

	if err := sumChunked(scans, dst, frames, height, width, chunkFrames); err != nil {
		return err
	}
	if err := sumMonitors(scans, dst); err != nil {
		return err
	}
	if mask, ok := scans[0].Mask(); ok {
		if err := dst.WriteMask(mask); err != nil {
			return cmn.NewStageError(cmn.ErrIO, "", "nxsum", "write mask", err)
		}
	}
	return nil
}

// verifyShapes checks every scan has a raw data file (non-zero shape)
// and a monitor1 channel present, and that all scans share one shape.
func verifyShapes(scans []ScanSource) (frames, height, width int, err error) {
	frames, height, width = scans[0].Shape()
	if frames == 0 {
		return 0, 0, 0, cmn.NewStageError(cmn.ErrNotFound, scans[0].Entry(), "nxsum", "raw data file missing or empty", nil)
	}
	if _, ok := scans[0].Monitor1(); !ok {
		return 0, 0, 0, cmn.NewStageError(cmn.ErrNotFound, scans[0].Entry(), "nxsum", "monitor1 missing", nil)
	}
	for _, s := range scans[1:] {
		f, h, w := s.Shape()
		if f == 0 {
			return 0, 0, 0, cmn.NewStageError(cmn.ErrNotFound, s.Entry(), "nxsum", "raw data file missing or empty", nil)
		}
		if _, ok := s.Monitor1(); !ok {
			return 0, 0, 0, cmn.NewStageError(cmn.ErrNotFound, s.Entry(), "nxsum", "monitor1 missing", nil)
		}
		if f != frames || h != height || w != width {
			return 0, 0, 0, cmn.NewInvalidGrid(s.Entry(), "nxsum", "shape mismatch across scans")
		}
	}
	return frames, height, width, nil
}

// sumChunked copies the first scan as the destination's initial
// content, then adds every subsequent scan's frames chunkwise
// (spec.md §4.8 "copy the first scan's raw file as the destination,
// then add subsequent scans chunkwise").
func sumChunked(scans []ScanSource, dst Destination, frames, height, width, chunkFrames int) error {
	for first := 0; first < frames; first += chunkFrames {
		last := first + chunkFrames
		if last > frames {
			last = frames
		}
		acc, err := scans[0].ReadChunk(first, last)
		if err != nil {
			return cmn.NewStageError(cmn.ErrIO, scans[0].Entry(), "nxsum", "read chunk", err)
		}
		for _, s := range scans[1:] {
			chunk, err := s.ReadChunk(first, last)
			if err != nil {
				return cmn.NewStageError(cmn.ErrIO, s.Entry(), "nxsum", "read chunk", err)
			}
			addInto(acc, chunk)
		}
		if err := dst.WriteChunk(first, acc); err != nil {
			return cmn.NewStageError(cmn.ErrIO, "", "nxsum", "write chunk", err)
		}
	}
	return nil
}

func addInto(acc, chunk [][][]float64) {
	for z := range acc {
		for y := range acc[z] {
			for x := range acc[z][y] {
				acc[z][y][x] += chunk[z][y][x]
			}
		}
	}
}

func sumMonitors(scans []ScanSource, dst Destination) error {
	m1, _ := scans[0].Monitor1()
	sum1 := append([]float64(nil), m1...)
	var sum2 []float64
	if m2, ok := scans[0].Monitor2(); ok {
		sum2 = append([]float64(nil), m2...)
	}
	for _, s := range scans[1:] {
		if v, ok := s.Monitor1(); ok {
			addVec(sum1, v)
		}
		if v, ok := s.Monitor2(); ok {
			if sum2 == nil {
				sum2 = append([]float64(nil), v...)
			} else {
				addVec(sum2, v)
			}
		}
	}
	if err := dst.WriteMonitor1(sum1); err != nil {
		return cmn.NewStageError(cmn.ErrIO, "", "nxsum", "write monitor1", err)
	}
	if sum2 != nil {
		if err := dst.WriteMonitor2(sum2); err != nil {
			return cmn.NewStageError(cmn.ErrIO, "", "nxsum", "write monitor2", err)
		}
	}
	return nil
}

func addVec(acc, v []float64) {
	n := len(acc)
	if len(v) < n {
		n = len(v)
	}
	for i := 0; i < n; i++ {
		acc[i] += v[i]
	}
}
