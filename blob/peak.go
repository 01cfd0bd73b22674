// Package blob implements the 2D connected-component peak extractor
// (BlobDetector, spec.md §4.5) and the Peak/Blob data model (spec.md §3).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package blob

import "math"

// Peak is the merged/raw blob descriptor of spec.md §3. Raw per-frame
// blobs and merged multi-frame peaks share this type; `Peaks` is
// non-empty only for merged peaks (the arena-of-indices design note in
// spec.md §9 keeps them as owned values referenced by index, see
// merge.Arena, rather than linked pointers).
type Peak struct {
	NP             int
	Average        float64
	X, Y, Z        float64
	SigX, SigY     float64
	CovXY          float64
	Threshold      float64
	PixelTolerance float64
	FrameTolerance int
	Peaks          []int // arena indices of the raw blobs this peak absorbed
	Combined       bool
}

// Intensity is np * average, spec.md §3.
func (p Peak) Intensity() float64 { return float64(p.NP) * p.Average }

// Equal implements the equality predicate of spec.md §3/§4.5:
// |Δz| <= frame_tolerance AND Δx² + Δy² <= pixel_tolerance².
func (p Peak) Equal(o Peak) bool {
	ft := p.FrameTolerance
	if o.FrameTolerance > ft {
		ft = o.FrameTolerance
	}
	pt := p.PixelTolerance
	if o.PixelTolerance > pt {
		pt = o.PixelTolerance
	}
	dz := math.Abs(p.Z - o.Z)
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dz <= float64(ft) && dx*dx+dy*dy <= pt*pt
}

// Less orders peaks by z, spec.md §3.
func (p Peak) Less(o Peak) bool { return p.Z < o.Z }
