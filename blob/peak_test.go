/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package blob

import (
	"testing"

	"github.com/nxreduce/nxreduce/internal/tassert"
)

func TestPeakIntensity(t *testing.T) {
	p := Peak{NP: 4, Average: 2.5}
	tassert.Errorf(t, p.Intensity() == 10, "expected intensity 10, got %v", p.Intensity())
}

func TestPeakEqualUsesWiderTolerance(t *testing.T) {
	a := Peak{X: 0, Y: 0, Z: 0, PixelTolerance: 1, FrameTolerance: 1}
	b := Peak{X: 0.5, Y: 0.5, Z: 1, PixelTolerance: 0, FrameTolerance: 0}
	tassert.Fatalf(t, a.Equal(b), "expected peaks within the wider of the two tolerances to be equal")
}

func TestPeakNotEqualBeyondTolerance(t *testing.T) {
	a := Peak{X: 0, Y: 0, Z: 0, PixelTolerance: 1, FrameTolerance: 1}
	b := Peak{X: 5, Y: 5, Z: 0}
	tassert.Fatalf(t, !a.Equal(b), "expected peaks far apart in xy to be unequal")
}

func TestPeakLessOrdersByZ(t *testing.T) {
	a := Peak{Z: 1}
	b := Peak{Z: 2}
	tassert.Fatalf(t, a.Less(b), "expected a.Z < b.Z to order a before b")
	tassert.Fatalf(t, !b.Less(a), "expected b.Z > a.Z to not order b before a")
}
