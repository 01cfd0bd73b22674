/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package pdf

import (
	"testing"

	"github.com/nxreduce/nxreduce/internal/tassert"
)

func TestFFTShift3IsInvolutionOnEvenShape(t *testing.T) {
	shape := [3]int{2, 4, 6}
	v := NewVolume3(shape)
	for i := range v.Data {
		v.Data[i] = complex(float64(i), 0)
	}
	once := fftshift3(v)
	twice := fftshift3(once)
	for i := range v.Data {
		tassert.Fatalf(t, v.Data[i] == twice.Data[i], "expected fftshift3 applied twice to be identity at %d", i)
	}
}

func TestFFT3CenteredOfConstantIsDeltaAtCenter(t *testing.T) {
	shape := [3]int{4, 4, 4}
	v := NewVolume3(shape)
	for i := range v.Data {
		v.Data[i] = complex(1, 0)
	}
	out := FFT3Centered(v)

	cz, cy, cx := shape[0]/2, shape[1]/2, shape[2]/2
	centerMag := magnitude(out.At(cz, cy, cx))
	tassert.Errorf(t, centerMag > 0.9, "expected constant input's FFT energy concentrated at center, got %v", centerMag)

	offMag := magnitude(out.At(0, 0, 0))
	tassert.Errorf(t, offMag < 0.1, "expected near-zero energy away from center, got %v", offMag)
}

func TestTransformAxisRoundTrips(t *testing.T) {
	shape := [3]int{3, 3, 5}
	v := NewVolume3(shape)
	for i := range v.Data {
		v.Data[i] = complex(float64(i%7), float64(i%3))
	}
	orig := append([]complex128(nil), v.Data...)

	forward := fft3(v, false)
	back := fft3(forward, true)
	for i := range orig {
		tassert.Errorf(t, magnitude(back.Data[i]-orig[i]) < 1e-6,
			"expected forward/inverse FFT round trip to recover the input at %d, got %v vs %v", i, back.Data[i], orig[i])
	}
}
