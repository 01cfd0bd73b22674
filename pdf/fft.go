package pdf

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Volume3 is a dense complex 3D array, row-major (z,y,x).
type Volume3 struct {
	Shape [3]int
	Data  []complex128
}

func NewVolume3(shape [3]int) *Volume3 {
	n := shape[0] * shape[1] * shape[2]
	return &Volume3{Shape: shape, Data: make([]complex128, n)}
}

func (v *Volume3) strides() [3]int { return [3]int{v.Shape[1] * v.Shape[2], v.Shape[2], 1} }
func (v *Volume3) idx(i, j, k int) int {
	s := v.strides()
	return i*s[0] + j*s[1] + k*s[2]
}
func (v *Volume3) At(i, j, k int) complex128     { return v.Data[v.idx(i, j, k)] }
func (v *Volume3) Set(i, j, k int, x complex128) { v.Data[v.idx(i, j, k)] = x }

// FFT3Centered applies a separable 3D FFT with fftshift applied around
// both the input and the output (spec.md §4.7 total_pdf/delta_pdf),
// scaled by 1/N where N is the total element count.
func FFT3Centered(v *Volume3) *Volume3 {
	shifted := fftshift3(v)
	transformed := fft3(shifted, false)
	out := fftshift3(transformed)
	n := float64(v.Shape[0] * v.Shape[1] * v.Shape[2])
	for i := range out.Data {
		out.Data[i] /= complex(n, 0)
	}
	return out
}

func fft3(v *Volume3, inverse bool) *Volume3 {
	out := NewVolume3(v.Shape)
	copy(out.Data, v.Data)
	transformAxis(out, 2, inverse)
	transformAxis(out, 1, inverse)
	transformAxis(out, 0, inverse)
	return out
}

// transformAxis runs a 1D complex FFT along `axis`, in place.
func transformAxis(v *Volume3, axis int, inverse bool) {
	n := v.Shape[axis]
	fft := fourier.NewCmplxFFT(n)
	line := make([]complex128, n)

	iterate(v.Shape, axis, func(fixed [2]int) {
		for t := 0; t < n; t++ {
			line[t] = v.atAxis(axis, fixed, t)
		}
		var res []complex128
		if inverse {
			res = fft.Sequence(nil, line)
			for i := range res {
				res[i] /= complex(float64(n), 0)
			}
		} else {
			res = fft.Coefficients(nil, line)
		}
		for t := 0; t < n; t++ {
			v.setAxis(axis, fixed, t, res[t])
		}
	})
}

// atAxis/setAxis address volume elements by (axis, the two other fixed
// coordinates, position along axis).
func (v *Volume3) atAxis(axis int, fixed [2]int, t int) complex128 {
	idx := axisIndex(axis, fixed, t)
	return v.At(idx[0], idx[1], idx[2])
}

func (v *Volume3) setAxis(axis int, fixed [2]int, t int, val complex128) {
	idx := axisIndex(axis, fixed, t)
	v.Set(idx[0], idx[1], idx[2], val)
}

func axisIndex(axis int, fixed [2]int, t int) [3]int {
	var idx [3]int
	others := 0
	for a := 0; a < 3; a++ {
		if a == axis {
			idx[a] = t
		} else {
			idx[a] = fixed[others]
			others++
		}
	}
	return idx
}

// iterate calls fn once per combination of the two axes other than
// `axis`, covering the full volume.
func iterate(shape [3]int, axis int, fn func(fixed [2]int)) {
	var others []int
	for a := 0; a < 3; a++ {
		if a != axis {
			others = append(others, a)
		}
	}
	for i := 0; i < shape[others[0]]; i++ {
		for j := 0; j < shape[others[1]]; j++ {
			fn([2]int{i, j})
		}
	}
}

// fftshift3 swaps each axis' two halves, the 3D generalisation of
// numpy.fft.fftshift.
func fftshift3(v *Volume3) *Volume3 {
	out := NewVolume3(v.Shape)
	for i := 0; i < v.Shape[0]; i++ {
		si := shiftIndex(i, v.Shape[0])
		for j := 0; j < v.Shape[1]; j++ {
			sj := shiftIndex(j, v.Shape[1])
			for k := 0; k < v.Shape[2]; k++ {
				sk := shiftIndex(k, v.Shape[2])
				out.Set(si, sj, sk, v.At(i, j, k))
			}
		}
	}
	return out
}

func shiftIndex(i, n int) int {
	return (i + (n+1)/2) % n
}

// magnitude is a small helper used by tests to sanity-check FFT output
// without importing math/cmplx at the call site.
func magnitude(c complex128) float64 { return cmplx.Abs(c) }
