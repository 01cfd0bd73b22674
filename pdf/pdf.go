package pdf

// Result is one PDF computation's output: the real part of the
// centered FFT plus the reciprocal-axis scaling factor (the lattice
// constants a,b,c, spec.md §4.7).
type Result struct {
	Shape         [3]int
	Data          []float64
	ScalingFactor [3]float64
}

// Lattice carries just the unit-cell lengths needed for the PDF's
// scaling_factor attribute.
type Lattice struct{ A, B, C float64 }

const tukeyAlpha = 0.5

// Compute runs the shared total_pdf/delta_pdf pipeline of spec.md §4.7:
// taper by a Tukey window, centered 3D FFT, scale by 1/N (folded into
// FFT3Centered), tag with the lattice scaling factor. `shape` excludes
// any trailing singleton HKL index already stripped by the caller
// ("symmetrized volume with final index stripped").
func Compute(shape [3]int, data []float64, lattice Lattice) Result {
	taper := tukeyVolume(shape, tukeyAlpha)

	cv := NewVolume3(shape)
	n := shape[0] * shape[1] * shape[2]
	for idx := 0; idx < n; idx++ {
		cv.Data[idx] = complex(data[idx]*taper[idx], 0)
	}

	out := FFT3Centered(cv)
	real := make([]float64, n)
	for idx, c := range out.Data {
		real[idx] = realPart(c)
	}
	return Result{
		Shape:         shape,
		Data:          real,
		ScalingFactor: [3]float64{lattice.A, lattice.B, lattice.C},
	}
}

// TotalPDF and DeltaPDF are thin, named wrappers over Compute so callers
// (multireduce) name the two spec.md §4.7 stages explicitly even though
// they share one pipeline.
func TotalPDF(shape [3]int, symmetrized []float64, lattice Lattice) Result {
	return Compute(shape, symmetrized, lattice)
}

func DeltaPDF(shape [3]int, filled []float64, lattice Lattice) Result {
	return Compute(shape, filled, lattice)
}

func tukeyVolume(shape [3]int, alpha float64) []float64 {
	wz := Tukey1D(shape[0], alpha)
	wy := Tukey1D(shape[1], alpha)
	wx := Tukey1D(shape[2], alpha)
	out := make([]float64, shape[0]*shape[1]*shape[2])
	idx := 0
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				out[idx] = wz[i] * wy[j] * wx[k]
				idx++
			}
		}
	}
	return out
}

func realPart(c complex128) float64 { return real(c) }
