package symmetry

import "github.com/nxreduce/nxreduce/pdf"

// TukeyWeights attaches the FFT-taper weights described in spec.md §4.7
// to a symmetrized volume's shape: w(z,y,x) = 1/tukey(z)*1/tukey(y)*1/tukey(x).
func TukeyWeights(shape [3]int, alpha float64) [][][]float64 {
	return pdf.ReciprocalTukeyWeights(shape, alpha)
}
