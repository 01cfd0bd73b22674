package blob

import "math"

// Frame is a single (y, x) detector image.
type Frame struct {
	Data   [][]float64 // [y][x]
	Mask   [][]bool    // masked-pixel flag, same shape; true == excluded
	Height int
	Width  int
}

// Detect runs a labeled-image connected-component pass over one frame
// at z, thresholding at `threshold`, and reduces each component to
// (np, average, x, y, sigx, sigy, covxy) per spec.md §4.5. Blobs are
// rejected when the masked pixel at the rounded centroid is set, when
// the average is ~0, or when np < minPixelCount (default 5).
func Detect(f Frame, z float64, threshold float64, minPixelCount int) []Peak {
	visited := make([][]bool, f.Height)
	for i := range visited {
		visited[i] = make([]bool, f.Width)
	}

	var peaks []Peak
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if visited[y][x] || f.Data[y][x] < threshold {
				continue
			}
			np, sum, sx, sy, sxx, syy, sxy := floodFill(f, visited, y, x, threshold)
			if np == 0 {
				continue
			}
			avg := sum / float64(np)
			xbar := sx / sum
			ybar := sy / sum
			varx := sxx/sum - xbar*xbar
			vary := syy/sum - ybar*ybar
			covxy := sxy/sum - xbar*ybar
			if varx < 0 {
				varx = 0
			}
			if vary < 0 {
				vary = 0
			}

			cy, cx := int(ybar+0.5), int(xbar+0.5)
			if cy >= 0 && cy < f.Height && cx >= 0 && cx < f.Width && f.Mask != nil && f.Mask[cy][cx] {
				continue
			}
			if np < minPixelCount {
				continue
			}
			if avg > -1e-9 && avg < 1e-9 {
				continue
			}

			peaks = append(peaks, Peak{
				NP:      np,
				Average: avg,
				X:       xbar,
				Y:       ybar,
				Z:       z,
				SigX:    sqrtNonNeg(varx),
				SigY:    sqrtNonNeg(vary),
				CovXY:   covxy,
			})
		}
	}
	return peaks
}

// floodFill runs an iterative 4-connected flood fill starting at (y0,x0)
// and accumulates the moments needed by Detect.
func floodFill(f Frame, visited [][]bool, y0, x0 int, threshold float64) (np int, sum, sx, sy, sxx, syy, sxy float64) {
	type pt struct{ y, x int }
	stack := []pt{{y0, x0}}
	visited[y0][x0] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := f.Data[p.y][p.x]
		np++
		sum += v
		sx += v * float64(p.x)
		sy += v * float64(p.y)
		sxx += v * float64(p.x) * float64(p.x)
		syy += v * float64(p.y) * float64(p.y)
		sxy += v * float64(p.x) * float64(p.y)

		neighbors := [4]pt{{p.y - 1, p.x}, {p.y + 1, p.x}, {p.y, p.x - 1}, {p.y, p.x + 1}}
		for _, n := range neighbors {
			if n.y < 0 || n.y >= f.Height || n.x < 0 || n.x >= f.Width {
				continue
			}
			if visited[n.y][n.x] {
				continue
			}
			if f.Data[n.y][n.x] < threshold {
				continue
			}
			visited[n.y][n.x] = true
			stack = append(stack, n)
		}
	}
	return
}

func sqrtNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
