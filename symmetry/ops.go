package symmetry

import "fmt"

// Op maps one volume index to another under a fixed shape; the
// generator set of each Laue group (spec.md §9) is a list of Ops
// composed into the full point-group orbit by closure.
type Op func(idx [3]int, shape [3]int) [3]int

func identity(idx [3]int, _ [3]int) [3]int { return idx }

func flip(axis int) Op {
	return func(idx [3]int, shape [3]int) [3]int {
		idx[axis] = shape[axis] - 1 - idx[axis]
		return idx
	}
}

// rot90 is a 90-degree rotation in the (a,b) plane.
func rot90(a, b int) Op {
	return func(idx [3]int, shape [3]int) [3]int {
		out := idx
		out[a] = idx[b]
		out[b] = shape[a] - 1 - idx[a]
		return out
	}
}

// rot180 is a 180-degree rotation in the (a,b) plane: both axes reflect.
func rot180(a, b int) Op {
	fa, fb := flip(a), flip(b)
	return compose(fa, fb)
}

func transpose(a, b int) Op {
	return func(idx [3]int, shape [3]int) [3]int {
		out := idx
		out[a], out[b] = idx[b], idx[a]
		return out
	}
}

func flipAll() Op {
	f0, f1, f2 := flip(0), flip(1), flip(2)
	return compose(f0, compose(f1, f2))
}

// compose returns the Op that applies g then f.
func compose(f, g Op) Op {
	return func(idx [3]int, shape [3]int) [3]int {
		return f(g(idx, shape), shape)
	}
}

// probeShape is a small cube, so every generator (including rot90 and
// transpose) maps it onto itself and closure stays finite; each point
// group acts faithfully on its 8 voxels, so an Op's action on it
// uniquely identifies the Op (order <= 48).
var probeShape = [3]int{2, 2, 2}

func signature(op Op) string {
	s := ""
	for i := 0; i < probeShape[0]; i++ {
		for j := 0; j < probeShape[1]; j++ {
			for k := 0; k < probeShape[2]; k++ {
				out := op([3]int{i, j, k}, probeShape)
				s += fmt.Sprintf("%d,%d,%d;", out[0], out[1], out[2])
			}
		}
	}
	return s
}

// closure computes the full group generated by `gens` under
// composition, returning one representative Op per distinct group
// element (deduplicated by their action on probeShape).
func closure(gens []Op) []Op {
	seen := map[string]Op{signature(identity): identity}
	frontier := []Op{identity}
	for len(frontier) > 0 {
		var next []Op
		for _, f := range frontier {
			for _, g := range gens {
				cand := compose(f, g)
				sig := signature(cand)
				if _, ok := seen[sig]; !ok {
					seen[sig] = cand
					next = append(next, cand)
				}
			}
		}
		frontier = next
	}
	ops := make([]Op, 0, len(seen))
	for _, op := range seen {
		ops = append(ops, op)
	}
	return ops
}
