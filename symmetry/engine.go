package symmetry

import "fmt"

// Group tags one of the 11 Laue groups named in spec.md §9. -3/-3m and
// 6/m/6/mmm are explicit simplifications, carried over from the source:
// -3,-3m are treated as -1; 6/m,6/mmm are modeled as 2/m along c.
type Group int

const (
	GroupBar1 Group = iota // -1
	Group2M                // 2/m
	GroupMmm                // mmm
	Group4M                 // 4/m
	Group4Mmm                // 4/mmm
	GroupBar3                 // -3 (== -1)
	GroupBar3M                // -3m (== -1)
	Group6M                    // 6/m (== 2/m along c)
	Group6Mmm                  // 6/mmm (== 2/m along c)
	GroupMBar3                 // m-3
	GroupMBar3M                 // m-3m
)

func (g Group) String() string {
	switch g {
	case GroupBar1:
		return "-1"
	case Group2M:
		return "2/m"
	case GroupMmm:
		return "mmm"
	case Group4M:
		return "4/m"
	case Group4Mmm:
		return "4/mmm"
	case GroupBar3:
		return "-3"
	case GroupBar3M:
		return "-3m"
	case Group6M:
		return "6/m"
	case Group6Mmm:
		return "6/mmm"
	case GroupMBar3:
		return "m-3"
	case GroupMBar3M:
		return "m-3m"
	default:
		return "unknown"
	}
}

// generators implements the table in spec.md §9 exactly, one entry per
// group, each a list of generator ops composed in order.
func generators(g Group) []Op {
	switch g {
	case GroupBar1, GroupBar3, GroupBar3M:
		return []Op{flipAll()}
	case Group2M:
		return []Op{rot180(0, 2), flip(0)}
	case GroupMmm:
		return []Op{flip(0), flip(1), flip(2)}
	case Group4M:
		return []Op{rot90(1, 2), rot180(1, 2), flip(0)}
	case Group4Mmm:
		return []Op{rot90(1, 2), rot180(1, 2), rot180(0, 1), flip(0)}
	case Group6M, Group6Mmm:
		return []Op{rot180(1, 2), flip(0)}
	case GroupMBar3, GroupMBar3M:
		return []Op{transpose(0, 1), transpose(1, 2), flip(0), flip(1), flip(2)}
	default:
		panic(fmt.Sprintf("symmetry: unknown group %v", g))
	}
}

// Engine symmetrizes signal/weight volume pairs under a fixed Laue group.
type Engine struct {
	group Group
	ops   []Op
}

func NewEngine(group Group) *Engine {
	return &Engine{group: group, ops: closure(generators(group))}
}

func (e *Engine) Group() Group { return e.group }

// Symmetrize sums signal and weight across the group orbit and
// normalises: result = signal/weight where weight > 0, else 0
// (spec.md §4.7, invariant (vi) of spec.md §3).
func (e *Engine) Symmetrize(signal, weight *Volume) (result, outWeight *Volume) {
	shape := signal.Shape
	sumSignal := NewVolume(shape)
	sumWeight := NewVolume(shape)

	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				idx := [3]int{i, j, k}
				var sAcc, wAcc float64
				for _, op := range e.ops {
					o := op(idx, shape)
					sAcc += signal.At(o[0], o[1], o[2])
					wAcc += weight.At(o[0], o[1], o[2])
				}
				sumSignal.Set(i, j, k, sAcc)
				sumWeight.Set(i, j, k, wAcc)
			}
		}
	}

	result = NewVolume(shape)
	for idx := range result.Data {
		if sumWeight.Data[idx] > 0 {
			result.Data[idx] = sumSignal.Data[idx] / sumWeight.Data[idx]
		}
	}
	return result, sumWeight
}
