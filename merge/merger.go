package merge

import (
	"encoding/binary"
	"sort"

	"github.com/OneOfOne/xxhash"
	cuckoo "github.com/seiflotfy/cuckoofilter"

	"github.com/nxreduce/nxreduce/blob"
)

const bucketGrid = 8.0 // pixel bucket size for the cuckoo pre-filter

// Merger coalesces raw per-frame blobs into multi-frame Peaks following
// spec.md §4.5. Defaults frame_tolerance=10, pixel_tolerance=50.
type Merger struct {
	FrameTolerance int
	PixelTolerance float64
	arena          *Arena
}

func New(frameTolerance int, pixelTolerance float64) *Merger {
	if frameTolerance <= 0 {
		frameTolerance = 10
	}
	if pixelTolerance <= 0 {
		pixelTolerance = 50
	}
	return &Merger{FrameTolerance: frameTolerance, PixelTolerance: pixelTolerance, arena: NewArena()}
}

// bucketKey hashes a bucket coordinate pair down to a fixed-size digest
// via xxhash, the way the cuckoo filter's fixed-width fingerprint slots
// expect, rather than feeding it the raw 8-byte coordinate pair.
func bucketKey(x, y float64) []byte {
	bx := int32(x / bucketGrid)
	by := int32(y / bucketGrid)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(bx))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(by))
	sum := xxhash.Checksum64(buf)
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, sum)
	return out
}

// nearbyBuckets returns the 3x3 neighborhood of buckets around (x,y) so
// the pre-filter check does not miss matches that straddle a bucket
// boundary.
func nearbyBuckets(x, y float64) [][]byte {
	keys := make([][]byte, 0, 9)
	for dx := -bucketGrid; dx <= bucketGrid; dx += bucketGrid {
		for dy := -bucketGrid; dy <= bucketGrid; dy += bucketGrid {
			keys = append(keys, bucketKey(x+dx, y+dy))
		}
	}
	return keys
}

// Merge runs the full algorithm over raw (pre-sorted-by-z not required;
// Merge sorts) blobs for frames [first,last) and returns the resulting
// merged peaks.
func (m *Merger) Merge(raw []blob.Peak) []blob.Peak {
	sorted := append([]blob.Peak(nil), raw...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Z < sorted[j].Z })

	filter := cuckoo.NewFilter(1 << 16)
	var merged []blob.Peak
	var prevFrameIdx []int // indices into merged[] updated during the previous frame

	i := 0
	for i < len(sorted) {
		z := sorted[i].Z
		var curFrameIdx []int
		for i < len(sorted) && sorted[i].Z == z {
			raw := sorted[i]
			raw.FrameTolerance = m.FrameTolerance
			raw.PixelTolerance = m.PixelTolerance
			rawIdx := m.arena.Add(raw)

			matched := -1
			for _, mi := range prevFrameIdx {
				if merged[mi].Equal(raw) {
					matched = mi
					break
				}
			}
			if matched == -1 && m.mayHaveNeighbor(filter, raw) {
				for j := len(merged) - 1; j >= 0; j-- {
					if merged[j].Z < raw.Z-float64(m.FrameTolerance) {
						break
					}
					if merged[j].Equal(raw) {
						matched = j
						break
					}
				}
			}

			if matched >= 0 {
				merged[matched] = m.combine(merged[matched], rawIdx)
			} else {
				np := blob.Peak{
					NP: raw.NP, Average: raw.Average, X: raw.X, Y: raw.Y, Z: raw.Z,
					SigX: raw.SigX, SigY: raw.SigY, CovXY: raw.CovXY,
					FrameTolerance: m.FrameTolerance, PixelTolerance: m.PixelTolerance,
					Peaks: []int{rawIdx}, Combined: true,
				}
				merged = append(merged, np)
				matched = len(merged) - 1
			}
			for _, k := range nearbyBuckets(raw.X, raw.Y) {
				filter.InsertUnique(k)
			}
			curFrameIdx = append(curFrameIdx, matched)
			i++
		}
		prevFrameIdx = curFrameIdx
	}

	for idx := range merged {
		merged[idx] = m.recompute(merged[idx])
	}
	return merged
}

// mayHaveNeighbor is the cheap pre-check: it looks up every bucket
// within PixelTolerance of (x,y) (insertion already spreads each raw blob
// over its own bucket and the eight around it); if none was ever
// populated by a prior raw blob, there is nothing in range for the O(n)
// reversed scan to find, so it can be skipped outright on dense frames.
func (m *Merger) mayHaveNeighbor(filter *cuckoo.Filter, p blob.Peak) bool {
	reach := int(m.PixelTolerance / bucketGrid)
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			if filter.Lookup(bucketKey(p.X+float64(dx)*bucketGrid, p.Y+float64(dy)*bucketGrid)) {
				return true
			}
		}
	}
	return false
}

// combine unions rawIdx into the merged peak at index `into`, per the
// "union the matched merged-peak's peaks list with the new peak" rule.
func (m *Merger) combine(into blob.Peak, rawIdx int) blob.Peak {
	into.Peaks = append(into.Peaks, rawIdx)
	return into
}

// recompute derives the final moment-weighted centroid for a merged
// peak from its absorbed raw blobs, per spec.md §4.5.
func (m *Merger) recompute(p blob.Peak) blob.Peak {
	var (
		totalIntensity float64
		np             int
		x, y, z        float64
		sigx, sigy     float64
		covxy          float64
	)
	for _, idx := range p.Peaks {
		raw := m.arena.Get(idx)
		w := raw.Intensity()
		totalIntensity += w
		np += raw.NP
		x += raw.X * w
		y += raw.Y * w
		z += raw.Z * w
		sigx += raw.SigX * w
		sigy += raw.SigY * w
		covxy += raw.CovXY * w
	}
	if totalIntensity == 0 {
		return p
	}
	p.NP = np
	p.X = x / totalIntensity
	p.Y = y / totalIntensity
	p.Z = z / totalIntensity
	p.SigX = sigx / totalIntensity
	p.SigY = sigy / totalIntensity
	p.CovXY = covxy / totalIntensity
	p.Average = totalIntensity / float64(np)
	return p
}

// Arena exposes the underlying raw-blob arena, e.g. for tests that want
// to inspect which raw blobs a merged peak absorbed.
func (m *Merger) Arena() *Arena { return m.arena }
