// Package memlimit implements the memory policy singleton of spec.md §5:
// before PDF, the symmetrized volume's size is checked against a
// configured limit; if it exceeds the limit, the limit is raised by
// totalSize + 1000MB. Modeled on the teacher's memsys.MMSA singleton
// with explicit init/teardown (spec.md §9 "Global state").
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package memlimit

import "sync/atomic"

const MB = int64(1 << 20)

var limitBytes int64

// Init installs the starting limit, in MB. Zero means "unset": the
// first CheckAndRaise call establishes it from the volume it's given.
func Init(limitMB int64) { atomic.StoreInt64(&limitBytes, limitMB*MB) }

// Teardown resets to the unset state.
func Teardown() { atomic.StoreInt64(&limitBytes, 0) }

func Limit() int64 { return atomic.LoadInt64(&limitBytes) }

// CheckAndRaise compares totalSize against the current limit; if it
// exceeds it (or no limit is set yet), the limit is raised to
// totalSize + headroomMB, per spec.md §5.
func CheckAndRaise(totalSize int64, headroomMB int64) int64 {
	headroom := headroomMB * MB
	for {
		cur := atomic.LoadInt64(&limitBytes)
		if cur != 0 && totalSize <= cur {
			return cur
		}
		next := totalSize + headroom
		if atomic.CompareAndSwapInt64(&limitBytes, cur, next) {
			return next
		}
	}
}
