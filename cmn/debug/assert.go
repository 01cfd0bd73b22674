//go:build !nodebug

// Package debug provides assertions compiled out of release builds,
// mirroring the teacher's cmn/debug package.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import "fmt"

const enabled = true

func Assert(cond bool) {
	if enabled && !cond {
		panic("assertion failed")
	}
}

func AssertMsg(cond bool, msg string) {
	if enabled && !cond {
		panic("assertion failed: " + msg)
	}
}

func AssertNoErr(err error) {
	if enabled && err != nil {
		panic(fmt.Sprintf("assertion failed: unexpected error: %v", err))
	}
}

func Assertf(cond bool, format string, args ...interface{}) {
	if enabled && !cond {
		panic("assertion failed: " + fmt.Sprintf(format, args...))
	}
}
