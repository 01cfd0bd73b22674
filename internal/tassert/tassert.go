// Package tassert provides the terse assertion helpers every package's
// tests call (CheckError, CheckFatal, Errorf, Fatalf), matching the
// call sites used throughout aistore's own test suite even though
// devtools/tassert itself wasn't part of the retrieved pack.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package tassert

import "testing"

// CheckFatal stops the test immediately if err is non-nil.
func CheckFatal(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
}

// CheckError records a failure but lets the test continue if err is non-nil.
func CheckError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("err: %v", err)
	}
}

// Fatalf stops the test immediately if cond is false.
func Fatalf(t *testing.T, cond bool, f string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(f, args...)
	}
}

// Errorf records a failure but lets the test continue if cond is false.
func Errorf(t *testing.T, cond bool, f string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Errorf(f, args...)
	}
}
