// Package cmn provides common error kinds, retry helpers, and small
// utilities shared by every nxreduce package.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds surfaced across stage boundaries (spec §7).
type ErrKind int

const (
	ErrNotFound ErrKind = iota
	ErrLockTimeout
	ErrPrereqIncomplete
	ErrSubprocessFailed
	ErrInvalidGrid
	ErrRefinementFailed
	ErrIO
)

func (k ErrKind) String() string {
	switch k {
	case ErrNotFound:
		return "not-found"
	case ErrLockTimeout:
		return "lock-timeout"
	case ErrPrereqIncomplete:
		return "prereq-incomplete"
	case ErrSubprocessFailed:
		return "subprocess-failed"
	case ErrInvalidGrid:
		return "invalid-grid"
	case ErrRefinementFailed:
		return "refinement-failed"
	case ErrIO:
		return "io"
	default:
		return "unknown"
	}
}

// StageError is the concrete error type returned by stage implementations.
// It carries the ErrKind so that callers (CLI, task server) can decide
// whether to record FAILED and whether to retry.
type StageError struct {
	Kind   ErrKind
	Entry  string
	Stage  string
	Detail string
	cause  error
}

func (e *StageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s[%s/%s]: %s: %v", e.Kind, e.Entry, e.Stage, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s[%s/%s]: %s", e.Kind, e.Entry, e.Stage, e.Detail)
}

func (e *StageError) Unwrap() error { return e.cause }

func NewStageError(kind ErrKind, entry, stage, detail string, cause error) *StageError {
	return &StageError{Kind: kind, Entry: entry, Stage: stage, Detail: detail, cause: errors.WithStack(cause)}
}

// IsErrKind reports whether err (or something it wraps) is a StageError
// of the given kind - mirrors the teacher's IsErrBucketLevel predicate style.
func IsErrKind(err error, kind ErrKind) bool {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func NewLockTimeout(path string, cause error) error {
	return NewStageError(ErrLockTimeout, "", "", "lock timeout on "+path, cause)
}

func NewPrereqIncomplete(entry, stage, missing string) error {
	return NewStageError(ErrPrereqIncomplete, entry, stage, "prerequisite not complete: "+missing, nil)
}

func NewSubprocessFailed(entry, stage, cmdline string, cause error) error {
	return NewStageError(ErrSubprocessFailed, entry, stage, "subprocess failed: "+cmdline, cause)
}

func NewInvalidGrid(entry, stage, detail string) error {
	return NewStageError(ErrInvalidGrid, entry, stage, detail, nil)
}

func NewRefinementFailed(entry, stage, detail string, cause error) error {
	return NewStageError(ErrRefinementFailed, entry, stage, detail, cause)
}
