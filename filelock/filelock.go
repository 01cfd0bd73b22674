// Package filelock implements the advisory per-path file lock described
// in spec.md §4.1: a sidecar "<path>.lock" file holding the owning PID,
// acquired by create-if-absent and released by removal, with poll/retry
// up to a timeout. Modeled on the teacher's stream collector lifecycle
// (init/run/stop singleton, transport/collect.go); stale-lock detection
// probes the owner's liveness with the standard library's syscall.Kill.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package filelock

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nxreduce/nxreduce/cmn"
)

const defaultCheckInterval = 200 * time.Millisecond

// FileLock guards exclusive access to a single absolute path via a
// sidecar "<path>.lock" file.
type FileLock struct {
	path     string
	lockPath string
	acquired bool
}

func New(path string) *FileLock {
	return &FileLock{path: path, lockPath: path + ".lock"}
}

// Acquire polls every checkInterval until either the sidecar can be
// created or timeout elapses, in which case it returns a LockTimeout
// error (spec.md §4.1).
func (l *FileLock) Acquire(timeout time.Duration) error {
	return l.AcquireInterval(timeout, defaultCheckInterval)
}

func (l *FileLock) AcquireInterval(timeout, checkInterval time.Duration) error {
	deadline := time.Now().Add(timeout)
	pid := os.Getpid()
	for {
		f, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", pid)
			f.Close()
			l.acquired = true
			return nil
		}
		if !os.IsExist(err) {
			return cmn.NewLockTimeout(l.path, err)
		}
		if l.staleOwnerGone() {
			_ = os.Remove(l.lockPath)
			continue
		}
		if time.Now().After(deadline) {
			return cmn.NewLockTimeout(l.path, fmt.Errorf("timed out after %s", timeout))
		}
		time.Sleep(checkInterval)
	}
}

// staleOwnerGone returns true when the sidecar names a PID that is no
// longer alive, meaning it was abandoned by a process that crashed
// before releasing the lock.
func (l *FileLock) staleOwnerGone() bool {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	// Signal 0 performs no actual kill, only an existence/permission check.
	if err := syscall.Kill(pid, 0); err == syscall.ESRCH {
		return true
	}
	return false
}

// Release removes the sidecar. Safe to call even if Acquire never
// succeeded (no-op).
func (l *FileLock) Release() error {
	if !l.acquired {
		return nil
	}
	l.acquired = false
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Scoped acquires the lock and returns a release func guaranteed to run
// on normal and abnormal exit via the caller's `defer`, matching
// spec.md §4.1 "scoped acquisition guarantees release".
func Scoped(path string, timeout time.Duration) (release func(), err error) {
	l := New(path)
	if err := l.Acquire(timeout); err != nil {
		return func() {}, err
	}
	return func() { _ = l.Release() }, nil
}
