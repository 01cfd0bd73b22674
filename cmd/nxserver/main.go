// Command nxserver runs the in-memory task FIFO and worker pool
// (spec.md §4.3), exposing Prometheus metrics and writing its PID to
// tasks/nxserver.pid.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang/glog"

	"github.com/nxreduce/nxreduce/cmn/config"
	"github.com/nxreduce/nxreduce/metrics"
	"github.com/nxreduce/nxreduce/taskserver"
)

func main() {
	fs := flag.NewFlagSet("nxserver", flag.ExitOnError)
	directory := fs.String("d", ".", "root directory (tasks/ lives under <directory>/tasks)")
	metricsAddr := fs.String("metrics-addr", ":9400", "Prometheus /metrics listen address")
	_ = fs.Parse(os.Args[1:])

	cfg := config.Global()
	tasksDir := filepath.Join(*directory, "tasks")

	mode := taskserver.Multicore
	hosts := cfg.Cluster.Hosts
	if len(hosts) > 0 {
		mode = taskserver.Cluster
	}
	workers := cfg.Cluster.Multicore
	if workers <= 0 {
		workers = 1
	}

	srv := taskserver.New(tasksDir, mode, workers, hosts, runShellTask)
	if err := srv.WritePIDFile(); err != nil {
		glog.Fatalf("nxserver: write pid file: %v", err)
	}
	defer srv.RemovePIDFile()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			glog.Warningf("nxserver: metrics server: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		glog.Errorf("nxserver: %v", err)
		os.Exit(1)
	}
}

// runShellTask executes a task's command line as a subprocess, the way
// the FIFO's entries are "shell-equivalent task descriptors" per
// spec.md §4.3.
func runShellTask(ctx context.Context, t taskserver.Task) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", t.Cmd)
	return cmd.Run()
}
