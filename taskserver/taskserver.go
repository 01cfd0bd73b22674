// Package taskserver implements the in-memory FIFO of shell-equivalent
// task descriptors described in spec.md §4.3: workers pop in FIFO order,
// either a pool of local goroutine workers (multicore) or a static list
// of named hosts (cluster); the server publishes its PID under tasks/.
// Queued tasks are not persisted and are lost when the server exits.
// Modeled on the teacher's stream collector (a long-running singleton
// with its own control channel, transport/collect.go) and its
// golang.org/x/sync/errgroup-driven worker pools.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package taskserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/nxreduce/nxreduce/metrics"
)

const pidFileName = "nxserver.pid"

// Mode selects how queued commands are dispatched.
type Mode int

const (
	Multicore Mode = iota
	Cluster
)

// Task is one shell-equivalent command descriptor.
type Task struct {
	Cmd  string `json:"cmd"`
	Host string `json:"host,omitempty"` // set by the dispatcher in Cluster mode
}

// Runner executes one task to completion. The server does not requeue a
// task whose Runner returns an error, and it keeps no copy of queued
// tasks outside memory.
type Runner func(ctx context.Context, t Task) error

// Server is an in-memory FIFO of commands consumed by a worker pool.
type Server struct {
	tasksDir string
	mode     Mode
	hosts    []string
	workers  int
	run      Runner

	mu    sync.Mutex
	queue []Task
	cond  *sync.Cond

	logPaths map[string]string // per-host log file paths
}

// New constructs a Server. In Multicore mode `workers` goroutines drain
// the queue; in Cluster mode one slot is reserved per host and `hosts`
// must be non-empty.
func New(tasksDir string, mode Mode, workers int, hosts []string, run Runner) *Server {
	s := &Server{
		tasksDir: tasksDir,
		mode:     mode,
		hosts:    hosts,
		workers:  workers,
		run:      run,
		logPaths: make(map[string]string),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// WritePIDFile publishes this server's PID at tasks/nxserver.pid
// (spec.md §4.3/§4.4).
func (s *Server) WritePIDFile() error {
	if err := os.MkdirAll(s.tasksDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.tasksDir, pidFileName), []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}

func (s *Server) RemovePIDFile() error {
	err := os.Remove(filepath.Join(s.tasksDir, pidFileName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// AddTask appends a command to the FIFO tail.
func (s *Server) AddTask(cmd string) {
	s.mu.Lock()
	s.queue = append(s.queue, Task{Cmd: cmd})
	s.mu.Unlock()
	metrics.TasksQueued.Inc()
	s.cond.Signal()
}

// pop removes and returns the FIFO head, blocking until one is
// available or ctx is cancelled.
func (s *Server) pop(ctx context.Context) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 {
		if ctx.Err() != nil {
			return Task{}, false
		}
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.cond.Broadcast()
			case <-done:
			}
		}()
		s.cond.Wait()
		close(done)
		if ctx.Err() != nil {
			return Task{}, false
		}
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	metrics.TasksQueued.Dec()
	return t, true
}

// Run drives the worker pool until ctx is cancelled. Multicore spawns
// `workers` goroutines; Cluster reserves one slot per named host.
func (s *Server) Run(ctx context.Context) error {
	slots := s.workers
	names := make([]string, slots)
	for i := range names {
		names[i] = fmt.Sprintf("worker-%d", i)
	}
	if s.mode == Cluster {
		slots = len(s.hosts)
		names = append([]string(nil), s.hosts...)
	}
	if slots <= 0 {
		slots = 1
		names = []string{"worker-0"}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < slots; i++ {
		name := names[i]
		g.Go(func() error {
			return s.workerLoop(ctx, name)
		})
	}
	return g.Wait()
}

func (s *Server) workerLoop(ctx context.Context, name string) error {
	for {
		t, ok := s.pop(ctx)
		if !ok {
			return nil
		}
		t.Host = name
		s.logTask(name, t)
		timer := prometheus.NewTimer(metrics.StageDuration.WithLabelValues(t.Cmd))
		err := s.run(ctx, t)
		timer.ObserveDuration()
		if err != nil {
			metrics.TasksFailed.WithLabelValues(t.Cmd).Inc()
			glog.Errorf("taskserver[%s]: task %q failed: %v", name, t.Cmd, err)
			// crash/failure of one task never drops the server: continue draining.
			continue
		}
		metrics.TasksCompleted.WithLabelValues(t.Cmd).Inc()
	}
}

func (s *Server) logTask(host string, t Task) {
	path := s.logPaths[host]
	if path == "" {
		path = filepath.Join(s.tasksDir, fmt.Sprintf("nxserver_%s.log", host))
		s.logPaths[host] = path
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		glog.Warningf("taskserver: cannot open per-host log %s: %v", path, err)
		return
	}
	defer f.Close()
	line, _ := json.Marshal(t)
	fmt.Fprintln(f, string(line))
}
