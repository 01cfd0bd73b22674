// Command nxqueue appends QUEUED rows for the requested entries/stages
// to the task database rather than running them directly (spec.md §4.9
// "queue() -> QUEUED"). It is the only entrypoint that queues; the -q
// flag of the other entrypoints is parsed but not acted on.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/nxreduce/nxreduce/cmd/internal/bind"
	"github.com/nxreduce/nxreduce/cmd/internal/cliutil"
)

func main() {
	fs := flag.NewFlagSet("nxqueue", flag.ExitOnError)
	stages := fs.String("stages", "", "comma-separated stage names to queue")
	c := cliutil.Parse(fs, " -stages nxlink,nxmax,...")

	scan, err := bind.Open(c.Directory)
	if err != nil {
		cliutil.Fail("nxqueue", err)
	}
	if *stages == "" {
		cliutil.Fail("nxqueue", errMissingStages)
	}

	failed := false
	for _, entry := range c.Entries {
		for _, stage := range strings.Split(*stages, ",") {
			if err := scan.DB.QueueTask(scan.WrapperPath, entry, stage); err != nil {
				os.Stderr.WriteString("nxqueue[" + entry + "/" + stage + "]: " + err.Error() + "\n")
				failed = true
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

var errMissingStages = stagesErr("nxqueue: -stages is required")

type stagesErr string

func (e stagesErr) Error() string { return string(e) }
