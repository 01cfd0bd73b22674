// Package bind is the one seam every nxreduce CLI entrypoint calls
// through to reach the hierarchical file container (spec.md §1
// "deliberately out of scope... treated as an opaque group/field store
// with file-level locks"). Binding -d/-e into a live wrapper tree, raw
// frame source, and detector-calibration/refinement collaborators is
// the job of that external library in a real deployment; this package
// gives every main.go a single injection point (Open) rather than each
// one improvising its own half of a file-format binding.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package bind

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nxreduce/nxreduce/cmn/config"
	"github.com/nxreduce/nxreduce/geometry"
	"github.com/nxreduce/nxreduce/nxfile"
	"github.com/nxreduce/nxreduce/reduce"
	"github.com/nxreduce/nxreduce/taskdb"
)

// Scan bundles everything a CLI entrypoint needs for one wrapper file:
// the open wrapper tree, the task database, and the per-entry
// collaborators an entrypoint wires into a reduce.Reducer.
type Scan struct {
	WrapperPath string
	Wrapper     *nxfile.Wrapper
	DB          *taskdb.Database
	Sample      string
	Label       string
	ScanName    string
}

// Opener constructs a Scan from a scan directory. Production
// deployments install the real hierarchical-container binding here via
// SetOpener; the default Opener below only opens the task database
// (a real nxreduce-native concern) and returns a fresh, empty wrapper
// tree, since loading a populated wrapper requires the external
// container library spec.md §1 places out of scope.
type Opener func(directory string) (*Scan, error)

var opener Opener = defaultOpener

// SetOpener installs the real wrapper-file binding. Call once at
// process startup before Open.
func SetOpener(o Opener) { opener = o }

// Open resolves a scan directory into a Scan using the installed Opener.
func Open(directory string) (*Scan, error) {
	if opener == nil {
		return nil, errors.New("bind: no opener installed")
	}
	return opener(directory)
}

func defaultOpener(directory string) (*Scan, error) {
	if err := config.Load(filepath.Join(directory, "nxreduce.json")); err != nil {
		return nil, fmt.Errorf("bind: load config: %w", err)
	}
	tasksDir := filepath.Join(directory, "tasks")
	db, err := taskdb.Open(filepath.Join(tasksDir, "nxdatabase.db"))
	if err != nil {
		return nil, fmt.Errorf("bind: open task database: %w", err)
	}
	return &Scan{
		WrapperPath: directory,
		Wrapper:     nxfile.NewWrapper(),
		DB:          db,
		ScanName:    filepath.Base(directory),
	}, nil
}

// NewReducer builds a reduce.Reducer for one entry of this scan, wiring
// the geometry integrator and refiner the caller supplies (nil
// is valid: stages that don't need them will surface PrereqIncomplete
// or NotFound rather than panic).
func (s *Scan) NewReducer(entry string, raw reduce.RawSource, integrator geometry.Integrator, refiner geometry.Refiner) *reduce.Reducer {
	r := reduce.New(entry, s.Label, s.Sample, s.ScanName, s.WrapperPath, s.Wrapper, s.DB, raw)
	r.Integrator = integrator
	r.Refiner = refiner
	return r
}
