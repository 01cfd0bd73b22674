// Package config holds the process-wide global configuration object,
// mirroring the teacher's cmn.GCO hot-reloadable config holder.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"encoding/json"
	"os"
	"sync/atomic"
)

// MaskRadius holds the peak-radius model r(f) = c + a*f^b used by `prepare`
// (spec.md §4.6, §9). c is carried from the source as -94.21 (-134.21+40)
// and flagged as possibly-buggy: it should probably be configurable rather
// than a baked-in constant - which is exactly why it lives here and not as
// a literal in the prepare stage.
type MaskRadius struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

type Peaks struct {
	FrameTolerance int     `json:"frame_tolerance"`
	PixelTolerance float64 `json:"pixel_tolerance"`
	MinPixelCount  int     `json:"min_pixel_count"`
}

type Subprocess struct {
	CCTWPath    string `json:"cctw_path"`
	MaternPath  string `json:"matern_path"`
	TimeoutSecs int    `json:"timeout_secs"`
}

type Memory struct {
	HeadroomMB int64 `json:"headroom_mb"`
	LimitMB    int64 `json:"limit_mb"`
}

type Cluster struct {
	Hosts     []string `json:"hosts"`
	Multicore int      `json:"multicore_workers"`
}

type Config struct {
	Root        string     `json:"root"`
	ChunkFrames int        `json:"chunk_frames"` // default 50, spec.md §5 "Memory policy"
	Mask        MaskRadius `json:"mask_radius"`
	Peaks       Peaks      `json:"peaks"`
	Subprocess  Subprocess `json:"subprocess"`
	Memory      Memory     `json:"memory"`
	Cluster     Cluster    `json:"cluster"`
}

func defaultConfig() *Config {
	return &Config{
		ChunkFrames: 50,
		Mask: MaskRadius{
			A: 1.3858,
			B: 0.330556764635949,
			C: -94.21,
		},
		Peaks: Peaks{
			FrameTolerance: 10,
			PixelTolerance: 50,
			MinPixelCount:  5,
		},
		Subprocess: Subprocess{
			CCTWPath:    "cctw",
			MaternPath:  "matern_3d_grid",
			TimeoutSecs: 3600,
		},
		Memory: Memory{
			HeadroomMB: 1000,
			LimitMB:    0, // 0 == unset: raised lazily, see memlimit package
		},
		Cluster: Cluster{
			Multicore: 1,
		},
	}
}

// gco is the teacher's GCO pattern: a process-wide, atomically swapped
// config pointer so readers never race a reload.
var gco atomic.Pointer[Config]

func init() {
	gco.Store(defaultConfig())
}

// Global returns the current process-wide configuration.
func Global() *Config { return gco.Load() }

// Load merges a JSON config file (if present) over the packaged default
// and installs it as the new global config. Mirrors the teacher's
// config-directory discovery: silently keep defaults if the file is absent.
func Load(path string) error {
	cfg := defaultConfig()
	if path == "" {
		gco.Store(cfg)
		return nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		gco.Store(cfg)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return err
	}
	gco.Store(cfg)
	return nil
}
