// Package multireduce implements MultiReducer (spec.md §4.7): the
// multi-entry aggregate stages combine, symmetrize, punch, fill,
// total_pdf, delta_pdf, run once per scan across every entry's
// per-entry transform output. Modeled on the teacher's xaction
// orchestration style (xs/brename.go): a stage struct holding its
// inputs, guarded by "already complete"/"overwrite", recording a
// process record into the wrapper file on success.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package multireduce

import (
	"context"
	"math"
	"time"

	"github.com/golang/glog"

	"github.com/nxreduce/nxreduce/cctw"
	"github.com/nxreduce/nxreduce/cmn"
	"github.com/nxreduce/nxreduce/filelock"
	"github.com/nxreduce/nxreduce/matern"
	"github.com/nxreduce/nxreduce/nxfile"
	"github.com/nxreduce/nxreduce/pdf"
	"github.com/nxreduce/nxreduce/symmetry"
	"github.com/nxreduce/nxreduce/taskdb"
)

// Reflection is one allowed Bragg reflection, enumerated by the
// external refiner's generator set for the current Laue group
// (spec.md §4.7 "punch").
type Reflection struct {
	H, K, L float64
	Radius  float64 // physical radius, converted to index half-extents at punch time
}

// MultiReducer owns one scan's cross-entry aggregate pipeline.
type MultiReducer struct {
	WrapperPath string
	Wrapper     *nxfile.Wrapper
	DB          *taskdb.Database
	Entries     []string
	CCTW        cctw.Runner
	CCTWBinPath string
	Interp      matern.Interpolator
	LockTimeout time.Duration
}

func New(wrapperPath string, wrapper *nxfile.Wrapper, db *taskdb.Database, entries []string) *MultiReducer {
	return &MultiReducer{
		WrapperPath: wrapperPath,
		Wrapper:     wrapper,
		DB:          db,
		Entries:     entries,
		CCTW:        cctw.NewRunner(),
		LockTimeout: 30 * time.Second,
	}
}

func (m *MultiReducer) notComplete(stage string) bool {
	return !m.Wrapper.HasProcessRecord("entry", stage)
}

func (m *MultiReducer) recordStart(stage string) error {
	return m.DB.StartTask(m.WrapperPath, "entry", stage)
}

func (m *MultiReducer) recordEnd(stage string, rec nxfile.ProcessRecord) error {
	if err := m.Wrapper.WriteProcessRecord("entry", stage, rec); err != nil {
		return err
	}
	return m.DB.EndTask(m.WrapperPath, "entry", stage)
}

func (m *MultiReducer) recordFail(stage string) error {
	return m.DB.FailTask(m.WrapperPath, "entry", stage)
}

// requirePerEntry checks that every sibling entry has completed
// `stage`, per spec.md §5 "combine/symmetrize/pdf require all entries
// complete for the corresponding predecessor".
func (m *MultiReducer) requirePerEntry(stage string) error {
	for _, e := range m.Entries {
		if !m.Wrapper.HasProcessRecord(e, stage) {
			return cmn.NewPrereqIncomplete(e, stage, stage)
		}
	}
	return nil
}

// Combine requires per-entry transform (or masked_transform) complete,
// then merges all entry transform files into one combined volume via
// `cctw merge` (spec.md §4.7 combine/masked_combine).
func (m *MultiReducer) Combine(ctx context.Context, inputs []string, output string, masked bool) error {
	stage, prereq := taskdb.TaskCombine, "nxtransform"
	if masked {
		stage, prereq = taskdb.TaskMaskedCombine, "nxmasked_transform"
	}
	if !m.notComplete(stage) {
		return nil
	}
	if err := m.requirePerEntry(prereq); err != nil {
		return err
	}
	if err := m.recordStart(stage); err != nil {
		return err
	}

	releases := make([]func(), 0, len(inputs)+1)
	defer func() {
		for _, r := range releases {
			r()
		}
	}()
	for _, in := range inputs {
		rel, err := filelock.Scoped(in, m.LockTimeout)
		if err != nil {
			_ = m.recordFail(stage)
			return err
		}
		releases = append(releases, rel)
	}
	relOut, err := filelock.Scoped(output, m.LockTimeout)
	if err != nil {
		_ = m.recordFail(stage)
		return err
	}
	releases = append(releases, relOut)

	res, err := m.CCTW.Merge(ctx, m.CCTWBinPath, inputs, output, m.LockTimeout)
	if err != nil {
		_ = m.recordFail(stage)
		return err
	}
	return m.recordEnd(stage, nxfile.ProcessRecord{
		Program: "nxcombine", Stdout: res.Stdout, Stderr: res.Stderr, CommandLine: res.CommandLine,
	})
}

// SymmetrizeInput holds the per-entry signal/weight volumes to sum
// before applying the Laue-group operator.
type SymmetrizeInput struct {
	Shape       [3]int
	EntrySignal [][]float64
	EntryWeight [][]float64
	Group       symmetry.Group
}

// Symmetrize sums signal and weight across entries, applies the
// Laue-group operator, and attaches Tukey taper weights (spec.md §4.7).
func (m *MultiReducer) Symmetrize(in SymmetrizeInput) (result *symmetry.Volume, weight *symmetry.Volume, taper [][][]float64, err error) {
	const stage = taskdb.TaskSymmetrize
	if !m.notComplete(stage) {
		return nil, nil, nil, nil
	}
	if m.notComplete(taskdb.TaskCombine) && m.notComplete(taskdb.TaskMaskedCombine) {
		return nil, nil, nil, cmn.NewPrereqIncomplete("entry", stage, taskdb.TaskCombine)
	}
	if err := m.recordStart(stage); err != nil {
		return nil, nil, nil, err
	}

	signal := symmetry.NewVolume(in.Shape)
	w := symmetry.NewVolume(in.Shape)
	for e := range in.EntrySignal {
		for idx := range signal.Data {
			signal.Data[idx] += in.EntrySignal[e][idx]
			w.Data[idx] += in.EntryWeight[e][idx]
		}
	}

	engine := symmetry.NewEngine(in.Group)
	result, weight = engine.Symmetrize(signal, w)
	taper = symmetry.TukeyWeights(in.Shape, 0.5)

	if err := m.recordEnd(stage, nxfile.ProcessRecord{Program: "nxcombine", Note: map[string]string{"group": in.Group.String()}}); err != nil {
		return nil, nil, nil, err
	}
	return result, weight, taper, nil
}

// radiusToHalfExtents converts a physical punch radius to index
// half-extents (dhp,dkp,dlp) = round(radius / (d * reciprocal-lattice))
// per spec.md §4.7 "punch".
func radiusToHalfExtents(radius float64, reciprocalSpacing [3]float64) [3]int {
	var out [3]int
	for i, d := range reciprocalSpacing {
		if d == 0 {
			continue
		}
		out[i] = int(math.Round(radius / d))
	}
	return out
}

// Punch zeros a 3D ellipsoidal region around every allowed reflection,
// then re-symmetrizes the punch mask (spec.md §4.7 "punch").
func (m *MultiReducer) Punch(vol *symmetry.Volume, reflections []Reflection, reciprocalSpacing [3]float64, indexOf func(h, k, l float64) (i, j, k2 int, ok bool), engine *symmetry.Engine) (*symmetry.Volume, error) {
	const stage = taskdb.TaskPunch
	if !m.notComplete(stage) {
		return vol, nil
	}
	if err := m.recordStart(stage); err != nil {
		return nil, err
	}

	mask := symmetry.NewVolume(vol.Shape)
	for idx := range mask.Data {
		mask.Data[idx] = 1
	}
	for _, r := range reflections {
		ih, ik, il, ok := indexOf(r.H, r.K, r.L)
		if !ok {
			continue
		}
		half := radiusToHalfExtents(r.Radius, reciprocalSpacing)
		punchEllipsoid(mask, vol.Shape, [3]int{ih, ik, il}, half)
	}

	symMask, symW := engine.Symmetrize(mask, mask)
	_ = symW
	out := symmetry.NewVolume(vol.Shape)
	for idx := range out.Data {
		if symMask.Data[idx] < 0.5 {
			out.Data[idx] = 0
		} else {
			out.Data[idx] = vol.Data[idx]
		}
	}

	if err := m.recordEnd(stage, nxfile.ProcessRecord{Program: "nxcombine", Note: map[string]string{"reflections": itoa(len(reflections))}}); err != nil {
		return nil, err
	}
	return out, nil
}

func punchEllipsoid(mask *symmetry.Volume, shape [3]int, center [3]int, half [3]int) {
	for di := -half[0]; di <= half[0]; di++ {
		i := center[0] + di
		if i < 0 || i >= shape[0] {
			continue
		}
		for dj := -half[1]; dj <= half[1]; dj++ {
			j := center[1] + dj
			if j < 0 || j >= shape[1] {
				continue
			}
			for dk := -half[2]; dk <= half[2]; dk++ {
				k := center[2] + dk
				if k < 0 || k >= shape[2] {
					continue
				}
				if ellipsoidContains(di, dj, dk, half) {
					mask.Set(i, j, k, 0)
				}
			}
		}
	}
}

func ellipsoidContains(di, dj, dk int, half [3]int) bool {
	var sum float64
	for _, pair := range [][2]int{{di, half[0]}, {dj, half[1]}, {dk, half[2]}} {
		if pair[1] == 0 {
			if pair[0] != 0 {
				return false
			}
			continue
		}
		v := float64(pair[0]) / float64(pair[1])
		sum += v * v
	}
	return sum <= 1.0
}

// Fill replaces the punched-out zeros with a Matern-3 Laplacian
// interpolation computed by the external interpolator, overwriting the
// original symmetric volume in place at the filled indices (spec.md
// §4.7 "fill").
func (m *MultiReducer) Fill(ctx context.Context, vol *symmetry.Volume, punched *symmetry.Volume, reflections []Reflection, reciprocalSpacing [3]float64, indexOf func(h, k, l float64) (i, j, k int, ok bool)) (*symmetry.Volume, error) {
	const stage = taskdb.TaskFill
	if !m.notComplete(stage) {
		return vol, nil
	}
	if err := m.recordStart(stage); err != nil {
		return nil, err
	}

	dense := toDense3(punched)
	var indices []matern.Index3
	for _, r := range reflections {
		ih, ik, il, ok := indexOf(r.H, r.K, r.L)
		if !ok {
			continue
		}
		half := radiusToHalfExtents(r.Radius, reciprocalSpacing)
		for di := -half[0]; di <= half[0]; di++ {
			i := ih + di
			if i < 0 || i >= vol.Shape[0] {
				continue
			}
			for dj := -half[1]; dj <= half[1]; dj++ {
				j := ik + dj
				if j < 0 || j >= vol.Shape[1] {
					continue
				}
				for dk := -half[2]; dk <= half[2]; dk++ {
					k := il + dk
					if k < 0 || k >= vol.Shape[2] {
						continue
					}
					if ellipsoidContains(di, dj, dk, half) {
						indices = append(indices, matern.Index3{Z: i, Y: j, X: k})
					}
				}
			}
		}
	}

	filled, err := m.Interp.Fill(ctx, dense, indices)
	if err != nil {
		_ = m.recordFail(stage)
		return nil, err
	}

	out := symmetry.NewVolume(vol.Shape)
	copy(out.Data, vol.Data)
	for _, idx := range indices {
		out.Set(idx.Z, idx.Y, idx.X, filled[idx.Z][idx.Y][idx.X])
	}

	if err := m.recordEnd(stage, nxfile.ProcessRecord{Program: "nxcombine", Note: map[string]string{"filled": itoa(len(indices))}}); err != nil {
		return nil, err
	}
	return out, nil
}

func toDense3(v *symmetry.Volume) [][][]float64 {
	out := make([][][]float64, v.Shape[0])
	for i := range out {
		out[i] = make([][]float64, v.Shape[1])
		for j := range out[i] {
			out[i][j] = make([]float64, v.Shape[2])
			for k := range out[i][j] {
				out[i][j][k] = v.At(i, j, k)
			}
		}
	}
	return out
}

// TotalPDF and DeltaPDF drive pdf.Compute over the symmetrized and
// filled volumes respectively (spec.md §4.7).
func (m *MultiReducer) TotalPDF(shape [3]int, symmetrized []float64, lattice pdf.Lattice) (pdf.Result, error) {
	return m.runPDF(taskdb.TaskTotalPDF, shape, symmetrized, lattice)
}

func (m *MultiReducer) DeltaPDF(shape [3]int, filled []float64, lattice pdf.Lattice) (pdf.Result, error) {
	return m.runPDF(taskdb.TaskDeltaPDF, shape, filled, lattice)
}

func (m *MultiReducer) runPDF(stage string, shape [3]int, data []float64, lattice pdf.Lattice) (pdf.Result, error) {
	if !m.notComplete(stage) {
		return pdf.Result{}, nil
	}
	if err := m.recordStart(stage); err != nil {
		return pdf.Result{}, err
	}
	res := pdf.Compute(shape, data, lattice)
	if err := m.recordEnd(stage, nxfile.ProcessRecord{Program: "nxpdf"}); err != nil {
		return pdf.Result{}, err
	}
	glog.Infof("nxpdf: %s scaling_factor=%v", stage, res.ScalingFactor)
	return res, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
