// Package reduce implements Reducer (spec.md §2 item 7, §4.6): the
// per-entry stage chain link, max, find, copy, refine, prepare,
// transform, masked_transform. Every stage is gated by not_complete
// and an overwrite flag, records start/end/fail into both the wrapper
// file and the task database, and refuses to run ahead of its
// prerequisite (spec.md §5 "Ordering"). Modeled on the teacher's
// xaction lifecycle (xact.go Run/Abort pattern): a stage is a small
// struct method that begins with a registry-style guard and ends by
// writing a result record, never by mutating shared state mid-flight.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package reduce

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nxreduce/nxreduce/blob"
	"github.com/nxreduce/nxreduce/cctw"
	"github.com/nxreduce/nxreduce/cmn"
	"github.com/nxreduce/nxreduce/cmn/config"
	"github.com/nxreduce/nxreduce/filelock"
	"github.com/nxreduce/nxreduce/geometry"
	"github.com/nxreduce/nxreduce/logger"
	"github.com/nxreduce/nxreduce/merge"
	"github.com/nxreduce/nxreduce/nxfile"
	"github.com/nxreduce/nxreduce/taskdb"
)

// RawSource is the frame-level data access contract nxreduce depends
// on rather than implementing the hierarchical-file-format reader
// itself (spec.md §1 "deliberately out of scope").
type RawSource interface {
	Shape() (frames, height, width int)
	Frame(z int) (blob.Frame, error)
	ReadMetadataFile(name string) ([]byte, error)
}

// Reducer owns one entry's (one detector position's) stage chain.
type Reducer struct {
	Entry       string
	Label       string
	Sample      string
	Scan        string
	WrapperPath string
	Wrapper     *nxfile.Wrapper
	DB          *taskdb.Database
	Raw         RawSource
	Integrator  geometry.Integrator
	Refiner     geometry.Refiner
	CCTW        cctw.Runner
	CCTWBinPath string
	Log         *logger.Logger

	Stopped func() bool // polled at chunk boundaries of find/max, spec.md §5 "Cancellation"
}

func New(entry, label, sample, scan, wrapperPath string, wrapper *nxfile.Wrapper, db *taskdb.Database, raw RawSource) *Reducer {
	return &Reducer{
		Entry: entry, Label: label, Sample: sample, Scan: scan,
		WrapperPath: wrapperPath, Wrapper: wrapper, DB: db, Raw: raw,
		CCTW: cctw.NewRunner(),
	}
}

func (r *Reducer) logf(format string, args ...interface{}) {
	if r.Log != nil {
		r.Log.Info(format, args...)
	}
}

// notComplete implements spec.md §4.6 "not_complete(stage)".
func (r *Reducer) notComplete(stage string) bool {
	return !r.Wrapper.HasProcessRecord(r.Entry, stage)
}

func (r *Reducer) complete(stage string) bool {
	return r.Wrapper.HasProcessRecord(r.Entry, stage)
}

func (r *Reducer) requirePrereq(stage, prereq string) error {
	if !r.complete(prereq) {
		return cmn.NewPrereqIncomplete(r.Entry, stage, prereq)
	}
	return nil
}

func (r *Reducer) recordStart(stage string) error {
	return r.DB.StartTask(r.WrapperPath, r.Entry, stage)
}

func (r *Reducer) recordEnd(stage string, rec nxfile.ProcessRecord) error {
	if rec.Note == nil {
		rec.Note = map[string]string{}
	}
	rec.Note["directory"] = r.Scan
	if err := r.Wrapper.WriteProcessRecord(r.Entry, stage, rec); err != nil {
		return err
	}
	return r.DB.EndTask(r.WrapperPath, r.Entry, stage)
}

func (r *Reducer) recordFail(stage string, cause error) error {
	if dberr := r.DB.FailTask(r.WrapperPath, r.Entry, stage); dberr != nil {
		return dberr
	}
	if r.Log != nil {
		r.Log.Error("%s failed: %v", stage, cause)
	}
	return nil
}

// overwrite clears a stage's existing process record so it re-runs,
// per spec.md §4.9 "overwrite: reset from DONE/FAILED to QUEUED".
func (r *Reducer) overwrite(stage string) error {
	r.Wrapper.DeleteProcessRecord(r.Entry, stage)
	return r.DB.QueueTask(r.WrapperPath, r.Entry, stage)
}

// runGuard is the common "already complete / overwrite" gate every
// stage opens with.
func (r *Reducer) runGuard(stage string, force bool) (skip bool, err error) {
	if force && r.complete(stage) {
		if err := r.overwrite(stage); err != nil {
			return false, err
		}
	}
	if r.complete(stage) {
		return true, nil
	}
	return false, r.recordStart(stage)
}

// Link validates the raw file, derives axes, and transfers the
// per-entry metadata logs (spec.md §4.6 "link").
func (r *Reducer) Link(ctx context.Context, force bool) error {
	const stage = taskdb.TaskLink
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return err
	}

	frames, height, width, err := r.shapeOrFail(stage)
	if err != nil {
		return err
	}

	entry := r.Wrapper.Root.EnsureGroup(r.Entry)
	data := entry.EnsureGroup("data")
	data.Set("frame_number", nxfile.NewField(axisRange(frames)))
	data.Set("y_pixel", nxfile.NewField(axisRange(height)))
	data.Set("x_pixel", nxfile.NewField(axisRange(width)))
	data.Set("data", nxfile.NewLink(r.WrapperPath))
	data.SetAttr("units", "counts")

	note := map[string]string{"frames": itoa(frames)}
	if head, err := r.Raw.ReadMetadataFile(r.Entry + "_head.txt"); err == nil {
		for k, v := range parseHeadFile(head) {
			entry.EnsureGroup("instrument", "logs").SetAttr(k, v)
		}
	} else {
		r.logf("link: %s_head.txt unavailable, skipping log transfer: %v", r.Entry, err)
	}
	if meta, err := r.Raw.ReadMetadataFile(r.Entry + "_meta.txt"); err == nil {
		cols := parseMetaCSV(meta)
		mcs1 := repairEnds(truncate(cols["MCS1"], frames))
		mcs2 := repairEnds(truncate(cols["MCS2"], frames))
		data.Set("monitor1", nxfile.NewField(mcs1))
		data.Set("monitor2", nxfile.NewField(mcs2))
		for _, key := range []string{"Storage_Ring_Current", "SCU_Current", "UndulatorA_gap", "Calculated_filter_transmission"} {
			if v, ok := cols[key]; ok && len(v) > 0 {
				entry.SetAttr(key, v[0])
			}
		}
	} else {
		r.logf("link: %s_meta.txt unavailable, skipping log transfer: %v", r.Entry, err)
	}

	return r.recordEnd(stage, nxfile.ProcessRecord{Program: "nxlink", Note: note})
}

// Max computes the frame-sum vector, the detector-sum image, augments
// the pixel mask with always-firing pixels, and the radial sum
// (spec.md §4.6 "max").
func (r *Reducer) Max(ctx context.Context, first, last int, det geometry.Detector, force bool) error {
	const stage = taskdb.TaskMax
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return err
	}
	if err := r.requirePrereq(stage, taskdb.TaskLink); err != nil {
		_ = r.recordFail(stage, err)
		return err
	}

	frames, height, width, err := r.shapeOrFail(stage)
	if err != nil {
		return err
	}
	if last > frames {
		last = frames
	}
	if first > last {
		return r.failInvalid(stage, "first > last")
	}

	fsum := make([]float64, frames)
	vsum := make([][]float64, height)
	for y := range vsum {
		vsum[y] = make([]float64, width)
	}

	firstTenSum := make([][]float64, height)
	firstTenMax := make([][]float64, height)
	for y := range firstTenSum {
		firstTenSum[y] = make([]float64, width)
		firstTenMax[y] = make([]float64, width)
	}

	var pixelMax float64
	for z := first; z < last; z++ {
		if r.Stopped != nil && r.Stopped() {
			return nil // spec.md §5 "Cancellation": return without a process record
		}
		fr, err := r.Raw.Frame(z)
		if err != nil {
			return cmn.NewStageError(cmn.ErrIO, r.Entry, stage, "read frame", err)
		}
		var frameSum float64
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := fr.Data[y][x]
				frameSum += v
				vsum[y][x] += v
				if v > pixelMax {
					pixelMax = v
				}
				if z-first < 10 {
					firstTenSum[y][x] += v
					if v > firstTenMax[y][x] {
						firstTenMax[y][x] = v
					}
				}
			}
		}
		fsum[z] = frameSum
	}

	augmented := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mean := firstTenSum[y][x] / 10
			if mean >= 100 && firstTenMax[y][x] == mean {
				if len(det.PixelMask) > y && len(det.PixelMask[y]) > x {
					det.PixelMask[y][x] = true
					augmented++
				}
			}
		}
	}

	var radius, intensity []float64
	if r.Integrator != nil {
		radius, intensity, err = r.Integrator.Integrate1D(vsum, det, 2048, 0.99)
		if err != nil {
			return cmn.NewStageError(cmn.ErrIO, r.Entry, stage, "azimuthal integration", err)
		}
	}

	entry := r.Wrapper.Root.EnsureGroup(r.Entry)
	entry.EnsureGroup("data").Set("summed_frames", nxfile.NewField(fsum))
	entry.EnsureGroup("data").Set("summed_data", nxfile.NewField(flatten(vsum)))
	if radius != nil {
		entry.EnsureGroup("radial_sum").Set("two_theta", nxfile.NewField(radius))
		entry.EnsureGroup("radial_sum").Set("intensity", nxfile.NewField(intensity))
	}

	return r.recordEnd(stage, nxfile.ProcessRecord{Program: "nxmax", Note: map[string]string{
		"maximum":          fmt.Sprintf("%g", pixelMax),
		"augmented_pixels": itoa(augmented),
	}})
}

// Find runs BlobDetector + PeakMerger over [first,last) (spec.md §4.6
// "find"): threshold defaults to maximum/10 if unset, requiring max.
func (r *Reducer) Find(ctx context.Context, first, last int, threshold float64, mask [][]bool, force bool) error {
	const stage = taskdb.TaskFind
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return err
	}

	if threshold <= 0 {
		if err := r.requirePrereq(stage, taskdb.TaskMax); err != nil {
			_ = r.recordFail(stage, err)
			return err
		}
		maxVal, err := r.readMaximum()
		if err != nil {
			_ = r.recordFail(stage, err)
			return err
		}
		threshold = maxVal / 10
	}

	frames, _, _, err := r.shapeOrFail(stage)
	if err != nil {
		return err
	}
	if last > frames {
		last = frames
	}
	if first > last {
		return r.failInvalid(stage, "first > last")
	}

	cfg := config.Global().Peaks
	var raw []blob.Peak
	for z := first; z < last; z++ {
		if r.Stopped != nil && r.Stopped() {
			return nil
		}
		fr, err := r.Raw.Frame(z)
		if err != nil {
			return cmn.NewStageError(cmn.ErrIO, r.Entry, stage, "read frame", err)
		}
		if mask != nil {
			fr.Mask = mask
		}
		raw = append(raw, blob.Detect(fr, float64(z), threshold, cfg.MinPixelCount)...)
	}

	merger := merge.New(cfg.FrameTolerance, cfg.PixelTolerance)
	peaks := merger.Merge(raw)
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Less(peaks[j]) })

	entry := r.Wrapper.Root.EnsureGroup(r.Entry)
	entry.SetAttr("threshold", threshold)
	entry.Set("peaks", encodePeaks(peaks))

	return r.recordEnd(stage, nxfile.ProcessRecord{Program: "nxfind", Note: map[string]string{
		"threshold": fmt.Sprintf("%g", threshold),
		"count":     itoa(len(peaks)),
	}})
}

// Copy resolves the parent wrapper's matching entry and copies sample/
// instrument parameters into this entry (spec.md §4.6 "copy").
func (r *Reducer) Copy(ctx context.Context, parent *nxfile.Wrapper, force bool) error {
	const stage = taskdb.TaskCopy
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return err
	}
	if parent == nil {
		err := cmn.NewStageError(cmn.ErrNotFound, r.Entry, stage, "parent wrapper not resolved (<sample>_parent.nxs missing)", nil)
		_ = r.recordFail(stage, err)
		return err
	}
	parentEntry := parent.Entry(r.Entry)
	if parentEntry == nil {
		err := cmn.NewStageError(cmn.ErrNotFound, r.Entry, stage, "parent has no matching entry "+r.Entry, nil)
		_ = r.recordFail(stage, err)
		return err
	}

	entry := r.Wrapper.Root.EnsureGroup(r.Entry)
	for _, group := range []string{"sample", "instrument/detector", "instrument/monochromator", "orientation_matrix"} {
		parts := splitPath(group)
		if src := parentEntry.Path(parts...); src != nil {
			dst := entry.EnsureGroup(parts[:len(parts)-1]...)
			dst.Set(parts[len(parts)-1], src)
		}
	}

	return r.recordEnd(stage, nxfile.ProcessRecord{Program: "nxcopy"})
}

// Refine runs the three successive optimisation passes of spec.md
// §4.6 "refine" against whichever entry (parent or child) owns the
// lattice, storing only the concatenated report on success.
func (r *Reducer) Refine(ctx context.Context, lattice geometry.Lattice, isParentOrFirst bool, force bool) error {
	const stage = taskdb.TaskRefine
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return err
	}
	if r.Refiner == nil {
		err := cmn.NewRefinementFailed(r.Entry, stage, "no refiner configured", nil)
		_ = r.recordFail(stage, err)
		return err
	}

	peaks, err := r.loadReflections()
	if err != nil {
		_ = r.recordFail(stage, err)
		return err
	}

	passes := []geometry.RefineInput{
		{Reflections: peaks, Lattice: lattice, ChiFree: true, OmegaFree: true, LatticeFree: isParentOrFirst},
		{Reflections: peaks, Lattice: lattice, LatticeFree: false},
		{Reflections: peaks, Lattice: lattice, OrientationFree: true},
	}

	var report string
	var final geometry.RefineResult
	for i, in := range passes {
		res, err := r.Refiner.Refine(in)
		if err != nil {
			stageErr := cmn.NewRefinementFailed(r.Entry, stage, fmt.Sprintf("pass %d", i+1), err)
			_ = r.recordFail(stage, stageErr)
			return stageErr
		}
		if !res.Converged {
			stageErr := cmn.NewRefinementFailed(r.Entry, stage, fmt.Sprintf("pass %d did not converge", i+1), nil)
			_ = r.recordFail(stage, stageErr)
			return stageErr
		}
		report += res.Report
		final = res
	}

	entry := r.Wrapper.Root.EnsureGroup(r.Entry)
	entry.SetAttr("orientation_matrix", final.Orientation)
	entry.SetAttr("lattice_a", final.Lattice.A)
	entry.SetAttr("lattice_b", final.Lattice.B)
	entry.SetAttr("lattice_c", final.Lattice.C)

	return r.recordEnd(stage, nxfile.ProcessRecord{Program: "nxrefine", Note: map[string]string{"report": report}})
}

// PredictedPeak is one reflection predicted from the refined
// orientation matrix, before the z-frame optimisation of §4.6 "prepare".
type PredictedPeak struct {
	H, K, L    float64
	X, Y, Z    float64
	PixelCount int
}

// Prepare takes the predicted HKL peaks, places each one with
// optimizeSlab, skips peaks with a negative PixelCount, assigns each
// kept peak one mask radius from maskRadius at its z (stored in
// Peak.Threshold), adds wrapped duplicates near the z ends, and writes
// only entry/mask/peaks_inferred (spec.md §4.6 "prepare"). brightness
// is consulted only by the gap probe; no mask volume is written.
func (r *Reducer) Prepare(ctx context.Context, predicted []PredictedPeak, shape [3]int, brightness func(x, y, z int) (float64, bool), force bool) ([]blob.Peak, error) {
	const stage = "nxprepare_mask"
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return nil, err
	}
	if err := r.requirePrereq(stage, taskdb.TaskRefine); err != nil {
		_ = r.recordFail(stage, err)
		return nil, err
	}

	cfg := config.Global().Mask
	var inferred []blob.Peak
	for _, pp := range predicted {
		x, y, z, ok := optimizeSlab(pp.X, pp.Y, pp.Z, shape, brightness)
		if !ok {
			continue
		}
		if pp.PixelCount < 0 {
			continue // cross-entry "extras", see masked_transform
		}
		radius := maskRadius(cfg, z)
		peak := blob.Peak{X: x, Y: y, Z: z, NP: pp.PixelCount, Threshold: radius}
		inferred = append(inferred, peak)
		if z >= 3600 {
			dup := peak
			dup.Z = z - 3600
			inferred = append(inferred, dup)
		}
		if z < 50 {
			dup := peak
			dup.Z = z + 3600
			inferred = append(inferred, dup)
		}
	}

	entry := r.Wrapper.Root.EnsureGroup(r.Entry)
	entry.EnsureGroup("mask").Set("peaks_inferred", encodePeaks(inferred))

	if err := r.recordEnd(stage, nxfile.ProcessRecord{Program: "nxprepare", Note: map[string]string{"count": itoa(len(inferred))}}); err != nil {
		return nil, err
	}
	return inferred, nil
}

// maskRadius implements r(f) = max(1, floor(Re(c + a*f^b))), spec.md
// §4.6, §9.
func maskRadius(cfg config.MaskRadius, frame float64) float64 {
	v := cfg.C + cfg.A*math.Pow(frame, cfg.B)
	r := math.Floor(v)
	if r < 1 {
		r = 1
	}
	return r
}

// optimizeSlab rounds (x,y,z) to the nearest voxel and clamps it to the
// volume; it does not refine the position by a moment of the
// surrounding slab. hasGap probes only the z column through (cx,cy)
// for detector gaps (signal < 0), and the wider half-width it selects
// is not used further.
func optimizeSlab(x, y, z float64, shape [3]int, brightness func(x, y, z int) (float64, bool)) (ox, oy, oz float64, ok bool) {
	cx, cy, cz := int(x+0.5), int(y+0.5), int(z+0.5)
	half := 10
	if hasGap(cx, cy, cz, half, half, brightness) {
		half = 30
	}
	ox, oy, oz = clampVol(float64(cx), float64(cy), float64(cz), shape)
	return ox, oy, oz, true
}

func hasGap(cx, cy, cz, halfXY, halfZ int, brightness func(x, y, z int) (float64, bool)) bool {
	for dz := -halfZ; dz <= halfZ; dz++ {
		v, present := brightness(cx, cy, cz+dz)
		if present && v < 0 {
			return true
		}
	}
	return false
}

func clampVol(x, y, z float64, shape [3]int) (float64, float64, float64) {
	clamp := func(v float64, n int) float64 {
		if v < 0 {
			return 0
		}
		if v > float64(n-1) {
			return float64(n - 1)
		}
		return v
	}
	return clamp(x, shape[2]), clamp(y, shape[1]), clamp(z, shape[0])
}

// Transform invokes the external cctw transform with the settings file
// at settingsPath, holding the raw and transform file locks across the
// subprocess (spec.md §4.6 "transform"). It does not build the HKL grid
// or write the settings file; settingsPath is passed to cctw as given.
func (r *Reducer) Transform(ctx context.Context, rawPath, settingsPath, transformPath string, lockTimeout time.Duration, masked bool, force bool) error {
	stage := taskdb.TaskTransform
	if masked {
		stage = taskdb.TaskMaskedTransform
	}
	if skip, err := r.runGuard(stage, force); skip || err != nil {
		return err
	}
	prereq := taskdb.TaskRefine
	if masked {
		prereq = "nxprepare_mask"
	}
	if err := r.requirePrereq(stage, prereq); err != nil {
		_ = r.recordFail(stage, err)
		return err
	}

	releaseRaw, err := filelock.Scoped(rawPath, lockTimeout)
	if err != nil {
		_ = r.recordFail(stage, err)
		return err
	}
	defer releaseRaw()
	releaseXform, err := filelock.Scoped(transformPath, lockTimeout)
	if err != nil {
		_ = r.recordFail(stage, err)
		return err
	}
	defer releaseXform()

	res, err := r.CCTW.Transform(ctx, r.CCTWBinPath, settingsPath, lockTimeout)
	if err != nil {
		_ = r.recordFail(stage, err)
		return err
	}

	return r.recordEnd(stage, nxfile.ProcessRecord{
		Program: "nxtransform", Stdout: res.Stdout, Stderr: res.Stderr, CommandLine: res.CommandLine,
	})
}

// --- helpers ---

func (r *Reducer) shapeOrFail(stage string) (frames, height, width int, err error) {
	if r.Raw == nil {
		return 0, 0, 0, cmn.NewStageError(cmn.ErrNotFound, r.Entry, stage, "raw data source not configured", nil)
	}
	frames, height, width = r.Raw.Shape()
	return frames, height, width, nil
}

func (r *Reducer) failInvalid(stage, detail string) error {
	err := cmn.NewInvalidGrid(r.Entry, stage, detail)
	_ = r.recordFail(stage, err)
	return err
}

func (r *Reducer) readMaximum() (float64, error) {
	entry := r.Wrapper.Entry(r.Entry)
	if entry == nil {
		return 0, cmn.NewStageError(cmn.ErrNotFound, r.Entry, taskdb.TaskFind, "entry missing", nil)
	}
	maxRec := entry.Get(taskdb.TaskMax)
	if maxRec == nil {
		return 0, cmn.NewPrereqIncomplete(r.Entry, taskdb.TaskFind, taskdb.TaskMax)
	}
	v, ok := maxRec.Attr("note.maximum")
	if !ok {
		return 0, cmn.NewStageError(cmn.ErrNotFound, r.Entry, taskdb.TaskFind, "maximum attribute missing", nil)
	}
	var maxVal float64
	fmt.Sscanf(fmt.Sprintf("%v", v), "%g", &maxVal)
	return maxVal, nil
}

func (r *Reducer) loadReflections() ([]geometry.Reflection, error) {
	entry := r.Wrapper.Entry(r.Entry)
	if entry == nil {
		return nil, cmn.NewStageError(cmn.ErrNotFound, r.Entry, taskdb.TaskRefine, "entry missing", nil)
	}
	node := entry.Get("peaks")
	if node == nil {
		return nil, cmn.NewStageError(cmn.ErrNotFound, r.Entry, taskdb.TaskRefine, "peaks missing, run find first", nil)
	}
	peaks, ok := node.Value.([]blob.Peak)
	if !ok {
		return nil, cmn.NewInvalidGrid(r.Entry, taskdb.TaskRefine, "peaks field has unexpected type")
	}
	out := make([]geometry.Reflection, len(peaks))
	for i, p := range peaks {
		out[i] = geometry.Reflection{X: p.X, Y: p.Y, Z: p.Z, Intensity: p.Intensity(), PixelCount: p.NP}
	}
	return out, nil
}

func encodePeaks(peaks []blob.Peak) *nxfile.Node { return nxfile.NewField(peaks) }

func axisRange(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}

func flatten(v [][]float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float64, 0, len(v)*len(v[0]))
	for _, row := range v {
		out = append(out, row...)
	}
	return out
}

func truncate(v []float64, n int) []float64 {
	if len(v) > n {
		return v[:n]
	}
	return v
}

// repairEnds replaces the first/last sample from its neighbour, per
// spec.md §4.6 "first/last sample repaired from neighbours".
func repairEnds(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}
	out := append([]float64(nil), v...)
	if len(out) > 1 {
		out[0] = out[1]
		out[len(out)-1] = out[len(out)-2]
	}
	return out
}

func splitPath(p string) []string {
	var parts []string
	cur := ""
	for _, c := range p {
		if c == '/' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(c)
	}
	parts = append(parts, cur)
	return parts
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

// parseHeadFile parses "<entry>_head.txt": one "key, value" per line
// (spec.md §4.6 "link").
func parseHeadFile(data []byte) map[string]string {
	out := make(map[string]string)
	line := ""
	flush := func() {
		if line == "" {
			return
		}
		for i := 0; i < len(line); i++ {
			if line[i] == ',' {
				key := trimSpace(line[:i])
				val := trimSpace(line[i+1:])
				if key != "" {
					out[key] = val
				}
				return
			}
		}
	}
	for _, b := range data {
		if b == '\n' {
			flush()
			line = ""
			continue
		}
		line += string(b)
	}
	flush()
	return out
}

// parseMetaCSV parses "<entry>_meta.txt": CSV with a header row,
// spec.md §4.6 "link". Columns are returned keyed by header name.
func parseMetaCSV(data []byte) map[string][]float64 {
	rows := splitLines(string(data))
	if len(rows) == 0 {
		return nil
	}
	header := splitCSV(rows[0])
	cols := make(map[string][]float64, len(header))
	for _, row := range rows[1:] {
		if row == "" {
			continue
		}
		fields := splitCSV(row)
		for i, h := range header {
			if i >= len(fields) {
				continue
			}
			var v float64
			fmt.Sscanf(fields[i], "%g", &v)
			cols[h] = append(cols[h], v)
		}
	}
	return cols
}

func splitLines(s string) []string {
	var out []string
	cur := ""
	for _, c := range s {
		if c == '\n' {
			out = append(out, trimSpace(cur))
			cur = ""
			continue
		}
		if c != '\r' {
			cur += string(c)
		}
	}
	if cur != "" {
		out = append(out, trimSpace(cur))
	}
	return out
}

func splitCSV(s string) []string {
	var out []string
	cur := ""
	for _, c := range s {
		if c == ',' {
			out = append(out, trimSpace(cur))
			cur = ""
			continue
		}
		cur += string(c)
	}
	out = append(out, trimSpace(cur))
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
