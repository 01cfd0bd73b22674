/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package taskdb_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/nxreduce/nxreduce/taskdb"
)

var fixedTime = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

var _ = Describe("task status transitions", func() {
	const (
		path  = "/scans/sample_001"
		entry = "f1"
		stage = taskdb.TaskLink
	)

	var db *taskdb.Database

	BeforeEach(func() {
		var err error
		db, err = taskdb.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("moves an unqueued task straight through QUEUED -> IN_PROGRESS -> DONE", func() {
		Expect(db.QueueTask(path, entry, stage)).To(Succeed())
		row, err := db.GetTask(path, entry, stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusQueued))

		Expect(db.StartTask(path, entry, stage)).To(Succeed())
		row, err = db.GetTask(path, entry, stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusInProgress))
		Expect(row.StartTime).NotTo(BeZero())

		Expect(db.EndTask(path, entry, stage)).To(Succeed())
		row, err = db.GetTask(path, entry, stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusDone))
		Expect(row.EndTime).NotTo(BeZero())
	})

	It("moves IN_PROGRESS -> FAILED on a stage failure", func() {
		Expect(db.QueueTask(path, entry, stage)).To(Succeed())
		Expect(db.StartTask(path, entry, stage)).To(Succeed())
		Expect(db.FailTask(path, entry, stage)).To(Succeed())

		row, err := db.GetTask(path, entry, stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusFailed))
	})

	It("resets a DONE task back to QUEUED when re-queued (the overwrite path)", func() {
		Expect(db.QueueTask(path, entry, stage)).To(Succeed())
		Expect(db.StartTask(path, entry, stage)).To(Succeed())
		Expect(db.EndTask(path, entry, stage)).To(Succeed())

		Expect(db.QueueTask(path, entry, stage)).To(Succeed())
		row, err := db.GetTask(path, entry, stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusQueued))
	})

	It("keeps distinct entries' task rows independent", func() {
		Expect(db.QueueTask(path, "f1", stage)).To(Succeed())
		Expect(db.QueueTask(path, "f2", stage)).To(Succeed())
		Expect(db.StartTask(path, "f1", stage)).To(Succeed())

		row1, err := db.GetTask(path, "f1", stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row1.Status).To(Equal(taskdb.StatusInProgress))

		row2, err := db.GetTask(path, "f2", stage)
		Expect(err).NotTo(HaveOccurred())
		Expect(row2.Status).To(Equal(taskdb.StatusQueued))
	})

	It("registers and retrieves a file row", func() {
		Expect(db.RegisterFile(path, fixedTime)).To(Succeed())
		row, err := db.GetFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(row.Path).To(Equal(path))
	})
})
