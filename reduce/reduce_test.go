/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package reduce_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/nxreduce/nxreduce/nxfile"
	"github.com/nxreduce/nxreduce/reduce"
	"github.com/nxreduce/nxreduce/taskdb"
)

var _ = Describe("Copy stage gating", func() {
	const (
		wrapperPath = "/scans/sample_001"
		entryName   = "f1"
	)

	var (
		wrapper *nxfile.Wrapper
		db      *taskdb.Database
		r       *reduce.Reducer
		parent  *nxfile.Wrapper
	)

	BeforeEach(func() {
		var err error
		wrapper = nxfile.NewWrapper()
		db, err = taskdb.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		r = reduce.New(entryName, "label", "sample", "001", wrapperPath, wrapper, db, nil)

		parent = nxfile.NewWrapper()
		parentEntry := parent.Root.EnsureGroup(entryName)
		parentEntry.EnsureGroup("sample").SetAttr("name", "quartz")
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("fails and records FAILED when no parent wrapper is resolved", func() {
		err := r.Copy(context.Background(), nil, false)
		Expect(err).To(HaveOccurred())

		row, dberr := db.GetTask(wrapperPath, entryName, taskdb.TaskCopy)
		Expect(dberr).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusFailed))
		Expect(wrapper.HasProcessRecord(entryName, taskdb.TaskCopy)).To(BeFalse())
	})

	It("copies the parent's groups and records DONE on success", func() {
		err := r.Copy(context.Background(), parent, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(wrapper.HasProcessRecord(entryName, taskdb.TaskCopy)).To(BeTrue())
		row, dberr := db.GetTask(wrapperPath, entryName, taskdb.TaskCopy)
		Expect(dberr).NotTo(HaveOccurred())
		Expect(row.Status).To(Equal(taskdb.StatusDone))

		sampleNode := wrapper.Entry(entryName).Path("sample")
		Expect(sampleNode).NotTo(BeNil())
	})

	It("skips a second run once the stage is already complete", func() {
		Expect(r.Copy(context.Background(), parent, false)).To(Succeed())

		// swap in a fresh sample node under the parent; only a re-run
		// of the copy loop would pick it up
		replacement := nxfile.NewGroup()
		replacement.SetAttr("name", "corundum")
		Expect(parent.Root.EnsureGroup(entryName).Set("sample", replacement)).To(Succeed())

		Expect(r.Copy(context.Background(), parent, false)).To(Succeed())
		sampleNode := wrapper.Entry(entryName).Path("sample")
		name, _ := sampleNode.Attr("name")
		Expect(name).To(Equal("quartz"), "expected the already-complete stage not to re-run")
	})

	It("re-runs when force overwrite is requested", func() {
		Expect(r.Copy(context.Background(), parent, false)).To(Succeed())

		replacement := nxfile.NewGroup()
		replacement.SetAttr("name", "corundum")
		Expect(parent.Root.EnsureGroup(entryName).Set("sample", replacement)).To(Succeed())

		Expect(r.Copy(context.Background(), parent, true)).To(Succeed())
		sampleNode := wrapper.Entry(entryName).Path("sample")
		name, _ := sampleNode.Attr("name")
		Expect(name).To(Equal("corundum"), "expected force overwrite to re-run the stage")
	})
})
