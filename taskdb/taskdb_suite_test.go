/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package taskdb_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestTaskDB(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}
