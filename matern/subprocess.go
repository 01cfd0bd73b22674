package matern

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/nxreduce/nxreduce/cmn"
)

type request struct {
	Volume  [][][]float64 `json:"volume"`
	Indices []Index3      `json:"indices"`
}

// SubprocessInterpolator invokes the external matern_3d_grid program,
// passing the request as JSON on stdin and reading the filled volume
// as JSON from stdout - the matrix->matrix contract of spec.md §1/§6.
type SubprocessInterpolator struct {
	BinPath string
	Timeout time.Duration
}

func NewSubprocessInterpolator(binPath string, timeout time.Duration) *SubprocessInterpolator {
	return &SubprocessInterpolator{BinPath: binPath, Timeout: timeout}
}

func (s *SubprocessInterpolator) Fill(ctx context.Context, volume [][][]float64, indices []Index3) ([][][]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	payload, err := jsoniter.Marshal(request{Volume: volume, Indices: indices})
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, s.BinPath)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, cmn.NewSubprocessFailed("", "fill", s.BinPath, err)
	}

	var filled [][][]float64
	if err := jsoniter.Unmarshal(stdout.Bytes(), &filled); err != nil {
		return nil, cmn.NewSubprocessFailed("", "fill", s.BinPath, err)
	}
	return filled, nil
}
