// Package device resolves the --device and --precision flags into
// explicit capability handles, so device selection stays testable
// without real hardware.
package device

import (
	"fmt"
	"strconv"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

// Kind is a compute device class.
type Kind string

const (
	CPU  Kind = "cpu"
	CUDA Kind = "cuda"
)

// Device describes where inference runs.
type Device struct {
	Kind  Kind
	Index int
	// Auto marks a device picked by detection rather than an explicit
	// flag; an unavailable accelerator then falls back to CPU instead
	// of failing.
	Auto bool
}

func (d Device) String() string {
	if d.Kind == CUDA {
		return fmt.Sprintf("cuda:%d", d.Index)
	}
	return string(d.Kind)
}

// Resolve parses a device spec ("cpu", "cuda", "cuda:1"). An empty spec
// auto-detects: prefer the first CUDA device, fall back to CPU when the
// CUDA provider is unavailable at session setup.
func Resolve(spec string) (Device, error) {
	if spec == "" {
		return Device{Kind: CUDA, Auto: true}, nil
	}
	if spec == string(CPU) {
		return Device{Kind: CPU}, nil
	}
	if spec == string(CUDA) {
		return Device{Kind: CUDA}, nil
	}
	if rest, ok := strings.CutPrefix(spec, "cuda:"); ok {
		idx, err := strconv.Atoi(rest)
		if err != nil || idx < 0 {
			return Device{}, fmt.Errorf("invalid cuda device index: %q", spec)
		}
		return Device{Kind: CUDA, Index: idx}, nil
	}
	return Device{}, fmt.Errorf("invalid device: %q (use cpu, cuda or cuda:N)", spec)
}

// SessionOptions builds ONNX runtime session options for the device.
// The second return reports the device actually selected, which differs
// from the receiver only when auto-detection falls back to CPU.
func (d Device) SessionOptions() (*ort.SessionOptions, Device, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, d, fmt.Errorf("failed to create session options: %w", err)
	}

	if d.Kind != CUDA {
		return opts, d, nil
	}

	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err == nil {
		err = cudaOpts.Update(map[string]string{"device_id": strconv.Itoa(d.Index)})
		if err == nil {
			err = opts.AppendExecutionProviderCUDA(cudaOpts)
		}
		cudaOpts.Destroy()
	}
	if err != nil {
		if d.Auto {
			return opts, Device{Kind: CPU}, nil
		}
		opts.Destroy()
		return nil, d, fmt.Errorf("cuda device unavailable: %w", err)
	}
	return opts, d, nil
}

// Precision is the requested inference dtype. The ONNX sessions run
// float32 regardless; the flag is validated for CLI compatibility.
type Precision string

const (
	FP16  Precision = "fp16"
	BF16  Precision = "bf16"
	FP32  Precision = "fp32"
	Float Precision = "float"
)

// ParsePrecision validates a --precision value.
func ParsePrecision(spec string) (Precision, error) {
	switch Precision(spec) {
	case FP16, BF16, FP32, Float:
		return Precision(spec), nil
	}
	return "", fmt.Errorf("invalid precision: %q (use fp16, bf16, fp32 or float)", spec)
}
