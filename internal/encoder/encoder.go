// Package encoder wraps the CLIP image encoder as an opaque capability:
// preprocessed pixel tensors in, embedding vectors out. The production
// implementation executes an ONNX export of the CLIP visual tower;
// tests substitute a fake.
package encoder

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/rockerboo/ae-score/internal/device"
	"github.com/rockerboo/ae-score/internal/registry"
)

// Encoder maps a batch of preprocessed images (CHW float32 planes) to
// fixed-length embedding vectors.
type Encoder interface {
	// Encode returns one embedding per input image. Inputs must all be
	// PixelSize() squares produced by Preprocess.
	Encode(batch [][]float32) ([][]float32, error)
	// Dim is the embedding length (768 for ViT-L, 512 for ViT-B).
	Dim() int
	// PixelSize is the square input resolution the encoder expects.
	PixelSize() int
	Close()
}

var ortInit sync.Once
var ortInitErr error

// initRuntime initializes the ONNX runtime environment once per process.
func initRuntime() error {
	ortInit.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Clip executes a CLIP visual tower through an ONNX runtime session.
type Clip struct {
	variant registry.Encoder
	session *ort.DynamicAdvancedSession
	device  device.Device
}

// Load opens the ONNX model at path for the given variant on the given
// device. The returned encoder reports the device actually in use after
// auto-detection.
func Load(path string, variant registry.Encoder, dev device.Device) (*Clip, error) {
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	opts, selected, err := dev.SessionOptions()
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{variant.InputName}, []string{variant.OutputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create CLIP session: %w", err)
	}

	return &Clip{variant: variant, session: session, device: selected}, nil
}

// Device reports where this encoder runs.
func (c *Clip) Device() device.Device {
	return c.device
}

func (c *Clip) Dim() int {
	return c.variant.Dim()
}

func (c *Clip) PixelSize() int {
	return c.variant.PixelSize
}

// Encode runs one batch through the visual tower. Input and output
// tensors are created per call and destroyed before returning, which
// bounds peak device memory to a single batch.
func (c *Clip) Encode(batch [][]float32) ([][]float32, error) {
	n := len(batch)
	if n == 0 {
		return nil, nil
	}

	size := c.variant.PixelSize
	perImage := 3 * size * size
	flat := make([]float32, 0, n*perImage)
	for i, img := range batch {
		if len(img) != perImage {
			return nil, fmt.Errorf("image %d has %d values, want %d", i, len(img), perImage)
		}
		flat = append(flat, img...)
	}

	input, err := ort.NewTensor(ort.NewShape(int64(n), 3, int64(size), int64(size)), flat)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(n), int64(c.Dim())))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := c.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("encoder inference failed: %w", err)
	}

	data := output.GetData()
	dim := c.Dim()
	embeddings := make([][]float32, n)
	for i := range embeddings {
		row := make([]float32, dim)
		copy(row, data[i*dim:(i+1)*dim])
		embeddings[i] = row
	}
	return embeddings, nil
}

func (c *Clip) Close() {
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
}
