// Package registry holds the static tables of known aesthetic predictor
// checkpoints and CLIP encoder variants. The tables are fixed at compile
// time; names outside them fail before any network or file I/O happens.
package registry

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultModel is the checkpoint used when no --model flag is given.
const DefaultModel = "sac+logos+ava1-l14-linearMSE"

// DefaultClipModel is the encoder variant used when no --clip_model flag is given.
const DefaultClipModel = "ViT-L/14"

// Checkpoint describes a downloadable aesthetic predictor head.
type Checkpoint struct {
	Name string
	URL  string
}

// Encoder describes a downloadable CLIP image encoder exported to ONNX.
type Encoder struct {
	Name       string
	URL        string
	InputName  string // ONNX graph input, NCHW float32
	OutputName string // ONNX graph output, [N, Dim] float32
	PixelSize  int    // square input resolution
}

// checkpoints maps predictor names to their safetensors exports.
var checkpoints = map[string]Checkpoint{
	"chadscorer": {
		Name: "chadscorer",
		URL:  "https://huggingface.co/rocker-boo/sd-chad/resolve/main/chadscorer.safetensors",
	},
	"sac+logos+ava1-l14-linearMSE": {
		Name: "sac+logos+ava1-l14-linearMSE",
		URL:  "https://huggingface.co/rocker-boo/improved-aesthetic-predictor/resolve/main/sac%2Blogos%2Bava1-l14-linearMSE.safetensors",
	},
}

// encoders maps CLIP variant names to their ONNX exports.
var encoders = map[string]Encoder{
	"ViT-B/32": {
		Name:       "ViT-B/32",
		URL:        "https://huggingface.co/rocker-boo/clip-onnx/resolve/main/vit-b-32-visual.onnx",
		InputName:  "pixel_values",
		OutputName: "image_embeds",
		PixelSize:  224,
	},
	"ViT-L/14": {
		Name:       "ViT-L/14",
		URL:        "https://huggingface.co/rocker-boo/clip-onnx/resolve/main/vit-l-14-visual.onnx",
		InputName:  "pixel_values",
		OutputName: "image_embeds",
		PixelSize:  224,
	},
	"ViT-L/14@336px": {
		Name:       "ViT-L/14@336px",
		URL:        "https://huggingface.co/rocker-boo/clip-onnx/resolve/main/vit-l-14-336-visual.onnx",
		InputName:  "pixel_values",
		OutputName: "image_embeds",
		PixelSize:  336,
	},
}

// LookupCheckpoint resolves a predictor name. Unknown names produce an
// error that enumerates the valid choices.
func LookupCheckpoint(name string) (Checkpoint, error) {
	cp, ok := checkpoints[name]
	if !ok {
		return Checkpoint{}, fmt.Errorf("invalid model: %s. try one of these: %s",
			name, strings.Join(CheckpointNames(), ", "))
	}
	return cp, nil
}

// LookupEncoder resolves a CLIP variant name.
func LookupEncoder(name string) (Encoder, error) {
	enc, ok := encoders[name]
	if !ok {
		return Encoder{}, fmt.Errorf("invalid clip model: %s. try one of these: %s",
			name, strings.Join(EncoderNames(), ", "))
	}
	return enc, nil
}

// CheckpointNames returns the known predictor names, sorted.
func CheckpointNames() []string {
	names := make([]string, 0, len(checkpoints))
	for name := range checkpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncoderNames returns the known CLIP variant names, sorted.
func EncoderNames() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EmbeddingDim infers the predictor input dimension from the CLIP variant
// name. ViT-L variants embed into 768 components, ViT-B into 512.
// Unrecognized names fall back to 768.
func EmbeddingDim(clipModel string) int {
	if strings.Contains(clipModel, "ViT-L") {
		return 768
	}
	if strings.Contains(clipModel, "ViT-B") {
		return 512
	}
	return 768
}

// Dim returns the embedding dimension produced by this encoder.
func (e Encoder) Dim() int {
	return EmbeddingDim(e.Name)
}

// File is the checkpoint's file name inside the cache directory.
func (c Checkpoint) File() string {
	return c.Name + ".safetensors"
}

var fileSafe = strings.NewReplacer("/", "-", "@", "-")

// File is the encoder's file name inside the cache directory. Variant
// names contain characters that are not filesystem-safe ("ViT-L/14").
func (e Encoder) File() string {
	return fileSafe.Replace(e.Name) + ".onnx"
}
