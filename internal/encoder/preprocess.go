package encoder

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// CLIP normalization constants, per channel (RGB).
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// DecodeFile reads and decodes one image from disk. A corrupt or
// unsupported file is returned as an error and aborts the run.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Preprocess converts an image to the CLIP input layout: resized to a
// size x size square with Lanczos3, normalized per channel with the
// CLIP mean/std, laid out as CHW float32 planes.
func Preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()

			idx := y*size + x
			out[idx] = (float32(r)/65535.0 - clipMean[0]) / clipStd[0]
			out[plane+idx] = (float32(g)/65535.0 - clipMean[1]) / clipStd[1]
			out[2*plane+idx] = (float32(b)/65535.0 - clipMean[2]) / clipStd[2]
		}
	}
	return out
}
