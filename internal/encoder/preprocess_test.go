package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(c color.RGBA, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocessLayoutAndNormalization(t *testing.T) {
	const size = 8
	// Pure white: every channel is 1.0 before normalization.
	out := Preprocess(solidImage(color.RGBA{255, 255, 255, 255}, 64, 48), size)

	if len(out) != 3*size*size {
		t.Fatalf("expected %d values, got %d", 3*size*size, len(out))
	}

	plane := size * size
	wantR := (1.0 - clipMean[0]) / clipStd[0]
	wantG := (1.0 - clipMean[1]) / clipStd[1]
	wantB := (1.0 - clipMean[2]) / clipStd[2]

	checks := []struct {
		name string
		idx  int
		want float32
	}{
		{"red plane", 0, wantR},
		{"green plane", plane, wantG},
		{"blue plane", 2 * plane, wantB},
	}
	for _, c := range checks {
		got := out[c.idx]
		if math.Abs(float64(got-c.want)) > 1e-4 {
			t.Errorf("%s value = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPreprocessBlack(t *testing.T) {
	const size = 4
	out := Preprocess(solidImage(color.RGBA{0, 0, 0, 255}, 16, 16), size)

	// Black maps to -mean/std per channel; just verify it is negative
	// and finite on every plane.
	plane := size * size
	for ch := 0; ch < 3; ch++ {
		v := float64(out[ch*plane])
		if v >= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("channel %d value = %v, want a finite negative", ch, v)
		}
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(color.RGBA{10, 20, 30, 255}, 5, 5)); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "ok.png")
	if err := os.WriteFile(good, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeFile(good)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if img.Bounds().Dx() != 5 {
		t.Errorf("decoded width = %d, want 5", img.Bounds().Dx())
	}

	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("NOT A PNG"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeFile(bad); err == nil {
		t.Error("expected an error decoding a corrupt file")
	}

	if _, err := DecodeFile(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
