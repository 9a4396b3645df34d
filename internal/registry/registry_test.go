package registry

import (
	"strings"
	"testing"
)

func TestLookupCheckpointUnknown(t *testing.T) {
	_, err := LookupCheckpoint("not-a-model")
	if err == nil {
		t.Fatal("expected an error for an unknown model name")
	}
	// The error must enumerate every valid name so the user can fix the flag.
	for _, name := range CheckpointNames() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention valid model %q", err, name)
		}
	}
}

func TestLookupCheckpointKnown(t *testing.T) {
	cp, err := LookupCheckpoint(DefaultModel)
	if err != nil {
		t.Fatalf("LookupCheckpoint(%q) failed: %v", DefaultModel, err)
	}
	if cp.URL == "" {
		t.Error("checkpoint has no download URL")
	}
	if cp.File() != DefaultModel+".safetensors" {
		t.Errorf("unexpected cache file name %q", cp.File())
	}
}

func TestLookupEncoderUnknown(t *testing.T) {
	_, err := LookupEncoder("ResNet-50")
	if err == nil {
		t.Fatal("expected an error for an unknown encoder name")
	}
	for _, name := range EncoderNames() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention valid encoder %q", err, name)
		}
	}
}

func TestEmbeddingDim(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"ViT-L/14", 768},
		{"ViT-L/14@336px", 768},
		{"ViT-B/32", 512},
		{"ViT-B/16", 512},
		{"something-else", 768}, // unrecognized falls back to 768
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EmbeddingDim(tt.name); got != tt.want {
				t.Errorf("EmbeddingDim(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestEncoderFileIsFilesystemSafe(t *testing.T) {
	enc, err := LookupEncoder("ViT-L/14@336px")
	if err != nil {
		t.Fatal(err)
	}
	file := enc.File()
	if strings.ContainsAny(file, "/@") {
		t.Errorf("cache file name %q contains unsafe characters", file)
	}
}
