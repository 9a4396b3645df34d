package predictor

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// tensorSpec mirrors one entry of a safetensors header.
type tensorSpec struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// writeCheckpoint builds a minimal valid safetensors file holding the
// full predictor topology for inputDim. All parameters are zero except
// the final layer bias, so the network's output equals finalBias for
// any input.
func writeCheckpoint(t *testing.T, inputDim int, finalBias float32) string {
	t.Helper()

	type tensor struct {
		name string
		rows int
		cols int
	}
	var tensors []tensor
	cols := inputDim
	for i, key := range layerKeys {
		rows := hiddenSizes[i]
		tensors = append(tensors, tensor{key + ".weight", rows, cols})
		tensors = append(tensors, tensor{key + ".bias", rows, 0})
		cols = rows
	}

	header := make(map[string]any)
	offset := 0
	for _, tn := range tensors {
		n := tn.rows
		shape := []int{tn.rows}
		if tn.cols > 0 {
			n *= tn.cols
			shape = []int{tn.rows, tn.cols}
		}
		header[tn.name] = tensorSpec{
			DType:       "F32",
			Shape:       shape,
			DataOffsets: [2]int{offset, offset + n*4},
		}
		offset += n * 4
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatal(err)
	}

	data := make([]byte, offset)
	// layers.7.bias is the very last float in the data section.
	binary.LittleEndian.PutUint32(data[offset-4:], math.Float32bits(finalBias))

	path := filepath.Join(t.TempDir(), "predictor.safetensors")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(headerJSON); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndPredict(t *testing.T) {
	path := writeCheckpoint(t, 512, 3.5)

	p, err := Load(path, 512)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.InputDim() != 512 {
		t.Errorf("InputDim() = %d, want 512", p.InputDim())
	}

	// Zero weights everywhere means the score is exactly the final bias.
	emb := make([]float32, 512)
	emb[0] = 1.0
	score, err := p.Predict(emb)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if score != 3.5 {
		t.Errorf("Predict = %v, want 3.5", score)
	}
}

func TestLoadShapeMismatch(t *testing.T) {
	// Checkpoint built for a 512-dim encoder, loaded as 768-dim.
	path := writeCheckpoint(t, 512, 0)

	if _, err := Load(path, 768); err == nil {
		t.Fatal("expected a shape error loading a 512-input checkpoint as 768")
	}
}

func TestLoadMissingTensor(t *testing.T) {
	// An empty safetensors file has none of the expected tensors.
	path := filepath.Join(t.TempDir(), "empty.safetensors")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	headerJSON := []byte("{}")
	binary.Write(f, binary.LittleEndian, uint64(len(headerJSON)))
	f.Write(headerJSON)
	f.Close()

	if _, err := Load(path, 768); err == nil {
		t.Fatal("expected an error for a checkpoint without tensors")
	}
}

func TestPredictWrongEmbeddingSize(t *testing.T) {
	path := writeCheckpoint(t, 512, 0)
	p, err := Load(path, 512)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Predict(make([]float32, 768)); err == nil {
		t.Fatal("expected an error for a wrongly sized embedding")
	}
}

func TestPredictBatch(t *testing.T) {
	path := writeCheckpoint(t, 512, 1.25)
	p, err := Load(path, 512)
	if err != nil {
		t.Fatal(err)
	}

	batch := [][]float32{
		make([]float32, 512),
		make([]float32, 512),
		make([]float32, 512),
	}
	scores, err := p.PredictBatch(batch)
	if err != nil {
		t.Fatalf("PredictBatch failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	for i, s := range scores {
		if s != 1.25 {
			t.Errorf("scores[%d] = %v, want 1.25", i, s)
		}
	}
}
