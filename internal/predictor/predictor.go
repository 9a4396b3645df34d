// Package predictor implements the aesthetic predictor head: a fixed
// stack of linear layers mapping a CLIP embedding to a single scalar
// score. Weights are loaded from a safetensors export of the original
// state dict; the dropout modules between layers are inference no-ops,
// so only the linear transforms are materialized.
package predictor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/maruel/safetensors"
)

// The Sequential in the original checkpoint interleaves Linear and
// Dropout modules, so the linear weights sit at indices 0,2,4,6,7.
var layerKeys = []string{"layers.0", "layers.2", "layers.4", "layers.6", "layers.7"}

// hiddenSizes are the output widths of each linear layer. The input
// width of the first layer is the CLIP embedding dimension (768 or 512).
var hiddenSizes = []int{1024, 128, 64, 16, 1}

// linear is one dense layer: y = Wx + b with W stored row-major.
type linear struct {
	weight []float32
	bias   []float32
	rows   int
	cols   int
}

func (l *linear) apply(x []float32) []float32 {
	out := make([]float32, l.rows)
	for r := 0; r < l.rows; r++ {
		sum := l.bias[r]
		row := l.weight[r*l.cols : (r+1)*l.cols]
		for c, w := range row {
			sum += w * x[c]
		}
		out[r] = sum
	}
	return out
}

// Predictor holds the loaded parameter set. Immutable after Load.
type Predictor struct {
	inputDim int
	layers   []linear
}

// InputDim returns the embedding dimension this predictor expects.
func (p *Predictor) InputDim() int {
	return p.inputDim
}

// Load reads a safetensors checkpoint and builds a predictor sized for
// inputDim. Parameter shapes that do not match the fixed topology
// surface as a load error.
func Load(path string, inputDim int) (*Predictor, error) {
	mapped := &safetensors.Mapped{}
	if err := mapped.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open checkpoint %s: %w", path, err)
	}
	defer mapped.Close()

	byName := make(map[string]*safetensors.Tensor, len(mapped.Tensors))
	for i := range mapped.Tensors {
		byName[mapped.Tensors[i].Name] = &mapped.Tensors[i]
	}

	p := &Predictor{inputDim: inputDim}
	cols := inputDim
	for i, key := range layerKeys {
		rows := hiddenSizes[i]

		weight, err := tensorData(byName, key+".weight", rows, cols)
		if err != nil {
			return nil, err
		}
		bias, err := tensorData(byName, key+".bias", rows, 1)
		if err != nil {
			return nil, err
		}

		p.layers = append(p.layers, linear{
			weight: weight,
			bias:   bias,
			rows:   rows,
			cols:   cols,
		})
		cols = rows
	}

	return p, nil
}

// tensorData fetches a named tensor, checks its shape against the
// expected rows x cols (cols == 1 means a vector), and decodes its
// little-endian float32 payload.
func tensorData(byName map[string]*safetensors.Tensor, name string, rows, cols int) ([]float32, error) {
	t, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("checkpoint is missing tensor %q", name)
	}
	if t.DType != safetensors.F32 {
		return nil, fmt.Errorf("tensor %q has dtype %s, want F32", name, t.DType)
	}

	want := rows * cols
	got := 1
	for _, d := range t.Shape {
		got *= int(d)
	}
	if got != want {
		return nil, fmt.Errorf("tensor %q has shape %v, want %d elements", name, t.Shape, want)
	}
	if len(t.Data) != want*4 {
		return nil, fmt.Errorf("tensor %q has %d bytes, want %d", name, len(t.Data), want*4)
	}

	out := make([]float32, want)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.Data[i*4:]))
	}
	return out, nil
}

// Predict runs one L2-normalized embedding through the network.
func (p *Predictor) Predict(embedding []float32) (float32, error) {
	if len(embedding) != p.inputDim {
		return 0, fmt.Errorf("embedding has %d components, predictor expects %d", len(embedding), p.inputDim)
	}
	x := embedding
	for i := range p.layers {
		x = p.layers[i].apply(x)
	}
	return x[0], nil
}

// PredictBatch scores a batch of embeddings, one scalar per input.
func (p *Predictor) PredictBatch(embeddings [][]float32) ([]float32, error) {
	scores := make([]float32, len(embeddings))
	for i, emb := range embeddings {
		score, err := p.Predict(emb)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}
