// Package scorer runs the batch inference stage: decode images, encode
// them into CLIP embeddings, normalize, and score each embedding with
// the aesthetic predictor.
package scorer

import (
	"math"

	"github.com/rockerboo/ae-score/internal/encoder"
	"github.com/rockerboo/ae-score/internal/types"
)

// Predictor scores a batch of normalized embeddings, one scalar each.
// Satisfied by *predictor.Predictor.
type Predictor interface {
	PredictBatch(embeddings [][]float32) ([]float32, error)
}

// Normalize scales a vector to unit Euclidean length. A zero-norm vector
// is divided by one instead, so the result never contains NaN or Inf.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// Result is the output of ScoreAll: one record per input file, in input
// order, plus the normalized embedding behind each score.
type Result struct {
	Records    []types.ScoreRecord
	Embeddings [][]float32
}

// ScoreAll partitions files into consecutive chunks of at most batchSize
// and scores each chunk. onBatch, when non-nil, is invoked after every
// chunk with the running total of scored files. A single undecodable
// file aborts the whole run.
func ScoreAll(files []string, enc encoder.Encoder, pred Predictor, batchSize int, onBatch func(scored int)) (*Result, error) {
	res := &Result{
		Records:    make([]types.ScoreRecord, 0, len(files)),
		Embeddings: make([][]float32, 0, len(files)),
	}

	for start := 0; start < len(files); start += batchSize {
		end := min(start+batchSize, len(files))
		chunk := files[start:end]

		batch := make([][]float32, 0, len(chunk))
		for _, file := range chunk {
			img, err := encoder.DecodeFile(file)
			if err != nil {
				return nil, err
			}
			batch = append(batch, encoder.Preprocess(img, enc.PixelSize()))
		}

		features, err := enc.Encode(batch)
		if err != nil {
			return nil, err
		}

		embeddings := make([][]float32, len(features))
		for i, f := range features {
			embeddings[i] = Normalize(f)
		}

		scores, err := pred.PredictBatch(embeddings)
		if err != nil {
			return nil, err
		}

		for i, file := range chunk {
			res.Records = append(res.Records, types.ScoreRecord{File: file, Score: scores[i]})
		}
		res.Embeddings = append(res.Embeddings, embeddings...)

		if onBatch != nil {
			onBatch(len(res.Records))
		}
	}

	return res, nil
}
