// Package report aggregates score records: sorting, mean computation,
// console output and CSV persistence.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rockerboo/ae-score/internal/types"
)

// printLimit caps how many individual records get printed; beyond this
// only the summary line appears.
const printLimit = 300

// Sorted returns a copy of records ordered by descending score. The sort
// is stable, so ties keep their original relative order.
func Sorted(records []types.ScoreRecord) []types.ScoreRecord {
	out := make([]types.ScoreRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Mean is the arithmetic average of all scores. Only defined for a
// non-empty input; callers check for the empty case first.
func Mean(records []types.ScoreRecord) float64 {
	var sum float64
	for _, rec := range records {
		sum += float64(rec.Score)
	}
	return sum / float64(len(records))
}

// Print writes the per-file results followed by the summary line.
// Individual records are only listed for small result sets.
func Print(w io.Writer, sorted []types.ScoreRecord) {
	if len(sorted) == 0 {
		fmt.Fprintln(w, "no scores. Did you put the correct directory/image in?")
		return
	}

	if len(sorted) < printLimit {
		for _, rec := range sorted {
			fmt.Fprintf(w, "%s %s\n", rec.File, formatScore(rec.Score))
		}
	}

	fmt.Fprintf(w, "average score: %v\n", Mean(sorted))
}

// DefaultCSVFile names the output when --csv_file is not given.
func DefaultCSVFile() string {
	return fmt.Sprintf("scores-%d.csv", time.Now().Unix())
}

// SaveCSV persists records, in their given (pre-sort) order, as
// file,score rows. When prefix is non-empty each file path is joined
// underneath it.
func SaveCSV(records []types.ScoreRecord, csvFile, prefix string) error {
	f, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", csvFile, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"file", "score"}); err != nil {
		return err
	}
	for _, rec := range records {
		file := rec.File
		if prefix != "" {
			file = filepath.Join(prefix, file)
		}
		if err := w.Write([]string{file, formatScore(rec.Score)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Saved CSV to %s\n", csvFile)
	return nil
}

func formatScore(score float32) string {
	return strconv.FormatFloat(float64(score), 'f', -1, 32)
}
