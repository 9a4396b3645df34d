package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rockerboo/ae-score/internal/cache"
	"github.com/rockerboo/ae-score/internal/device"
	"github.com/rockerboo/ae-score/internal/encoder"
	"github.com/rockerboo/ae-score/internal/predictor"
	"github.com/rockerboo/ae-score/internal/registry"
	"github.com/rockerboo/ae-score/internal/report"
	"github.com/rockerboo/ae-score/internal/scorer"
	"github.com/rockerboo/ae-score/internal/types"
	"github.com/rockerboo/ae-score/internal/utils"
)

// scoreOptions holds the configuration for one scoring run. Immutable
// once flags are parsed.
type scoreOptions struct {
	InputPath     string
	Model         string
	ClipModel     string
	Device        string
	Precision     string
	BatchSize     int
	Quiet         bool
	SaveCSV       bool
	CSVFile       string
	StoreFullPath bool
	Store         bool
}

var scoreOpts scoreOptions

var scoreCmd = &cobra.Command{
	Use:   "score <image_file_or_dir>",
	Short: "Score a directory of images (or a single image) for aesthetic quality",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scoreOpts.InputPath = args[0]
		runScore(cmd, scoreOpts)
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreOpts.SaveCSV, "save_csv", false, "Save the results to a csv file in the current directory")
	scoreCmd.Flags().StringVar(&scoreOpts.CSVFile, "csv_file", "", "Path and filename of the CSV file with the scores")
	scoreCmd.Flags().BoolVar(&scoreOpts.StoreFullPath, "store_full_path", false, "Store the full path to the image in the CSV")
	scoreCmd.Flags().IntVar(&scoreOpts.BatchSize, "batch_size", 5, "Batch size to score the images")
	scoreCmd.Flags().StringVar(&scoreOpts.Model, "model", registry.DefaultModel, "Model to score with")
	scoreCmd.Flags().StringVar(&scoreOpts.ClipModel, "clip_model", registry.DefaultClipModel, "CLIP model variant")
	scoreCmd.Flags().BoolVarP(&scoreOpts.Quiet, "quiet", "q", false, "Disable the progress bar")
	scoreCmd.Flags().StringVar(&scoreOpts.Precision, "precision", "float", "Precision: bf16, fp16, fp32, float")
	scoreCmd.Flags().StringVar(&scoreOpts.Device, "device", "", "Device to do inference on: cpu, cuda, cuda:0, ... (default: auto-detect)")
	scoreCmd.Flags().BoolVar(&scoreOpts.Store, "store", false, "Persist the run to the score history database")

	rootCmd.AddCommand(scoreCmd)
}

// runScore orchestrates the pipeline: model acquisition, file discovery,
// batch inference, aggregation and output.
func runScore(cmd *cobra.Command, opts scoreOptions) {
	// Fail fast on bad configuration before any network or file I/O.
	if opts.BatchSize < 1 {
		utils.Die("Invalid batch size", fmt.Errorf("must be >= 1, got %d", opts.BatchSize))
	}
	if _, err := device.ParsePrecision(opts.Precision); err != nil {
		utils.Die("Invalid precision", err)
	}
	dev, err := device.Resolve(opts.Device)
	if err != nil {
		utils.Die("Invalid device", err)
	}
	checkpoint, err := registry.LookupCheckpoint(opts.Model)
	if err != nil {
		utils.Die("Unknown model", err)
	}
	variant, err := registry.LookupEncoder(opts.ClipModel)
	if err != nil {
		utils.Die("Unknown CLIP model", err)
	}

	fmt.Fprintf(os.Stderr, "Loading %s\n", opts.Model)
	checkpointPath, err := cache.Ensure(checkpoint.File(), checkpoint.URL)
	if err != nil {
		utils.Die("Failed to fetch model checkpoint", err)
	}
	pred, err := predictor.Load(checkpointPath, registry.EmbeddingDim(opts.ClipModel))
	if err != nil {
		utils.Die("Failed to load model checkpoint", err)
	}

	fmt.Fprintf(os.Stderr, "Loading CLIP %s\n", opts.ClipModel)
	encoderPath, err := cache.Ensure(variant.File(), variant.URL)
	if err != nil {
		utils.Die("Failed to fetch CLIP model", err)
	}
	enc, err := encoder.Load(encoderPath, variant, dev)
	if err != nil {
		utils.Die("Failed to load CLIP model", err)
	}
	defer enc.Close()
	fmt.Fprintf(os.Stderr, "Using device %s\n", enc.Device())

	files, err := scorer.Discover(opts.InputPath)
	if err != nil {
		utils.Die("Failed to discover image files", err)
	}
	fmt.Fprintf(os.Stderr, "Files to score: %d\n", len(files))

	var onBatch func(scored int)
	if !opts.Quiet {
		batches := (len(files) + opts.BatchSize - 1) / opts.BatchSize
		bar := progressbar.NewOptions(batches,
			progressbar.OptionSetDescription("scoring"),
			progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
			progressbar.OptionShowCount(),
		)
		onBatch = func(scored int) {
			bar.Describe(fmt.Sprintf("scoring (total %d)", scored))
			bar.Add(1)
		}
		defer bar.Finish()
	}

	result, err := scorer.ScoreAll(files, enc, pred, opts.BatchSize, onBatch)
	if err != nil {
		utils.Die("Scoring failed", err)
	}

	sorted := report.Sorted(result.Records)
	if len(sorted) == 0 {
		report.Print(os.Stdout, sorted)
		return
	}

	if opts.SaveCSV {
		prefix := ""
		if opts.StoreFullPath {
			prefix = opts.InputPath
		}
		csvFile := opts.CSVFile
		if csvFile == "" {
			csvFile = report.DefaultCSVFile()
		}
		// CSV keeps the original pre-sort order.
		if err := report.SaveCSV(result.Records, csvFile, prefix); err != nil {
			utils.Die("Failed to save CSV", err)
		}
	}

	report.Print(os.Stdout, sorted)

	if opts.Store {
		persistRun(cmd, opts, result)
	}
}

// persistRun saves the finished run to the history database.
func persistRun(cmd *cobra.Command, opts scoreOptions, result *scorer.Result) {
	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		utils.Die("Failed to open score history", err)
	}
	defer db.Close(ctx)

	runID, err := db.InsertRun(ctx, types.Run{
		Path:      opts.InputPath,
		Model:     opts.Model,
		ClipModel: opts.ClipModel,
		Mean:      report.Mean(result.Records),
		Count:     len(result.Records),
	})
	if err != nil {
		utils.Die("Failed to register run", err)
	}
	if err := db.InsertScores(ctx, runID, result.Records, result.Embeddings); err != nil {
		utils.Die("Failed to persist scores", err)
	}
	fmt.Fprintf(os.Stderr, "Stored run %d (%d scores)\n", runID, len(result.Records))
}
