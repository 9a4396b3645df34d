package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rockerboo/ae-score/internal/cache"
	"github.com/rockerboo/ae-score/internal/device"
	"github.com/rockerboo/ae-score/internal/encoder"
	"github.com/rockerboo/ae-score/internal/registry"
	"github.com/rockerboo/ae-score/internal/scorer"
)

var (
	similarClipModel string
	similarDevice    string
	similarLimit     int
)

var similarCmd = &cobra.Command{
	Use:   "similar <image_path>",
	Short: "Find previously scored images that look like the given one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSimilar(cmd.Context(), args[0])
	},
}

func init() {
	similarCmd.Flags().StringVar(&similarClipModel, "clip_model", registry.DefaultClipModel, "CLIP model variant (must match the stored runs)")
	similarCmd.Flags().StringVar(&similarDevice, "device", "", "Device to do inference on (default: auto-detect)")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 10, "Maximum number of matches to show")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(ctx context.Context, imagePath string) error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("input file does not exist: %w", err)
	}

	variant, err := registry.LookupEncoder(similarClipModel)
	if err != nil {
		return err
	}
	dev, err := device.Resolve(similarDevice)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Loading CLIP %s\n", similarClipModel)
	encoderPath, err := cache.Ensure(variant.File(), variant.URL)
	if err != nil {
		return err
	}
	enc, err := encoder.Load(encoderPath, variant, dev)
	if err != nil {
		return err
	}
	defer enc.Close()

	img, err := encoder.DecodeFile(imagePath)
	if err != nil {
		return err
	}
	features, err := enc.Encode([][]float32{encoder.Preprocess(img, enc.PixelSize())})
	if err != nil {
		return err
	}
	vec := scorer.Normalize(features[0])

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	matches, err := db.FindSimilar(ctx, vec, similarLimit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No stored images to compare against.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FILE\tSCORE\tDISTANCE\tRUN")
	fmt.Fprintln(w, "----\t-----\t--------\t---")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%d\n", m.File, m.Score, m.Distance, m.RunID)
	}
	w.Flush()

	return nil
}
