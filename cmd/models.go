package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rockerboo/ae-score/internal/registry"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the known predictor checkpoints and CLIP encoder variants",
	Run: func(cmd *cobra.Command, args []string) {
		runModels()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "MODEL\tDEFAULT")
	fmt.Fprintln(w, "-----\t-------")
	for _, name := range registry.CheckpointNames() {
		def := ""
		if name == registry.DefaultModel {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\n", name, def)
	}

	fmt.Fprintln(w, "\nCLIP MODEL\tDIM\tDEFAULT")
	fmt.Fprintln(w, "----------\t---\t-------")
	for _, name := range registry.EncoderNames() {
		def := ""
		if name == registry.DefaultClipModel {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, registry.EmbeddingDim(name), def)
	}
	w.Flush()
}
