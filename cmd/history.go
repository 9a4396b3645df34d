package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rockerboo/ae-score/internal/utils"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted scoring runs from the database",
	Run: func(cmd *cobra.Command, args []string) {
		runHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command) {
	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		utils.Die("Failed to open score history", err)
	}
	defer db.Close(ctx)

	runs, err := db.ListRuns(ctx)
	if err != nil {
		utils.Die("Failed to list runs", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found in database.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tPATH\tMODEL\tFILES\tMEAN\tCREATED")
	fmt.Fprintln(w, "--\t----\t-----\t-----\t----\t-------")

	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4f\t%s\n",
			run.ID, run.Path, run.Model, run.Count, run.Mean,
			run.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}
