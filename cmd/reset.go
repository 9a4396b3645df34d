package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rockerboo/ae-score/internal/cache"
	"github.com/rockerboo/ae-score/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetCache bool
	resetDB    bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local state (model cache, score history)",
	Long:  "Clears cached models and/or the score history database. By default, it resets everything. Use flags to clear specific components.",
	Run: func(cmd *cobra.Command, args []string) {
		// If no flags are set, default to clearing EVERYTHING
		if !resetCache && !resetDB {
			resetCache = true
			resetDB = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetCache {
			if utils.Confirm(reader, "Are you sure you want to delete all cached models?") {
				fmt.Println("Clearing model cache...")
				if err := cache.Clear(); err != nil {
					utils.Die("Failed to clear model cache", err)
				}
			}
		}

		if resetDB {
			if utils.Confirm(reader, "Are you sure you want to DROP the score history tables?") {
				fmt.Println("Clearing score history...")
				ctx := cmd.Context()
				db, err := openStore(ctx)
				if err != nil {
					utils.Die("Failed to open score history", err)
				}
				defer db.Close(ctx)
				if err := db.Reset(ctx); err != nil {
					utils.Die("Failed to reset database", err)
				}
			}
		}

		fmt.Println("Reset complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetCache, "cache", false, "Clear the model cache directory")
	resetCmd.Flags().BoolVar(&resetDB, "db", false, "Drop the score history tables")
	rootCmd.AddCommand(resetCmd)
}
