package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rockerboo/ae-score/internal/store"
	"github.com/spf13/cobra"
)

// dbURL is the connection string, from --db or the POSTGRES_* environment.
var dbURL string

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "ae-score",
	Short:   "Score images for aesthetic quality with a CLIP-based predictor",
	Version: Version, // This enables the --version flag
}

// openStore connects to the history database. Only the commands that
// persist or query runs call this; plain scoring works without Postgres.
func openStore(ctx context.Context) (*store.Store, error) {
	url := dbURL
	if url == "" {
		if host := os.Getenv("POSTGRES_HOST"); host != "" {
			user := os.Getenv("POSTGRES_USER")
			pass := os.Getenv("POSTGRES_PASSWORD")
			name := os.Getenv("POSTGRES_DB")
			port := os.Getenv("POSTGRES_PORT")
			if port == "" {
				port = "5432"
			}
			url = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
		} else {
			// Fallback to local default if no env vars are present
			url = "postgres://localhost:5432/aescore"
		}
	}

	db, err := store.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the score history (default: postgres://localhost:5432/aescore)")
}
