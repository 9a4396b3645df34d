package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/maruel/safetensors"
	"github.com/spf13/cobra"
)

var metadataKeys bool

var metadataCmd = &cobra.Command{
	Use:   "metadata <checkpoint>",
	Short: "Print the embedded metadata of a safetensors checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runMetadata(args[0], metadataKeys)
	},
}

func init() {
	metadataCmd.Flags().BoolVar(&metadataKeys, "keys", false, "List out all the tensor keys in this checkpoint")
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(path string, keys bool) error {
	s := &safetensors.Mapped{}
	if err := s.Open(path); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer s.Close()

	out, err := json.MarshalIndent(s.Metadata, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if keys {
		for _, t := range s.Tensors {
			fmt.Println(t.Name)
		}
	}
	return nil
}
