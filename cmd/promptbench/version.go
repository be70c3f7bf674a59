package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"promptbench/internal/inference"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config and logger setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "promptbench %s (llama backend built: %t)\n", version, inference.LlamaBuilt())
			return err
		},
	}
}
