// Package cmd implements the libroteca command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "libroteca",
	Short: "Personal document library with retrieval-augmented chat agents",
	Long: `Libroteca manages a personal document library: upload documents,
index their contents into per-document vector stores, and compose chat
agents that answer questions grounded in a chosen subset of the library.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".libroteca.yml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command. Cobra prints the error itself, so the
// caller only needs the exit code.
func Execute() error {
	return rootCmd.Execute()
}
