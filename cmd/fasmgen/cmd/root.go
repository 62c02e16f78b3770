package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fasmgen",
	Short: "FASM configuration generator for xc7 designs",
	Long: `Resolves a placed-and-routed xc7 design snapshot into FASM text,
the feature-per-line format consumed by bitstream assemblers.

Examples:
  fasmgen emit design.yaml -o design.fasm     # Resolve a design snapshot
  fasmgen check design.fasm                   # Validate FASM syntax`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
