package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/design"
	"github.com/OpenTraceLab/OpenTraceFASM/pkg/xc7"
	"github.com/spf13/cobra"
)

var emitOutput string

var emitCmd = &cobra.Command{
	Use:   "emit <snapshot-file>",
	Short: "Resolve a design snapshot into FASM text",
	Long: `Load a placed-and-routed design snapshot and resolve it into FASM
feature lines: logic configuration, IO standards, routing pips, block
RAM initialization, clocking and hard IP blocks.

Examples:
  fasmgen emit design.yaml
  fasmgen emit design.yaml -o design.fasm`,
	Args: cobra.ExactArgs(1),
	RunE: runEmit,
}

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().StringVarP(&emitOutput, "output", "o", "",
		"output file (default stdout)")
}

func runEmit(cmd *cobra.Command, args []string) error {
	filename := args[0]

	if verbose {
		fmt.Fprintf(os.Stderr, "Loading snapshot: %s\n", filename)
	}

	d, err := design.LoadSnapshot(filename)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d tiles, %d cells, %d nets\n",
			len(d.Tiles), len(d.Cells), len(d.Nets))
	}

	out := os.Stdout
	if emitOutput != "" {
		f, err := os.Create(emitOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := xc7.Write(d, out); err != nil {
		return fmt.Errorf("failed to resolve design: %w", err)
	}

	if verbose && emitOutput != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", emitOutput)
	}
	return nil
}
