package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFASM/pkg/fasm"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <fasm-file>",
	Short: "Validate the syntax of a FASM file",
	Long: `Parse a FASM file and report whether every line is well formed:
dotted feature paths, bit ranges and sized binary vector literals.

Examples:
  fasmgen check design.fasm`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	filename := args[0]

	parser, err := fasm.NewParser()
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	file, err := parser.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	scalars, vectors := 0, 0
	for _, line := range file.Lines {
		if line.Value != nil {
			vectors++
		} else {
			scalars++
		}
	}
	fmt.Printf("%s: %d features (%d scalar, %d vector)\n",
		filename, len(file.Lines), scalars, vectors)

	if verbose {
		for _, line := range file.Lines {
			if line.Value != nil {
				fmt.Printf("  %s = %d bits\n", line.Path(), line.Value.Width)
			} else {
				fmt.Printf("  %s\n", line.Path())
			}
		}
	}
	return nil
}
