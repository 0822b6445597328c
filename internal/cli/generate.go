package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
)

// generateCommand creates the generate command, which writes a random
// sliceable module list.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		n      int
		seed   uint64
		output string
		gen    = floorplan.GenerateOptions{Width: 24, Height: 16, NetSize: 2}
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random sliceable module list",
		Long: `Write a random sliceable module list.

The chip is cut recursively at integer positions until it holds the
requested number of modules; the result always builds. The same seed
produces the same list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			design, err := floorplan.Generate(n, seed, &gen)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("generated design", "modules", design.Len(), "seed", seed)

			if output == "" || output == stdoutPath {
				return pkgio.WriteModules(os.Stdout, design.Modules)
			}
			if err := errors.ValidatePath(output); err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := pkgio.WriteModules(f, design.Modules); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			printSuccess("Generated %d modules (seed %d)", design.Len(), seed)
			printFile(output)
			printNextStep("Next", "floorplanner migrate "+output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "modules", "n", 8, "number of modules")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: current time)")
	cmd.Flags().IntVar(&gen.Width, "chip-width", gen.Width, "chip width in grid units")
	cmd.Flags().IntVar(&gen.Height, "chip-height", gen.Height, "chip height in grid units")
	cmd.Flags().IntVar(&gen.NetSize, "net", gen.NetSize, "number of net members")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
