package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// Tree diagram formats.
const (
	treeFormatSVG = "svg"
	treeFormatPNG = "png"
	treeFormatDOT = "dot"
)

// treeCommand creates the tree command, which draws the slicing tree itself
// rather than the floorplan.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		output  string
		format  string
		op      string
		x, y    float64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "tree [modules.txt]",
		Short: "Draw the slicing tree with Graphviz",
		Long: `Draw the slicing tree with Graphviz.

Internal nodes show their cut (H or V) and leaves their module ID. Net
members are highlighted, and with --op migrate or --op reduce the cuts
swapped by the operation are marked.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("txt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case treeFormatSVG, treeFormatPNG, treeFormatDOT:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "tree format must be svg, png or dot; got %q", format)
			}
			opts := c.defaultOptions(op)
			opts.Path = args[0]
			if cmd.Flags().Changed("x") {
				opts.TargetX = x
			}
			if cmd.Flags().Changed("y") {
				opts.TargetY = y
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], ".txt") + ".tree." + format
			}
			return c.runTree(cmd.Context(), opts, format, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.tree.<format>, - for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", treeFormatSVG, "diagram format: svg, png, dot")
	cmd.Flags().StringVar(&op, "op", pipeline.OpBuild, "operation to apply first: build, migrate, reduce")
	cmd.Flags().Float64Var(&x, "x", 0, "migration target x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "migration target y coordinate")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runTree(ctx context.Context, opts pipeline.Options, format, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)

	design, err := runner.Parse(ctx, opts)
	if err != nil {
		return err
	}
	// Swap flags exist only on a freshly computed tree.
	opts.Refresh = true
	tree, _, info, err := runner.ComputeLayout(ctx, design, opts)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case treeFormatDOT:
		data = []byte(tree.ToDOT())
	case treeFormatPNG:
		data, err = tree.RenderPNG(ctx)
	default:
		data, err = tree.RenderSVG(ctx)
	}
	if err != nil {
		return fmt.Errorf("draw tree: %w", err)
	}

	if output == stdoutPath {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := errors.ValidatePath(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Drew slicing tree %s", tree)
	if info.Swaps > 0 {
		printDetail("%s marked", plural(info.Swaps, "swapped cut"))
	}
	printFile(output)
	return nil
}
