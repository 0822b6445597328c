package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// renderCommand creates the render command for drawing a saved layout.
func (c *CLI) renderCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Draw a saved layout",
		Long: `Draw a saved layout.

The render command takes a layout.json file (written by build, migrate or
reduce with -f json) and draws it as SVG, PDF or PNG. The layout holds every
module position, so no tree is rebuilt except for the dot format.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.defaultOptions(pipeline.OpBuild)
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

// runRender loads the layout and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags) error {
	layout, err := pkgio.ImportLayout(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if flags.table {
		printModuleTable(layout.Modules)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, nil, layout, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	printSuccess("Rendered %d modules", len(layout.Modules))

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		cacheHit:  cacheHit,
	})
}
