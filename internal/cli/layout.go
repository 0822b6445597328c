package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// layoutFlags holds the flags shared by build, migrate and reduce.
// Flags override the configuration file only when set on the command line.
type layoutFlags struct {
	output     string
	formatsStr string
	noCache    bool
	refresh    bool
	table      bool
	input      string // names the outputs when the design is loaded up front

	width, height float64
	scale         float64
	labels, cuts  bool
	font          string
}

// bind registers the shared flags on cmd.
func (f *layoutFlags) bind(cmd *cobra.Command) {
	d := pipeline.Options{}
	d.SetRenderDefaults()

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format), base path (several) or - for stdout")
	cmd.Flags().StringVarP(&f.formatsStr, "format", "f", "", "output format(s): svg, png, pdf, json, txt, dot (comma-separated; default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().BoolVar(&f.table, "table", false, "print the module table")

	cmd.Flags().Float64Var(&f.width, "width", d.Width, "drawing width in mm")
	cmd.Flags().Float64Var(&f.height, "height", d.Height, "drawing height in mm")
	cmd.Flags().Float64Var(&f.scale, "scale", d.Scale, "PNG resolution in pixels per mm")
	cmd.Flags().BoolVar(&f.labels, "labels", true, "label modules with their IDs")
	cmd.Flags().BoolVar(&f.cuts, "cuts", false, "draw cut lines")
	cmd.Flags().StringVar(&f.font, "font", "", "font file for labels (default: a system sans-serif font)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// apply copies the flags that were set onto opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	formats, err := parseFormats(f.formatsStr, opts.Formats)
	if err != nil {
		return err
	}
	opts.Formats = formats
	opts.Refresh = f.refresh

	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("scale") {
		opts.Scale = f.scale
	}
	if flags.Changed("labels") {
		opts.Labels = f.labels
	}
	if flags.Changed("cuts") {
		opts.Cuts = f.cuts
	}
	if flags.Changed("font") {
		opts.Font = f.font
	}
	return nil
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "build [modules.txt]",
		Short: "Build the slicing tree of a module list",
		Long: `Build the slicing tree of a module list.

The module list has one module per line: "x y width height", optionally
followed by + or - to mark a net member. The modules must tile a rectangle
that can be cut recursively into two parts; anything else fails with
BUILD_FAILURE.

The tree shape is printed in prefix notation, for example V(H(1,3),H(2,4)),
and the layout is written in the requested formats.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("txt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.defaultOptions(pipeline.OpBuild)
			opts.Path = args[0]
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

// migrateCommand creates the net migration command.
func (c *CLI) migrateCommand() *cobra.Command {
	var (
		flags  layoutFlags
		x, y   float64
		netStr string
	)

	cmd := &cobra.Command{
		Use:   "migrate [modules.txt]",
		Short: "Pull the net toward a target point",
		Long: `Pull the net toward a target point.

The net is the set of modules marked + or - in the module list, or the IDs
given with --net. Every cut of the slicing tree is swapped when that brings
the weighted center of the net closer to the target; module sizes never
change. The target defaults to the [target] section of the config file.

The migrated floorplan can be written as a module list with -f txt.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("txt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.defaultOptions(pipeline.OpMigrate)
			opts.Path = args[0]
			if cmd.Flags().Changed("x") {
				opts.TargetX = x
			}
			if cmd.Flags().Changed("y") {
				opts.TargetY = y
			}
			opts.Net = parseIDs(netStr)
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, flags)
		},
	}
	flags.bind(cmd)
	cmd.Flags().Float64Var(&x, "x", 0, "target x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "target y coordinate")
	cmd.Flags().StringVar(&netStr, "net", "", "net member IDs (comma-separated; default: modules marked + or -)")
	return cmd
}

// reduceCommand creates the distance reduction command.
func (c *CLI) reduceCommand() *cobra.Command {
	var (
		flags layoutFlags
		pick  bool
	)

	cmd := &cobra.Command{
		Use:   "reduce [modules.txt] [a b]",
		Short: "Bring two modules next to each other",
		Long: `Bring two modules next to each other.

The pair is given as two module IDs. Without them the two modules marked
+ or - in the module list are used, and --pick opens an interactive list
to choose them. Only cut children are swapped; module sizes never change.`,
		ValidArgsFunction: completeReduceArgs,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("expected a module list and optionally two module IDs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.defaultOptions(pipeline.OpReduce)
			opts.Path = args[0]
			if len(args) == 3 {
				opts.A, opts.B = args[1], args[2]
			}
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			if pick {
				design, err := pkgio.ImportModules(opts.Path)
				if err != nil {
					return err
				}
				a, b, err := pickPair(design.Modules)
				if err != nil {
					return err
				}
				opts.A, opts.B = a, b
				opts.Design, opts.Path = design, ""
				flags.input = args[0]
			}
			return c.runLayout(cmd.Context(), opts, flags)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the two modules interactively")
	return cmd
}

// runLayout executes the pipeline and reports the result.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, flags layoutFlags) error {
	input := opts.Path
	if input == "" {
		input = flags.input
	}
	if flags.output == stdoutPath {
		prev := uiOut
		uiOut = os.Stderr
		defer func() { uiOut = prev }()
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	prog := newProgress(opts.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Running %s...", opts.Operation))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("%s failed", opts.Operation))
		return err
	}
	spinner.Stop()
	prog.done("finished "+opts.Operation, "modules", result.Stats.ModuleCount, "swaps", result.Optimize.Swaps)
	prog.stages(result.Stats, result.CacheInfo)

	printLayoutResult(result)
	if flags.table {
		printModuleTable(result.Layout.Modules)
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		suffix:    opts.Operation,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}

// printLayoutResult prints the tree shape and what the operation did.
func printLayoutResult(r *pipeline.Result) {
	info := r.Optimize
	switch info.Operation {
	case pipeline.OpMigrate:
		printSuccess("Migrated net with %s", plural(info.Swaps, "swap"))
	case pipeline.OpReduce:
		printSuccess("Reduced distance of %s with %s", joinPair(info.Pair), plural(info.Swaps, "swap"))
	default:
		printSuccess("Built slicing tree")
	}
	printStats(r.Stats.ModuleCount, r.Stats.Depth, info.Swaps, r.CacheInfo.LayoutHit)
	printKeyValue("shape", r.Layout.Shape)

	switch info.Operation {
	case pipeline.OpMigrate:
		if r.Layout.Target != nil {
			printKeyValue("target", pointString(r.Layout.Target))
		}
		if info.CenterBefore != nil && info.CenterAfter != nil {
			printKeyValue("center", pointString(info.CenterBefore)+" → "+pointString(info.CenterAfter))
			printKeyValue("distance", distanceChange(info.DistanceBefore, info.DistanceAfter))
		} else {
			printDetail("no net members; nothing to migrate")
		}
	case pipeline.OpReduce:
		printKeyValue("distance", distanceChange(info.DistanceBefore, info.DistanceAfter))
	}
}

func pointString(p *pkgio.Point) string {
	return p.Geometry().String()
}

func distanceChange(before, after float64) string {
	return fmt.Sprintf("%s → %s", formatFloat(round3(before)), formatFloat(round3(after)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func joinPair(pair []string) string {
	if len(pair) != 2 {
		return "pair"
	}
	return pair[0] + " and " + pair[1]
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
