package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for floorplanner.

Bash:
  $ source <(floorplanner completion bash)

Zsh:
  $ floorplanner completion zsh > "${fpath[1]}/_floorplanner"

Fish:
  $ floorplanner completion fish > ~/.config/fish/completions/floorplanner.fish

PowerShell:
  PS> floorplanner completion powershell | Out-String | Invoke-Expression

Module list arguments complete to .txt files, layouts to .json files, and
the module IDs of reduce are read from the module list already typed.`,
		DisableFlagsInUseLine: true,
		Annotations:           map[string]string{skipConfigLoad: "true"},
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeFiles completes the first positional argument to files with ext.
func completeFiles(ext string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []cobra.Completion{ext}, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeReduceArgs completes the module list first and then the IDs of
// its modules, net members first.
func completeReduceArgs(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeFiles("txt")(cmd, args, toComplete)
	}
	if len(args) > 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	design, err := pkgio.ImportModules(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []cobra.Completion
	for _, m := range design.Modules {
		if len(args) == 2 && m.ID == args[1] {
			continue
		}
		if !strings.HasPrefix(m.ID, toComplete) {
			continue
		}
		desc := m.Rect.String()
		if m.IsNet() {
			desc = "net " + m.Sign.String() + " " + desc
		}
		ids = append(ids, cobra.CompletionWithDesc(m.ID, desc))
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes the comma-separated --format list.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	done, _ := splitLast(toComplete)
	var out []cobra.Completion
	for _, f := range sortedFormats() {
		if !strings.Contains(","+done, ","+f+",") {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// splitLast splits "svg,pn" into "svg," and "pn".
func splitLast(s string) (string, string) {
	i := strings.LastIndex(s, ",")
	return s[:i+1], s[i+1:]
}

func sortedFormats() []string {
	formats := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
