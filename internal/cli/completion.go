package cli

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/pipeline"
)

// itemFileExts are the extensions feed.ReadFile accepts.
var itemFileExts = []string{"json", "toml"}

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for waterfall.

Besides commands and flags, the script completes item files (.json, .toml)
for layout, browse and serve, output formats for layout --format (one
comma-separated entry at a time) and color themes for --theme.

  $ source <(waterfall completion bash)
  $ waterfall completion zsh > "${fpath[1]}/_waterfall"
  $ waterfall completion fish | source
  PS> waterfall completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}

func writeCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported shell %q", shell)
}

// registerCompletions attaches argument and flag completions to the feed
// commands of root.
func registerCompletions(root *cobra.Command) {
	for _, name := range []string{"layout", "browse", "serve"} {
		if cmd, _, err := root.Find([]string{name}); err == nil && cmd != root {
			cmd.ValidArgsFunction = completeItemFile
		}
	}
	if cmd, _, err := root.Find([]string{"layout"}); err == nil && cmd != root {
		_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)
	}
}

func completeItemFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return itemFileExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated format
// list, skipping formats already named.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	chosen := parseFormats(prefix)
	if prefix == "" {
		chosen = nil
	}

	var out []string
	for _, f := range slices.Sorted(maps.Keys(pipeline.ValidFormats)) {
		if !slices.Contains(chosen, f) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completeThemes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return slices.Sorted(maps.Keys(pipeline.Themes)), cobra.ShellCompDirectiveNoFileComp
}
