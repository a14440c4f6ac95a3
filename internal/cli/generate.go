package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/feed"
)

const defaultGenerateCount = 200

// generateCommand creates the generate command for synthetic item files.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output string
		count  int
		seed   uint64
		from   int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic item file",
		Long: `Write a synthetic item file.

Items are derived from the seed and their position, so the same seed always
produces the same feed and a range starting at --from continues an earlier
file. The format follows the output extension (.json or .toml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			prog := newProgress(c.Logger)
			items := feed.Generate(seed, from, count)
			if err := feed.WriteFile(output, items); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			prog.done("Generated feed", "items", len(items), "seed", seed, "file", output)

			printSuccess("Feed generated")
			printFile(output)
			printNewline()
			printNextStep("Browse", appName+" browse "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "items.json", "output file (.json or .toml)")
	cmd.Flags().IntVarP(&count, "count", "n", defaultGenerateCount, "number of items")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "generator seed")
	cmd.Flags().IntVar(&from, "from", 0, "position of the first item")

	return cmd
}
