package cli

import (
	"fmt"

	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/spf13/cobra"
)

// SearchCommand handles the search command
type SearchCommand struct {
	fs filesystem.FileSystem
}

// NewSearchCommand creates the search command
func NewSearchCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &SearchCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "search <prefix>",
		Short: "List crate names starting with a prefix",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().IntP("limit", "n", 20, "Maximum number of results")

	return cobraCmd
}

// Run executes the search command
func (c *SearchCommand) Run(cmd *cobra.Command, args []string) error {
	ix := newIndex(cmd, c.fs)
	if err := ix.Refresh(cmd.Context()); err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	names := ix.Search(args[0], limit)
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("no matches"))
		return nil
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
