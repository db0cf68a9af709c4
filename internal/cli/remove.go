package cli

import (
	"fmt"

	"github.com/cargodeck/cargodeck/internal/editor"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/spf13/cobra"
)

// RemoveCommand handles the remove command
type RemoveCommand struct {
	fs filesystem.FileSystem
}

// NewRemoveCommand creates the remove command
func NewRemoveCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &RemoveCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:     "remove <crate>",
		Aliases: []string{"rm"},
		Short:   "Remove a dependency from the manifest",
		Args:    cobra.ExactArgs(1),
		RunE:    cmd.Run,
	}

	registerKindFlags(cobraCmd)

	return cobraCmd
}

// Run executes the remove command
func (c *RemoveCommand) Run(cmd *cobra.Command, args []string) error {
	manifestPath, err := resolveManifestPath(cmd, c.fs)
	if err != nil {
		return err
	}
	kind, err := depKindFromFlags(cmd)
	if err != nil {
		return err
	}

	name := args[0]
	if err := editor.New(c.fs, nil).Remove(manifestPath, name, kind); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("removed"), name)
	return nil
}
