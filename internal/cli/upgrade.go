package cli

import (
	"fmt"

	"github.com/cargodeck/cargodeck/internal/editor"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/spf13/cobra"
)

// UpgradeCommand handles the upgrade command
type UpgradeCommand struct {
	fs filesystem.FileSystem
}

// NewUpgradeCommand creates the upgrade command
func NewUpgradeCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &UpgradeCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "upgrade <crate>",
		Short: "Pin a dependency to the latest published version",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	registerKindFlags(cobraCmd)

	return cobraCmd
}

// Run executes the upgrade command
func (c *UpgradeCommand) Run(cmd *cobra.Command, args []string) error {
	manifestPath, err := resolveManifestPath(cmd, c.fs)
	if err != nil {
		return err
	}
	kind, err := depKindFromFlags(cmd)
	if err != nil {
		return err
	}

	ix := newIndex(cmd, c.fs)
	if err := ix.Refresh(cmd.Context()); err != nil {
		return err
	}

	name := args[0]
	if err := editor.New(c.fs, ix).Upgrade(manifestPath, name, kind); err != nil {
		return err
	}

	latest, err := ix.Latest(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", SuccessStyle.Render("upgraded"), name, VersionStyle.Render("v"+latest.String()))
	return nil
}
