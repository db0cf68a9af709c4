package cli

import (
	"fmt"

	"github.com/cargodeck/cargodeck/internal/editor"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/spf13/cobra"
)

// AddCommand handles the add command
type AddCommand struct {
	fs filesystem.FileSystem
}

// NewAddCommand creates the add command
func NewAddCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &AddCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "add <crate>",
		Short: "Add a dependency at its latest published version",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	registerKindFlags(cobraCmd)

	return cobraCmd
}

// Run executes the add command
func (c *AddCommand) Run(cmd *cobra.Command, args []string) error {
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
	if err := editor.New(c.fs, ix).Add(manifestPath, name, kind); err != nil {
		return err
	}

	latest, err := ix.Latest(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", SuccessStyle.Render("added"), name, VersionStyle.Render("v"+latest.String()))
	return nil
}

// registerKindFlags adds the dependency-kind flags shared by the
// manifest-editing commands.
func registerKindFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dev", false, "Use the dev-dependencies table")
	cmd.Flags().Bool("build", false, "Use the build-dependencies table")
}

func depKindFromFlags(cmd *cobra.Command) (models.DepKind, error) {
	dev, _ := cmd.Flags().GetBool("dev")
	build, _ := cmd.Flags().GetBool("build")
	switch {
	case dev && build:
		return "", fmt.Errorf("--dev and --build are mutually exclusive")
	case dev:
		return models.DepKindDev, nil
	case build:
		return models.DepKindBuild, nil
	default:
		return models.DepKindNormal, nil
	}
}
