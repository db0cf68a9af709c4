package cli

import (
	"fmt"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/metadata"
	"github.com/spf13/cobra"
)

// FeaturesCommand handles the features command
type FeaturesCommand struct {
	fs     filesystem.FileSystem
	client cargo.Client
}

// NewFeaturesCommand creates the features command
func NewFeaturesCommand(fs filesystem.FileSystem, client cargo.Client) *cobra.Command {
	cmd := &FeaturesCommand{fs: fs, client: client}

	cobraCmd := &cobra.Command{
		Use:   "features",
		Short: "List declared features and buildable targets",
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringP("package", "p", "", "Workspace member to inspect")

	return cobraCmd
}

// Run executes the features command
func (c *FeaturesCommand) Run(cmd *cobra.Command, args []string) error {
	manifestPath, err := resolveManifestPath(cmd, c.fs)
	if err != nil {
		return err
	}

	service := metadata.NewService(c.client, nil)
	graph, err := service.Refresh(cmd.Context(), manifestPath)
	if err != nil {
		return err
	}

	selected, _ := cmd.Flags().GetString("package")
	info := metadata.Workspace(graph, selected)

	out := cmd.OutOrStdout()
	if len(info.Features) == 0 {
		fmt.Fprintln(out, SubtleStyle.Render("no declared features"))
	}
	for _, feature := range info.Features {
		if feature.EnabledByDefault {
			fmt.Fprintf(out, "%s %s\n", feature.Name, SubtleStyle.Render("(default)"))
			continue
		}
		fmt.Fprintln(out, feature.Name)
	}

	if len(info.RunTargets) > 0 {
		fmt.Fprintf(out, "\nrun targets:\n")
		for _, target := range info.RunTargets {
			fmt.Fprintf(out, "  %s\n", target)
		}
	}
	if len(info.TestTargets) > 0 {
		fmt.Fprintf(out, "\ntest targets:\n")
		for _, target := range info.TestTargets {
			fmt.Fprintf(out, "  %s\n", target)
		}
	}

	return nil
}
