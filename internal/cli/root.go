package cli

import (
	"fmt"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, client cargo.Client) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cargodeck",
		Short: "Drive cargo builds and inspect the dependency graph",
		Long: `cargodeck is the engine behind a cargo companion: it runs builds with
structured diagnostics, renders the resolved dependency tree with
duplicate/outdated markers, and edits manifest dependencies safely.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.SetLevel(log.LevelDebug)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("manifest-path", "", "Path to Cargo.toml (or its directory)")
	flags.String("index-url", "", "Registry index repository URL")
	flags.String("index-dir", "", "Local registry index mirror directory")
	flags.Bool("pre", false, "Treat prereleases as latest versions")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(NewActionCommand(fs, client, "build"))
	rootCmd.AddCommand(NewActionCommand(fs, client, "run"))
	rootCmd.AddCommand(NewActionCommand(fs, client, "check"))
	rootCmd.AddCommand(NewActionCommand(fs, client, "test"))
	rootCmd.AddCommand(NewTreeCommand(fs, client))
	rootCmd.AddCommand(NewFeaturesCommand(fs, client))
	rootCmd.AddCommand(NewAddCommand(fs))
	rootCmd.AddCommand(NewRemoveCommand(fs))
	rootCmd.AddCommand(NewUpgradeCommand(fs))
	rootCmd.AddCommand(NewSearchCommand(fs))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()
	client := cargo.NewOSClient()

	rootCmd := NewRootCommand(fs, client)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
