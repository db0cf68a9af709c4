package cli

import (
	"fmt"
	"strings"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/metadata"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/spf13/cobra"
)

// TreeCommand handles the tree command
type TreeCommand struct {
	fs     filesystem.FileSystem
	client cargo.Client
}

// NewTreeCommand creates the tree command
func NewTreeCommand(fs filesystem.FileSystem, client cargo.Client) *cobra.Command {
	cmd := &TreeCommand{fs: fs, client: client}

	cobraCmd := &cobra.Command{
		Use:   "tree",
		Short: "Render the resolved dependency tree",
		Long: `tree runs the metadata query and prints the fully expanded
dependency tree. Duplicated versions are highlighted, packages with a
newer version in the registry index are marked outdated, and non-normal
dependency kinds are annotated.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringP("package", "p", "", "Workspace member to start from")
	cobraCmd.Flags().Bool("no-index", false, "Skip the registry index (no outdated markers)")

	return cobraCmd
}

// Run executes the tree command
func (c *TreeCommand) Run(cmd *cobra.Command, args []string) error {
	manifestPath, err := resolveManifestPath(cmd, c.fs)
	if err != nil {
		return err
	}

	var lookup metadata.LatestLookup
	if noIndex, _ := cmd.Flags().GetBool("no-index"); !noIndex {
		ix := newIndex(cmd, c.fs)
		tryRefreshIndex(cmd.Context(), ix)
		lookup = ix
	}

	service := metadata.NewService(c.client, lookup)
	graph, err := service.Refresh(cmd.Context(), manifestPath)
	if err != nil {
		return err
	}

	rootName, _ := cmd.Flags().GetString("package")
	rows := metadata.Flatten(graph, rootName, openAll(graph))

	fmt.Fprint(cmd.OutOrStdout(), renderTree(graph, rootName, rows))
	return nil
}

// openAll builds an open-set containing every resolved package, so the
// flattened view shows the whole tree.
func openAll(g *metadata.Graph) models.OpenSet {
	open := models.NewOpenSet()
	for id := range g.Packages {
		open.Toggle(id)
	}
	return open
}

func renderTree(g *metadata.Graph, rootName string, rows []models.DisplayRow) string {
	var b strings.Builder

	for _, id := range g.Members {
		node := g.Packages[id]
		if node == nil || (rootName != "" && node.Name != rootName) {
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s\n", node.Name, VersionStyle.Render("v"+node.Version)))
	}

	for _, row := range rows {
		b.WriteString(renderRow(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderRow(row models.DisplayRow) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", row.Depth+1))
	b.WriteString(row.Name)
	b.WriteByte(' ')
	b.WriteString(VersionStyle.Render("v" + row.Version))
	if row.DepKind != "" {
		b.WriteString(SubtleStyle.Render(" [" + row.DepKind + "]"))
	}
	if row.Duplicated {
		b.WriteString(" " + DuplicatedStyle.Render("(duplicate)"))
	}
	if row.Outdated {
		b.WriteString(" " + OutdatedStyle.Render("(outdated)"))
	}
	return b.String()
}
