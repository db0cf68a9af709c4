package metadata

import (
	"sort"

	"github.com/cargodeck/cargodeck/internal/models"
)

// WorkspaceInfo is the per-workspace summary derived from a graph:
// the selectable packages, runnable and testable targets, and the
// feature list of the selected package(s).
type WorkspaceInfo struct {
	// Packages are the workspace member names, sorted
	Packages []string

	// IsWorkspace is true when more than one member exists
	IsWorkspace bool

	// RunTargets lists binaries and examples (as "name (example)")
	RunTargets []string

	// TestTargets lists integration test targets
	TestTargets []string

	// Features lists declared features with their default state
	Features []models.Feature
}

// Workspace summarizes the graph for the given selected member name;
// empty selects every member. Feature names are prefixed with the
// member name when no single package is selected in a multi-member
// workspace.
func Workspace(g *Graph, selected string) WorkspaceInfo {
	info := WorkspaceInfo{}
	if g == nil {
		return info
	}

	info.IsWorkspace = len(g.Members) > 1

	for _, id := range g.Members {
		node := g.Packages[id]
		if node == nil {
			continue
		}
		info.Packages = append(info.Packages, node.Name)

		isSelected := !info.IsWorkspace || selected == "" || selected == node.Name
		if !isSelected {
			continue
		}

		defaults := make(map[string]bool)
		for _, name := range node.FeaturesDecl["default"] {
			defaults[name] = true
		}
		for name := range node.FeaturesDecl {
			if name == "default" {
				continue
			}
			featureName := name
			if selected == "" && info.IsWorkspace {
				featureName = node.Name + "/" + name
			}
			info.Features = append(info.Features, models.Feature{
				Name:             featureName,
				EnabledByDefault: defaults[name],
			})
		}

		for _, t := range node.Targets {
			switch {
			case t.IsKind("bin"):
				info.RunTargets = append(info.RunTargets, t.Name)
			case t.IsKind("example"):
				info.RunTargets = append(info.RunTargets, t.Name+" (example)")
			case t.IsKind("test"):
				info.TestTargets = append(info.TestTargets, t.Name)
			}
		}
	}

	sort.Strings(info.Packages)
	sort.Strings(info.RunTargets)
	sort.Strings(info.TestTargets)
	sort.Slice(info.Features, func(i, j int) bool {
		return info.Features[i].Name < info.Features[j].Name
	})
	return info
}
