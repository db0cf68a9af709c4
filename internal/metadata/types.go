package metadata

import (
	"github.com/cargodeck/cargodeck/internal/models"
)

// Graph is the full resolved dependency graph of one project, as
// reported by the build tool's metadata query. A Graph is an immutable
// snapshot: refreshes produce a new Graph rather than mutating one.
type Graph struct {
	// Packages indexes every resolved package by its opaque id
	Packages map[models.PackageID]*PackageNode

	// Members lists the workspace member ids, in the tool's order
	Members []models.PackageID
}

// PackageNode is one resolved package. Identity is (Name, Version): a
// name may appear under several ids when multiple versions are pulled
// in, which is exactly the duplicate signal.
type PackageNode struct {
	ID           models.PackageID
	Name         string
	Version      string
	ManifestPath string

	// FeaturesDecl maps declared feature names to what they enable
	FeaturesDecl map[string][]string

	// Targets are the buildable targets (bins, examples, tests, ...)
	Targets []Target

	// Deps are the outgoing resolved dependency edges
	Deps []DepEdge

	// Duplicated is set when another resolved version of the same
	// name exists anywhere in the graph
	Duplicated bool

	// Outdated is set when the registry knows a newer version
	Outdated bool
}

// Target is one buildable target of a package.
type Target struct {
	Name  string
	Kinds []string
}

// IsKind reports whether the target has the given kind (bin, example,
// test, lib, ...).
func (t Target) IsKind(kind string) bool {
	for _, k := range t.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// DepEdge is one resolved dependency edge, tagged with every kind the
// dependency is declared under.
type DepEdge struct {
	To    models.PackageID
	Kinds []models.DepKind
}

// AllNormal reports whether the edge carries only normal kinds.
func (e DepEdge) AllNormal() bool {
	for _, k := range e.Kinds {
		if k != models.DepKindNormal {
			return false
		}
	}
	return true
}

// Member returns the workspace member node with the given name, or nil.
func (g *Graph) Member(name string) *PackageNode {
	for _, id := range g.Members {
		if n := g.Packages[id]; n != nil && n.Name == name {
			return n
		}
	}
	return nil
}

// IsMember reports whether the id is a workspace member.
func (g *Graph) IsMember(id models.PackageID) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}
