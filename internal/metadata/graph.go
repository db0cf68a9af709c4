package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/cargodeck/cargodeck/internal/semver"
)

// LatestLookup answers "what is the newest published version of this
// package" queries. Lookups are best-effort: a failing lookup only
// degrades the outdated flag, never a refresh.
type LatestLookup interface {
	Latest(name string) (semver.Version, error)
}

// Service runs the metadata query and turns its output into Graphs.
type Service struct {
	client cargo.Client
	lookup LatestLookup
}

// NewService creates a Service. lookup may be nil, in which case no
// package is ever marked outdated.
func NewService(client cargo.Client, lookup LatestLookup) *Service {
	return &Service{client: client, lookup: lookup}
}

// Refresh runs the metadata query for the manifest and builds the
// resolved graph with duplicate and outdated flags computed.
func (s *Service) Refresh(ctx context.Context, manifestPath string) (*Graph, error) {
	data, err := s.client.Metadata(ctx, manifestPath)
	if err != nil {
		return nil, err
	}

	graph, err := Decode(data)
	if err != nil {
		return nil, err
	}

	markDuplicates(graph)
	s.markOutdated(graph)
	return graph, nil
}

// metadataJSON mirrors the parts of the `cargo metadata` document the
// engine consumes.
type metadataJSON struct {
	Packages []struct {
		ID           string              `json:"id"`
		Name         string              `json:"name"`
		Version      string              `json:"version"`
		ManifestPath string              `json:"manifest_path"`
		Features     map[string][]string `json:"features"`
		Targets      []struct {
			Name string   `json:"name"`
			Kind []string `json:"kind"`
		} `json:"targets"`
	} `json:"packages"`
	WorkspaceMembers []string `json:"workspace_members"`
	Resolve          *struct {
		Nodes []struct {
			ID   string `json:"id"`
			Deps []struct {
				Pkg      string `json:"pkg"`
				DepKinds []struct {
					Kind *string `json:"kind"`
				} `json:"dep_kinds"`
			} `json:"deps"`
		} `json:"nodes"`
	} `json:"resolve"`
}

// Decode parses a metadata document into a Graph with no flags set.
func Decode(data []byte) (*Graph, error) {
	var doc metadataJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing metadata output: %w", err)
	}

	graph := &Graph{Packages: make(map[models.PackageID]*PackageNode)}

	for _, p := range doc.Packages {
		node := &PackageNode{
			ID:           models.PackageID(p.ID),
			Name:         p.Name,
			Version:      p.Version,
			ManifestPath: p.ManifestPath,
			FeaturesDecl: p.Features,
		}
		for _, t := range p.Targets {
			node.Targets = append(node.Targets, Target{Name: t.Name, Kinds: t.Kind})
		}
		graph.Packages[node.ID] = node
	}

	for _, m := range doc.WorkspaceMembers {
		graph.Members = append(graph.Members, models.PackageID(m))
	}

	if doc.Resolve != nil {
		for _, n := range doc.Resolve.Nodes {
			node := graph.Packages[models.PackageID(n.ID)]
			if node == nil {
				continue
			}
			for _, d := range n.Deps {
				edge := DepEdge{To: models.PackageID(d.Pkg)}
				for _, dk := range d.DepKinds {
					raw := ""
					if dk.Kind != nil {
						raw = *dk.Kind
					}
					kind, err := models.ParseDepKind(raw)
					if err != nil {
						continue
					}
					edge.Kinds = append(edge.Kinds, kind)
				}
				if len(edge.Kinds) == 0 {
					edge.Kinds = []models.DepKind{models.DepKindNormal}
				}
				node.Deps = append(node.Deps, edge)
			}
		}
	}

	return graph, nil
}

// markDuplicates groups nodes by name; any name resolving to two or
// more distinct versions marks every node in the group.
func markDuplicates(g *Graph) {
	byName := make(map[string]map[string][]*PackageNode)
	for _, node := range g.Packages {
		versions := byName[node.Name]
		if versions == nil {
			versions = make(map[string][]*PackageNode)
			byName[node.Name] = versions
		}
		versions[node.Version] = append(versions[node.Version], node)
	}

	for _, versions := range byName {
		if len(versions) < 2 {
			continue
		}
		for _, nodes := range versions {
			for _, node := range nodes {
				node.Duplicated = true
			}
		}
	}
}

// markOutdated flags nodes whose resolved version is behind the
// registry's latest. Lookup failures degrade to not-outdated.
func (s *Service) markOutdated(g *Graph) {
	if s.lookup == nil {
		return
	}
	for _, node := range g.Packages {
		latest, err := s.lookup.Latest(node.Name)
		if err != nil || latest.IsZero() {
			continue
		}
		resolved, err := semver.Parse(node.Version)
		if err != nil {
			log.Debug("unparseable resolved version %s %s: %v", node.Name, node.Version, err)
			continue
		}
		if semver.Compare(latest, resolved) > 0 {
			node.Outdated = true
		}
	}
}
