package metadata

import (
	"sort"
	"strings"

	"github.com/cargodeck/cargodeck/internal/models"
)

// Flatten derives the ordered display rows for the dependency tree.
//
// It is a pure function of (graph, root selection, open-set): the
// traversal is depth-first starting from the selected root's direct
// dependencies, a node's children are included only when its id is in
// the open-set, and sibling order is stable (package name, then
// version), so re-flattening after a toggle reproduces every
// unaffected row identically.
//
// rootName selects one workspace member; empty selects all members.
func Flatten(g *Graph, rootName string, open models.OpenSet) []models.DisplayRow {
	if g == nil {
		return nil
	}

	rows := []models.DisplayRow{}
	roots := make([]*PackageNode, 0, len(g.Members))
	for _, id := range g.Members {
		node := g.Packages[id]
		if node == nil {
			continue
		}
		if rootName != "" && node.Name != rootName {
			continue
		}
		roots = append(roots, node)
	}
	sort.Slice(roots, func(i, j int) bool {
		return orderKey(roots[i]) < orderKey(roots[j])
	})

	onPath := make(map[models.PackageID]bool)
	for _, root := range roots {
		onPath[root.ID] = true
		for _, edge := range sortedEdges(g, root.Deps) {
			flattenNode(g, edge, root.ID, 0, open, onPath, &rows)
		}
		delete(onPath, root.ID)
	}
	return rows
}

func flattenNode(g *Graph, edge DepEdge, parent models.PackageID, depth int, open models.OpenSet, onPath map[models.PackageID]bool, rows *[]models.DisplayRow) {
	node := g.Packages[edge.To]
	if node == nil {
		return
	}

	row := models.DisplayRow{
		ID:          node.ID,
		ParentID:    parent,
		Name:        node.Name,
		Version:     node.Version,
		Depth:       depth,
		HasChildren: len(node.Deps) > 0,
		Open:        open.Contains(node.ID),
		Duplicated:  node.Duplicated,
		Outdated:    node.Outdated,
	}
	if !edge.AllNormal() {
		kinds := make([]string, len(edge.Kinds))
		for i, k := range edge.Kinds {
			kinds[i] = k.String()
		}
		row.DepKind = strings.Join(kinds, " ")
	}
	*rows = append(*rows, row)

	// A node already on the current path would recurse forever; emit
	// its row and stop, matching how resolvers render cyclic dev-deps.
	if !row.Open || onPath[node.ID] {
		return
	}

	onPath[node.ID] = true
	for _, child := range sortedEdges(g, node.Deps) {
		flattenNode(g, child, node.ID, depth+1, open, onPath, rows)
	}
	delete(onPath, node.ID)
}

func sortedEdges(g *Graph, edges []DepEdge) []DepEdge {
	out := make([]DepEdge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool {
		a, b := g.Packages[out[i].To], g.Packages[out[j].To]
		if a == nil || b == nil {
			return out[i].To < out[j].To
		}
		return orderKey(a) < orderKey(b)
	})
	return out
}

func orderKey(n *PackageNode) string {
	return n.Name + "\x00" + n.Version
}
