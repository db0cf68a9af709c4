package metadata

import (
	"reflect"
	"testing"

	"github.com/cargodeck/cargodeck/internal/models"
)

// testGraph builds the sample workspace graph used across the
// traversal tests: app -> a -> b2.0, app -dev-> b1.5.
func testGraph(t *testing.T) *Graph {
	t.Helper()
	graph, err := Decode([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	markDuplicates(graph)
	return graph
}

func rowNames(rows []models.DisplayRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name + "@" + r.Version
	}
	return names
}

func TestFlatten_ClosedSetShowsOnlyDirectDependencies(t *testing.T) {
	graph := testGraph(t)

	rows := Flatten(graph, "", models.NewOpenSet())

	want := []string{"a@1.0.0", "b@1.5.0"}
	if got := rowNames(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for _, row := range rows {
		if row.Depth != 0 {
			t.Errorf("%s at depth %d, want 0", row.Name, row.Depth)
		}
	}
}

func TestFlatten_OpenNodeRevealsChildren(t *testing.T) {
	graph := testGraph(t)
	open := models.NewOpenSet()
	open.Toggle("a-id")

	rows := Flatten(graph, "", open)

	want := []string{"a@1.0.0", "b@2.0.0", "b@1.5.0"}
	if got := rowNames(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if rows[1].Depth != 1 {
		t.Errorf("b@2.0.0 at depth %d, want 1", rows[1].Depth)
	}
	if rows[1].ParentID != "a-id" {
		t.Errorf("b@2.0.0 parent = %q, want a-id", rows[1].ParentID)
	}
}

func TestFlatten_ToggleLeavesOtherRowsIdentical(t *testing.T) {
	graph := testGraph(t)
	open := models.NewOpenSet()

	before := Flatten(graph, "", open)
	open.Toggle("a-id")
	during := Flatten(graph, "", open)
	open.Toggle("a-id")
	after := Flatten(graph, "", open)

	if !reflect.DeepEqual(before, after) {
		t.Errorf("toggle round trip changed rows:\nbefore %v\nafter  %v", before, after)
	}

	// Unaffected sibling: b 1.5.0 keeps the same row either way.
	var b15Before, b15During models.DisplayRow
	for _, r := range before {
		if r.ID == "b15-id" {
			b15Before = r
		}
	}
	for _, r := range during {
		if r.ID == "b15-id" {
			b15During = r
		}
	}
	if !reflect.DeepEqual(b15Before, b15During) {
		t.Errorf("b 1.5.0 row changed while toggling a sibling")
	}
}

func TestFlatten_AnnotatesKindsAndDuplicates(t *testing.T) {
	graph := testGraph(t)

	rows := Flatten(graph, "", models.NewOpenSet())

	for _, row := range rows {
		switch row.ID {
		case "a-id":
			if row.DepKind != "" {
				t.Errorf("a is a normal dep, kind = %q", row.DepKind)
			}
			if row.Duplicated {
				t.Errorf("a must not be duplicated")
			}
			if !row.HasChildren {
				t.Errorf("a has a child edge")
			}
		case "b15-id":
			if row.DepKind != "dev" {
				t.Errorf("b 1.5.0 kind = %q, want dev", row.DepKind)
			}
			if !row.Duplicated {
				t.Errorf("b 1.5.0 should be marked duplicated")
			}
			if row.HasChildren {
				t.Errorf("b 1.5.0 has no children")
			}
		}
	}
}

func TestFlatten_UnknownRootSelectsNothing(t *testing.T) {
	graph := testGraph(t)
	if rows := Flatten(graph, "ghost", models.NewOpenSet()); len(rows) != 0 {
		t.Errorf("rows for unknown root = %v, want none", rows)
	}
}

func TestFlatten_NilGraph(t *testing.T) {
	if rows := Flatten(nil, "", models.NewOpenSet()); rows != nil {
		t.Errorf("Flatten(nil) = %v, want nil", rows)
	}
}

func TestFlatten_CyclicGraphTerminates(t *testing.T) {
	// x and y depend on each other, which happens with dev-deps in the
	// resolved graph. The traversal must emit each on-path node once.
	graph := &Graph{
		Packages: map[models.PackageID]*PackageNode{
			"root-id": {ID: "root-id", Name: "root", Version: "0.1.0", Deps: []DepEdge{{To: "x-id", Kinds: []models.DepKind{models.DepKindNormal}}}},
			"x-id":    {ID: "x-id", Name: "x", Version: "1.0.0", Deps: []DepEdge{{To: "y-id", Kinds: []models.DepKind{models.DepKindNormal}}}},
			"y-id":    {ID: "y-id", Name: "y", Version: "1.0.0", Deps: []DepEdge{{To: "x-id", Kinds: []models.DepKind{models.DepKindNormal}}}},
		},
		Members: []models.PackageID{"root-id"},
	}

	open := models.NewOpenSet()
	open.Toggle("x-id")
	open.Toggle("y-id")

	rows := Flatten(graph, "", open)

	want := []string{"x@1.0.0", "y@1.0.0", "x@1.0.0"}
	if got := rowNames(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}
