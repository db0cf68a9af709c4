package models

// PackageID is the opaque package identifier assigned by the build
// tool's metadata query. Unique per (name, version, source) in a graph.
type PackageID string

// PackageRef is the display identity of a resolved package.
type PackageRef struct {
	Name    string
	Version string
}

// Feature is one feature flag declared by a package.
type Feature struct {
	Name             string
	Enabled          bool
	EnabledByDefault bool
}

// DisplayRow is one flattened entry of the dependency tree, derived
// from a graph snapshot and an open-set. Rows are rebuilt wholesale on
// every refresh or toggle, never mutated in place.
type DisplayRow struct {
	ID       PackageID
	ParentID PackageID

	Name    string
	Version string

	// DepKind annotates non-normal edges (e.g. "dev", "build",
	// "dev build"); empty for plain normal dependencies.
	DepKind string

	// Depth is the indentation level; direct dependencies are 0
	Depth int

	HasChildren bool
	Open        bool

	// Duplicated is set when the same package name resolves to two or
	// more distinct versions anywhere in the graph
	Duplicated bool

	// Outdated is set when the registry knows a newer version
	Outdated bool
}

// OpenSet tracks which tree nodes are expanded. It is owned by the
// caller (the UI-facing layer), never by the graph itself.
type OpenSet map[PackageID]struct{}

// NewOpenSet creates an empty open-set.
func NewOpenSet() OpenSet {
	return make(OpenSet)
}

// Contains reports whether the node is expanded.
func (s OpenSet) Contains(id PackageID) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips the expanded state of a node and returns the new state.
func (s OpenSet) Toggle(id PackageID) bool {
	if s.Contains(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}
