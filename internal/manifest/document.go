package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/cargodeck/cargodeck/internal/models"
)

// DepSpec is one declared dependency entry. Manifest values are either
// a bare version string (`serde = "1.0"`) or a table with a version
// key (`serde = { version = "1.0", features = [...] }`).
type DepSpec struct {
	Version string
	// Table is true when the entry is the table form
	Table bool
}

// UnmarshalTOML accepts both the string and the table form.
func (d *DepSpec) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case string:
		d.Version = t
	case map[string]interface{}:
		d.Table = true
		if ver, ok := t["version"].(string); ok {
			d.Version = ver
		}
	default:
		return fmt.Errorf("unsupported dependency value of type %T", v)
	}
	return nil
}

// manifestTOML is the parsed shape of the manifest; only the parts the
// engine reads are declared, everything else survives in the raw bytes.
type manifestTOML struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]DepSpec  `toml:"dependencies"`
	DevDependencies   map[string]DepSpec  `toml:"dev-dependencies"`
	BuildDependencies map[string]DepSpec  `toml:"build-dependencies"`
	Features          map[string][]string `toml:"features"`
}

// Document is a parsed, mutation-preserving view of one manifest file.
// Mutations are applied as targeted edits to the raw bytes so untouched
// formatting and comments re-serialize identically.
type Document struct {
	raw    []byte
	parsed manifestTOML
}

// ParseDocument parses manifest bytes.
func ParseDocument(raw []byte) (*Document, error) {
	var parsed manifestTOML
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &Document{raw: raw, parsed: parsed}, nil
}

// Bytes returns the current serialized form.
func (d *Document) Bytes() []byte {
	return d.raw
}

// PackageName returns the name from the [package] table.
func (d *Document) PackageName() string {
	return d.parsed.Package.Name
}

// PackageVersion returns the version from the [package] table.
func (d *Document) PackageVersion() string {
	return d.parsed.Package.Version
}

// Dependencies returns the declared dependencies of the given kind.
func (d *Document) Dependencies(kind models.DepKind) map[string]DepSpec {
	switch kind {
	case models.DepKindDev:
		return d.parsed.DevDependencies
	case models.DepKindBuild:
		return d.parsed.BuildDependencies
	default:
		return d.parsed.Dependencies
	}
}

// HasDependency reports whether (name, kind) is declared.
func (d *Document) HasDependency(name string, kind models.DepKind) bool {
	_, ok := d.Dependencies(kind)[name]
	return ok
}

// Features returns the declared feature map.
func (d *Document) Features() map[string][]string {
	return d.parsed.Features
}

// reparse swaps in new raw bytes, keeping the parsed view in sync.
// On parse failure the document is left unchanged.
func (d *Document) reparse(raw []byte) error {
	var parsed manifestTOML
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("reparsing mutated manifest: %w", err)
	}
	d.raw = raw
	d.parsed = parsed
	return nil
}
