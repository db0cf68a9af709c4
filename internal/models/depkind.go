package models

import "fmt"

// DepKind represents the kind of a dependency edge.
type DepKind string

const (
	DepKindNormal DepKind = "normal"
	DepKindDev    DepKind = "dev"
	DepKindBuild  DepKind = "build"
)

// ParseDepKind parses the kind string used by `cargo metadata`.
// An empty string means a normal dependency.
func ParseDepKind(s string) (DepKind, error) {
	switch s {
	case "", "normal":
		return DepKindNormal, nil
	case "dev":
		return DepKindDev, nil
	case "build":
		return DepKindBuild, nil
	}
	return "", fmt.Errorf("unknown dependency kind: %q", s)
}

// TableName returns the manifest table this kind of dependency lives in.
func (k DepKind) TableName() string {
	switch k {
	case DepKindDev:
		return "dev-dependencies"
	case DepKindBuild:
		return "build-dependencies"
	default:
		return "dependencies"
	}
}

func (k DepKind) String() string {
	return string(k)
}
