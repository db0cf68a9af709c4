package semver

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	v *mm.Version
}

func Parse(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether the version is the zero value (unparsed).
func (v Version) IsZero() bool {
	return v.v == nil
}

// IsPrerelease reports whether the version carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return v.v != nil && v.v.Prerelease() != ""
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// Max returns the highest version in candidates, optionally skipping
// prereleases. Returns false when no candidate qualifies.
func Max(candidates []Version, includePrerelease bool) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if candidate.v == nil {
			continue
		}
		if !includePrerelease && candidate.IsPrerelease() {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}
