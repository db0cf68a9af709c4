package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/cargodeck/cargodeck/internal/semver"
)

// ErrUnknownCrate is returned when a package name has no entry in the
// index.
var ErrUnknownCrate = errors.New("unknown crate")

// Snapshot is one complete view of the registry index. Name lookups
// run against an in-memory sorted name list built at refresh time, so
// Search never touches the network or blocks on the mirror; version
// lookups read the crate's index file on demand through the mirror
// state the snapshot was built from, so a concurrent refresh never
// bleeds into an older snapshot.
type Snapshot struct {
	mirror Mirror
	names  []string // sorted
}

// NewSnapshot builds a snapshot by scanning the mirror directory.
func NewSnapshot(fsys filesystem.FileSystem, mirror Mirror) (*Snapshot, error) {
	names, err := collectNames(fsys, mirror.Dir())
	if err != nil {
		return nil, fmt.Errorf("scanning index mirror %s: %w", mirror.Dir(), err)
	}
	sort.Strings(names)
	return &Snapshot{mirror: mirror, names: names}, nil
}

// Len returns the number of known package names.
func (s *Snapshot) Len() int {
	return len(s.names)
}

// Search returns up to limit package names starting with prefix, in
// sorted order. It is a pure in-memory scan.
func (s *Snapshot) Search(prefix string, limit int) []string {
	if prefix == "" {
		return nil
	}
	prefix = strings.ToLower(prefix)

	start := sort.SearchStrings(s.names, prefix)
	var out []string
	for i := start; i < len(s.names); i++ {
		if !strings.HasPrefix(s.names[i], prefix) {
			break
		}
		out = append(out, s.names[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Knows reports whether the crate name is present in the snapshot.
func (s *Snapshot) Knows(name string) bool {
	name = strings.ToLower(name)
	i := sort.SearchStrings(s.names, name)
	return i < len(s.names) && s.names[i] == name
}

// Versions returns every non-yanked published version of the crate.
// Unparseable entries are skipped.
func (s *Snapshot) Versions(name string) ([]semver.Version, error) {
	data, err := s.mirror.Entry(CrateFilePath(name))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCrate)
	}

	type entry struct {
		Vers   string `json:"vers"`
		Yanked bool   `json:"yanked"`
	}

	var versions []semver.Version
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			log.Debug("skipping malformed index line for %s: %v", name, err)
			continue
		}
		if e.Yanked {
			continue
		}
		v, err := semver.Parse(e.Vers)
		if err != nil {
			log.Debug("skipping unparseable version %q of %s", e.Vers, name)
			continue
		}
		versions = append(versions, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index entry for %q: %w", name, err)
	}
	return versions, nil
}

// Latest returns the newest published version of the crate under the
// given policy: the highest stable release, falling back to the
// highest overall when the crate has no stable release, or the
// absolute highest when the policy includes prereleases.
func (s *Snapshot) Latest(name string, policy Policy) (semver.Version, error) {
	versions, err := s.Versions(name)
	if err != nil {
		return semver.Version{}, err
	}
	if v, ok := semver.Max(versions, policy.IncludePrerelease); ok {
		return v, nil
	}
	if v, ok := semver.Max(versions, true); ok {
		return v, nil
	}
	return semver.Version{}, fmt.Errorf("%q has no published versions: %w", name, ErrUnknownCrate)
}

// CrateFilePath returns the crate's slash-separated path inside the
// index mirror, following the registry's name fan-out convention.
func CrateFilePath(name string) string {
	name = strings.ToLower(name)
	switch {
	case len(name) == 1:
		return path.Join("1", name)
	case len(name) == 2:
		return path.Join("2", name)
	case len(name) == 3:
		return path.Join("3", name[:1], name)
	default:
		return path.Join(name[:2], name[2:4], name)
	}
}

// collectNames walks the fan-out directories gathering crate names.
func collectNames(fsys filesystem.FileSystem, dir string) ([]string, error) {
	if !fsys.Exists(dir) {
		return nil, fmt.Errorf("mirror directory does not exist")
	}

	var names []string
	var walk func(path string, depth int) error
	walk = func(path string, depth int) error {
		entries, err := fsys.ReadDir(path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") || name == "config.json" {
				continue
			}
			child := filepath.Join(path, name)
			if e.IsDir() {
				// The fan-out is at most three directories deep.
				if depth < 3 {
					if err := walk(child, depth+1); err != nil {
						return err
					}
				}
				continue
			}
			names = append(names, strings.ToLower(name))
		}
		return nil
	}
	if err := walk(dir, 0); err != nil {
		return nil, err
	}
	return names, nil
}
