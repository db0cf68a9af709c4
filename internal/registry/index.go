package registry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/cargodeck/cargodeck/internal/semver"
	"golang.org/x/sync/singleflight"
)

// ErrRegistryUnavailable is returned when no index snapshot exists yet
// or a refresh failed. It degrades functionality and is never fatal to
// the process: searches keep answering from the last good snapshot.
var ErrRegistryUnavailable = errors.New("registry index unavailable")

// Policy controls what "latest" means for outdated checks and adds.
type Policy struct {
	// IncludePrerelease makes prereleases eligible as latest
	IncludePrerelease bool
}

// Index maintains the local registry mirror and its current snapshot.
// Reads are lock-free against an atomically swapped snapshot; refresh
// is single-flight and never blocks readers.
type Index struct {
	fs      filesystem.FileSystem
	source  Source
	policy  Policy
	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// New creates an Index. No snapshot exists until the first Refresh.
func New(fsys filesystem.FileSystem, source Source, policy Policy) *Index {
	return &Index{fs: fsys, source: source, policy: policy}
}

// Current returns the current snapshot, or nil before the first
// successful refresh.
func (ix *Index) Current() *Snapshot {
	return ix.current.Load()
}

// Search answers a prefix query from the current snapshot. It is
// synchronous and never blocks on the network; before the first
// refresh it returns no results.
func (ix *Index) Search(prefix string, limit int) []string {
	snap := ix.current.Load()
	if snap == nil {
		return nil
	}
	return snap.Search(prefix, limit)
}

// Latest returns the newest published version of the package under the
// index policy. Satisfies the metadata lookup contract.
func (ix *Index) Latest(name string) (semver.Version, error) {
	snap := ix.current.Load()
	if snap == nil {
		return semver.Version{}, ErrRegistryUnavailable
	}
	return snap.Latest(name, ix.policy)
}

// Versions returns every published version of the package.
func (ix *Index) Versions(name string) ([]semver.Version, error) {
	snap := ix.current.Load()
	if snap == nil {
		return nil, ErrRegistryUnavailable
	}
	return snap.Versions(name)
}

// Knows reports whether the package name exists in the current
// snapshot.
func (ix *Index) Knows(name string) bool {
	snap := ix.current.Load()
	if snap == nil {
		return false
	}
	return snap.Knows(name)
}

// Refresh synchronizes the mirror and swaps in a fresh snapshot.
// Concurrent calls share one in-flight refresh. On failure the prior
// snapshot stays current and the error wraps ErrRegistryUnavailable.
func (ix *Index) Refresh(ctx context.Context) error {
	_, err, _ := ix.group.Do("refresh", func() (interface{}, error) {
		mirror, err := ix.source.Sync(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
		}
		snap, err := NewSnapshot(ix.fs, mirror)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
		}
		ix.current.Store(snap)
		log.Info("registry index refreshed: %d crates", snap.Len())
		return nil, nil
	})
	return err
}
