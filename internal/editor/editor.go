package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/manifest"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/cargodeck/cargodeck/internal/semver"
)

// ErrUnknownPackage is returned when adding a dependency whose name
// the registry index does not know. The manifest is left untouched.
var ErrUnknownPackage = errors.New("unknown package")

// ErrNotFound is returned when removing or upgrading a dependency
// that has no matching manifest entry.
var ErrNotFound = manifest.ErrNotFound

// Registry is the slice of the index the editor needs.
type Registry interface {
	// Knows reports whether the package name exists in the index
	Knows(name string) bool

	// Latest returns the newest published version under the policy
	Latest(name string) (semver.Version, error)
}

// Editor applies add/remove/upgrade operations to manifests. Each
// mutation succeeds in memory before anything is written, so a failed
// operation never leaves a half-edited manifest; after a successful
// write the caller must re-run the metadata refresh.
//
// Operations are serialized: the design assumes one in-flight edit per
// project context.
type Editor struct {
	fs       filesystem.FileSystem
	registry Registry

	mu sync.Mutex
}

// New creates an Editor.
func New(fsys filesystem.FileSystem, registry Registry) *Editor {
	return &Editor{fs: fsys, registry: registry}
}

// Add declares a new dependency on the latest published version in the
// manifest at manifestPath.
func (e *Editor) Add(manifestPath, name string, kind models.DepKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.registry.Knows(name) {
		return fmt.Errorf("%q: %w", name, ErrUnknownPackage)
	}
	latest, err := e.registry.Latest(name)
	if err != nil {
		return fmt.Errorf("resolving latest version of %q: %w", name, err)
	}

	store := manifest.NewStore(e.fs)
	doc, err := store.Load(manifestPath)
	if err != nil {
		return err
	}
	if err := doc.AddDependency(name, latest.String(), kind); err != nil {
		return err
	}
	return store.Save()
}

// Remove deletes the (name, kind) entry from the owning package's
// manifest.
func (e *Editor) Remove(ownerManifestPath, name string, kind models.DepKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	store := manifest.NewStore(e.fs)
	doc, err := store.Load(ownerManifestPath)
	if err != nil {
		return err
	}
	if err := doc.RemoveDependency(name, kind); err != nil {
		return err
	}
	return store.Save()
}

// Upgrade rewrites the (name, kind) entry to the latest published
// version, preserving the entry's declared form.
func (e *Editor) Upgrade(ownerManifestPath, name string, kind models.DepKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	latest, err := e.registry.Latest(name)
	if err != nil {
		return fmt.Errorf("resolving latest version of %q: %w", name, err)
	}

	store := manifest.NewStore(e.fs)
	doc, err := store.Load(ownerManifestPath)
	if err != nil {
		return err
	}
	if err := doc.SetDependencyVersion(name, latest.String(), kind); err != nil {
		return err
	}
	return store.Save()
}
