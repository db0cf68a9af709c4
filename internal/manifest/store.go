package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/cargodeck/cargodeck/internal/filesystem"
)

// FileName is the canonical manifest file name.
const FileName = "Cargo.toml"

// ErrManifestNotFound is returned when the manifest file does not exist.
var ErrManifestNotFound = errors.New("manifest not found")

// Store owns the current project's manifest path and parsed document.
// The in-memory document and the on-disk file are never simultaneously
// inconsistent from the caller's perspective: a failed save leaves the
// prior on-disk content untouched and keeps the caller's edits for
// retry.
type Store struct {
	fs   filesystem.FileSystem
	path string
	doc  *Document
}

// NewStore creates a Store with no manifest loaded.
func NewStore(fs filesystem.FileSystem) *Store {
	return &Store{fs: fs}
}

// Load reads and parses the manifest at path. When path is a
// directory, Cargo.toml inside it is used. The previous document, if
// any, is replaced wholesale.
func (s *Store) Load(path string) (*Document, error) {
	resolved := ResolvePath(s.fs, path)

	data, err := s.fs.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", resolved, ErrManifestNotFound)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", resolved, err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}

	s.path = resolved
	s.doc = doc
	return doc, nil
}

// Save writes the current document back to its path atomically.
func (s *Store) Save() error {
	if s.doc == nil {
		return errors.New("no manifest loaded")
	}
	if err := s.fs.WriteFileAtomic(s.path, s.doc.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", s.path, err)
	}
	return nil
}

// Document returns the loaded document, or nil.
func (s *Store) Document() *Document {
	return s.doc
}

// Path returns the resolved manifest path, or empty when unloaded.
func (s *Store) Path() string {
	return s.path
}

// ResolvePath appends the manifest file name when path names a
// directory.
func ResolvePath(fsys filesystem.FileSystem, path string) string {
	if info, err := fsys.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, FileName)
	}
	return path
}
