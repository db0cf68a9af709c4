package registry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/log"
)

// DefaultIndexURL is the upstream registry index repository.
const DefaultIndexURL = "https://github.com/rust-lang/crates.io-index"

// Source synchronizes the local index mirror and hands back the state
// it produced.
type Source interface {
	// Sync brings the mirror up to date and returns a Mirror bound to
	// the synchronized state.
	Sync(ctx context.Context) (Mirror, error)
}

// Mirror is one synchronized state of the index. Entry reads stay
// pinned to that state even while the mirror directory moves on to a
// newer one, so a snapshot built from a Mirror never observes a
// half-applied update.
type Mirror interface {
	// Dir is the mirror directory, scanned once when a snapshot is
	// built from this state.
	Dir() string

	// Entry returns the raw index file at the slash-separated path
	// relative to the mirror root.
	Entry(rel string) ([]byte, error)
}

// GitSource mirrors the registry index with git clone/fetch.
type GitSource struct {
	fs  filesystem.FileSystem
	url string
	dir string
}

// NewGitSource creates a GitSource cloning url into dir.
func NewGitSource(fsys filesystem.FileSystem, url, dir string) *GitSource {
	if url == "" {
		url = DefaultIndexURL
	}
	return &GitSource{fs: fsys, url: url, dir: dir}
}

// Sync clones the index on first use and fast-forwards it afterwards.
// The returned mirror is pinned to the commit the sync landed on.
func (g *GitSource) Sync(ctx context.Context) (Mirror, error) {
	if !g.fs.Exists(filepath.Join(g.dir, ".git")) {
		log.Info("cloning registry index from %s", g.url)
		if err := runGit(ctx, "", "clone", "--depth", "1", g.url, g.dir); err != nil {
			return nil, err
		}
	} else {
		log.Debug("updating registry index mirror at %s", g.dir)
		if err := runGit(ctx, g.dir, "fetch", "--depth", "1", "origin"); err != nil {
			return nil, err
		}
		if err := runGit(ctx, g.dir, "reset", "--hard", "FETCH_HEAD"); err != nil {
			return nil, err
		}
	}

	out, err := gitOutput(ctx, g.dir, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}
	return &gitMirror{dir: g.dir, commit: strings.TrimSpace(string(out))}, nil
}

// gitMirror reads index files out of a fixed commit, so entry lookups
// keep answering from the same state after a later sync resets the
// work tree to a newer FETCH_HEAD.
type gitMirror struct {
	dir    string
	commit string
}

func (m *gitMirror) Dir() string { return m.dir }

func (m *gitMirror) Entry(rel string) ([]byte, error) {
	return gitOutput(context.Background(), m.dir, "show", m.commit+":"+rel)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	_, err := gitOutput(ctx, dir, args...)
	return err
}

func gitOutput(ctx context.Context, dir string, args ...string) ([]byte, error) {
	full := args
	if dir != "" {
		full = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

// DirSource serves a pre-populated mirror directory as-is. Used by
// tests and air-gapped setups where the directory is never rewritten
// behind a live snapshot.
type DirSource struct {
	// FS reads the mirror files
	FS filesystem.FileSystem

	// Dir is the mirror directory
	Dir string

	// SyncError fails Sync when set
	SyncError error
}

func (d *DirSource) Sync(ctx context.Context) (Mirror, error) {
	if d.SyncError != nil {
		return nil, d.SyncError
	}
	return &dirMirror{fs: d.FS, dir: d.Dir}, nil
}

type dirMirror struct {
	fs  filesystem.FileSystem
	dir string
}

func (m *dirMirror) Dir() string { return m.dir }

func (m *dirMirror) Entry(rel string) ([]byte, error) {
	return m.fs.ReadFile(filepath.Join(m.dir, filepath.FromSlash(rel)))
}
