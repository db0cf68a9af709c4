package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/cargodeck/cargodeck/internal/manifest"
	"github.com/cargodeck/cargodeck/internal/registry"
	"github.com/spf13/cobra"
)

// resolveManifestPath resolves --manifest-path, defaulting to the
// working directory's Cargo.toml.
func resolveManifestPath(cmd *cobra.Command, fs filesystem.FileSystem) (string, error) {
	path, _ := cmd.Flags().GetString("manifest-path")
	if path == "" {
		cwd, err := fs.Getwd()
		if err != nil {
			return "", err
		}
		path = cwd
	}
	return manifest.ResolvePath(fs, path), nil
}

// defaultCacheDir is where the registry index mirror lives.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "cargodeck", "index")
}

// newIndex builds the registry index handle from the root flags.
func newIndex(cmd *cobra.Command, fs filesystem.FileSystem) *registry.Index {
	url, _ := cmd.Flags().GetString("index-url")
	dir, _ := cmd.Flags().GetString("index-dir")
	pre, _ := cmd.Flags().GetBool("pre")
	if dir == "" {
		dir = defaultCacheDir()
	}

	source := registry.NewGitSource(fs, url, dir)
	return registry.New(fs, source, registry.Policy{IncludePrerelease: pre})
}

// tryRefreshIndex refreshes the index and degrades quietly: without a
// snapshot the caller simply sees no outdated flags or completions.
func tryRefreshIndex(ctx context.Context, ix *registry.Index) {
	if err := ix.Refresh(ctx); err != nil {
		log.Warn("registry index unavailable: %v", err)
	}
}
