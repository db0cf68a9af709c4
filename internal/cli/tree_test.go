package cli

import (
	"bytes"
	"testing"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

const treeMetadata = `{
  "packages": [
    {
      "id": "app-id",
      "name": "app",
      "version": "0.1.0",
      "manifest_path": "/ws/Cargo.toml",
      "features": {},
      "targets": [{"name": "app", "kind": ["bin"]}]
    },
    {
      "id": "a-id",
      "name": "a",
      "version": "1.0.0",
      "manifest_path": "/deps/a/Cargo.toml",
      "features": {},
      "targets": [{"name": "a", "kind": ["lib"]}]
    },
    {
      "id": "b15-id",
      "name": "b",
      "version": "1.5.0",
      "manifest_path": "/deps/b-1.5/Cargo.toml",
      "features": {},
      "targets": [{"name": "b", "kind": ["lib"]}]
    },
    {
      "id": "b20-id",
      "name": "b",
      "version": "2.0.0",
      "manifest_path": "/deps/b-2.0/Cargo.toml",
      "features": {},
      "targets": [{"name": "b", "kind": ["lib"]}]
    }
  ],
  "workspace_members": ["app-id"],
  "resolve": {
    "nodes": [
      {
        "id": "app-id",
        "deps": [
          {"pkg": "a-id", "dep_kinds": [{"kind": null}]},
          {"pkg": "b15-id", "dep_kinds": [{"kind": "dev"}]}
        ]
      },
      {"id": "a-id", "deps": [{"pkg": "b20-id", "dep_kinds": [{"kind": null}]}]},
      {"id": "b15-id", "deps": []},
      {"id": "b20-id", "deps": []}
    ]
  }
}`

func TestTreeCommand_RendersFullTree(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/ws/Cargo.toml", []byte("[package]\nname = \"app\"\nversion = \"0.1.0\"\n"))

	client := cargo.NewMockClient()
	client.MetadataOutput = []byte(treeMetadata)

	var buf bytes.Buffer
	root := NewRootCommand(fs, client)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"tree", "--manifest-path", "/ws/Cargo.toml", "--no-index"})

	require.NoError(t, root.Execute())
	require.Equal(t, []string{"/ws/Cargo.toml"}, client.MetadataCalls)

	snaps.MatchSnapshot(t, buf.String())
}

func TestTreeCommand_UnknownPackageRendersNothing(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/ws/Cargo.toml", []byte("[package]\nname = \"app\"\nversion = \"0.1.0\"\n"))

	client := cargo.NewMockClient()
	client.MetadataOutput = []byte(treeMetadata)

	var buf bytes.Buffer
	root := NewRootCommand(fs, client)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"tree", "--manifest-path", "/ws/Cargo.toml", "--no-index", "--package", "ghost"})

	require.NoError(t, root.Execute())
	require.Empty(t, buf.String())
}
