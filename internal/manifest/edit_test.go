package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/cargodeck/cargodeck/internal/models"
)

const sampleManifest = `# top comment
[package]
name = "app"
version = "0.1.0"

[dependencies]
serde = "1.0"
tokio = { version = "1.28", features = ["full"] } # async runtime

[dev-dependencies]
criterion = "0.5"

[dependencies.reqwest]
version = "0.11"
features = ["json"]

[features]
default = ["tls"]
tls = []
`

func parse(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	return doc
}

func TestAddDependency_ExistingTable(t *testing.T) {
	doc := parse(t, sampleManifest)

	if err := doc.AddDependency("anyhow", "1.0.80", models.DepKindNormal); err != nil {
		t.Fatalf("AddDependency() error: %v", err)
	}

	if !doc.HasDependency("anyhow", models.DepKindNormal) {
		t.Errorf("parsed view should see the new dependency")
	}
	if !strings.Contains(string(doc.Bytes()), "anyhow = \"1.0.80\"") {
		t.Errorf("raw bytes missing the new entry:\n%s", doc.Bytes())
	}
	// Untouched parts survive byte for byte.
	if !strings.Contains(string(doc.Bytes()), "# async runtime") {
		t.Errorf("comment on the tokio entry was lost")
	}
	if !strings.HasPrefix(string(doc.Bytes()), "# top comment\n") {
		t.Errorf("leading comment was lost")
	}
}

func TestAddDependency_CreatesMissingTable(t *testing.T) {
	doc := parse(t, "[package]\nname = \"app\"\nversion = \"0.1.0\"\n")

	if err := doc.AddDependency("libc", "0.2.150", models.DepKindBuild); err != nil {
		t.Fatalf("AddDependency() error: %v", err)
	}

	raw := string(doc.Bytes())
	if !strings.Contains(raw, "[build-dependencies]\nlibc = \"0.2.150\"") {
		t.Errorf("new table missing:\n%s", raw)
	}
	if !doc.HasDependency("libc", models.DepKindBuild) {
		t.Errorf("parsed view should see the new dependency")
	}
}

func TestAddDependency_AlreadyDeclared(t *testing.T) {
	doc := parse(t, sampleManifest)
	before := string(doc.Bytes())

	err := doc.AddDependency("serde", "2.0", models.DepKindNormal)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("AddDependency() error = %v, want ErrAlreadyExists", err)
	}
	if string(doc.Bytes()) != before {
		t.Errorf("failed add must leave the manifest untouched")
	}
}

func TestAddDependency_KindsAreSeparate(t *testing.T) {
	doc := parse(t, sampleManifest)

	// serde is a normal dep; adding it as a dev-dep is fine.
	if err := doc.AddDependency("serde", "1.0", models.DepKindDev); err != nil {
		t.Fatalf("AddDependency() error: %v", err)
	}
	if !doc.HasDependency("serde", models.DepKindDev) {
		t.Errorf("dev table should now declare serde")
	}
}

func TestRemoveDependency_RoundTripsBytes(t *testing.T) {
	doc := parse(t, sampleManifest)
	original := string(doc.Bytes())

	if err := doc.AddDependency("anyhow", "1.0.80", models.DepKindNormal); err != nil {
		t.Fatalf("AddDependency() error: %v", err)
	}
	if err := doc.RemoveDependency("anyhow", models.DepKindNormal); err != nil {
		t.Fatalf("RemoveDependency() error: %v", err)
	}

	if got := string(doc.Bytes()); got != original {
		t.Errorf("add/remove round trip changed the file:\n--- original\n%s\n--- got\n%s", original, got)
	}
}

func TestRemoveDependency_SubsectionForm(t *testing.T) {
	doc := parse(t, sampleManifest)

	if err := doc.RemoveDependency("reqwest", models.DepKindNormal); err != nil {
		t.Fatalf("RemoveDependency() error: %v", err)
	}

	raw := string(doc.Bytes())
	if strings.Contains(raw, "reqwest") {
		t.Errorf("subsection not fully removed:\n%s", raw)
	}
	if !strings.Contains(raw, "[features]") {
		t.Errorf("following table lost:\n%s", raw)
	}
}

func TestRemoveDependency_NotFound(t *testing.T) {
	doc := parse(t, sampleManifest)

	err := doc.RemoveDependency("ghost", models.DepKindNormal)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveDependency() error = %v, want ErrNotFound", err)
	}

	// Wrong kind counts as absent too.
	err = doc.RemoveDependency("serde", models.DepKindDev)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveDependency() error = %v, want ErrNotFound", err)
	}
}

func TestSetDependencyVersion_StringForm(t *testing.T) {
	doc := parse(t, sampleManifest)

	if err := doc.SetDependencyVersion("serde", "1.0.200", models.DepKindNormal); err != nil {
		t.Fatalf("SetDependencyVersion() error: %v", err)
	}

	if !strings.Contains(string(doc.Bytes()), "serde = \"1.0.200\"") {
		t.Errorf("version not rewritten:\n%s", doc.Bytes())
	}
	if doc.Dependencies(models.DepKindNormal)["serde"].Version != "1.0.200" {
		t.Errorf("parsed view out of sync")
	}
}

func TestSetDependencyVersion_InlineTableKeepsOtherKeys(t *testing.T) {
	doc := parse(t, sampleManifest)

	if err := doc.SetDependencyVersion("tokio", "1.37", models.DepKindNormal); err != nil {
		t.Fatalf("SetDependencyVersion() error: %v", err)
	}

	raw := string(doc.Bytes())
	if !strings.Contains(raw, `tokio = { version = "1.37", features = ["full"] } # async runtime`) {
		t.Errorf("inline table mangled:\n%s", raw)
	}
}

func TestSetDependencyVersion_SubsectionForm(t *testing.T) {
	doc := parse(t, sampleManifest)

	if err := doc.SetDependencyVersion("reqwest", "0.12", models.DepKindNormal); err != nil {
		t.Fatalf("SetDependencyVersion() error: %v", err)
	}

	raw := string(doc.Bytes())
	if !strings.Contains(raw, "version = \"0.12\"") {
		t.Errorf("subsection version not rewritten:\n%s", raw)
	}
	if !strings.Contains(raw, "features = [\"json\"]") {
		t.Errorf("sibling keys lost:\n%s", raw)
	}
}

func TestSetDependencyVersion_NotFound(t *testing.T) {
	doc := parse(t, sampleManifest)

	err := doc.SetDependencyVersion("ghost", "1.0", models.DepKindNormal)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetDependencyVersion() error = %v, want ErrNotFound", err)
	}
}
