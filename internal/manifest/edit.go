package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cargodeck/cargodeck/internal/models"
)

var (
	// ErrNotFound is returned when (name, kind) has no manifest entry
	ErrNotFound = errors.New("dependency not found in manifest")

	// ErrAlreadyExists is returned when adding a dependency that is
	// already declared
	ErrAlreadyExists = errors.New("dependency already declared in manifest")
)

// AddDependency declares name = "version" in the table for kind,
// creating the table if the manifest has none. The rest of the file is
// left byte-identical.
func (d *Document) AddDependency(name, version string, kind models.DepKind) error {
	if d.HasDependency(name, kind) {
		return fmt.Errorf("%q: %w", name, ErrAlreadyExists)
	}

	table := kind.TableName()
	lines := strings.Split(string(d.raw), "\n")
	entry := fmt.Sprintf("%s = %q", name, version)

	start, end, found := sectionSpan(lines, table)
	if found {
		// Insert after the last non-blank line of the section so
		// trailing blank-line spacing stays untouched.
		insertAt := start + 1
		for i := start + 1; i < end; i++ {
			if strings.TrimSpace(lines[i]) != "" {
				insertAt = i + 1
			}
		}
		lines = append(lines[:insertAt], append([]string{entry}, lines[insertAt:]...)...)
		return d.reparse([]byte(strings.Join(lines, "\n")))
	}

	out := string(d.raw)
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	out += fmt.Sprintf("\n[%s]\n%s\n", table, entry)
	return d.reparse([]byte(out))
}

// RemoveDependency deletes the manifest entry for (name, kind).
// Both the inline form (`serde = "1.0"`) and the subsection form
// (`[dependencies.serde]`) are recognized.
func (d *Document) RemoveDependency(name string, kind models.DepKind) error {
	table := kind.TableName()
	lines := strings.Split(string(d.raw), "\n")

	start, end, found := sectionSpan(lines, table)
	if found {
		if i := entryLine(lines, start+1, end, name); i >= 0 {
			lines = append(lines[:i], lines[i+1:]...)
			return d.reparse([]byte(strings.Join(lines, "\n")))
		}
	}

	subStart, subEnd, subFound := sectionSpan(lines, table+"."+name)
	if subFound {
		lines = append(lines[:subStart], lines[subEnd:]...)
		return d.reparse([]byte(strings.Join(lines, "\n")))
	}

	return fmt.Errorf("%q in [%s]: %w", name, table, ErrNotFound)
}

// SetDependencyVersion rewrites the version of an existing entry,
// preserving the entry's declared form.
func (d *Document) SetDependencyVersion(name, version string, kind models.DepKind) error {
	table := kind.TableName()
	lines := strings.Split(string(d.raw), "\n")

	start, end, found := sectionSpan(lines, table)
	if found {
		if i := entryLine(lines, start+1, end, name); i >= 0 {
			updated, err := rewriteEntryVersion(lines[i], version)
			if err != nil {
				return fmt.Errorf("%q in [%s]: %w", name, table, err)
			}
			lines[i] = updated
			return d.reparse([]byte(strings.Join(lines, "\n")))
		}
	}

	subStart, subEnd, subFound := sectionSpan(lines, table+"."+name)
	if subFound {
		for i := subStart + 1; i < subEnd; i++ {
			if m := versionKeyRe.FindStringSubmatchIndex(lines[i]); m != nil {
				lines[i] = versionKeyRe.ReplaceAllString(lines[i], "${1}"+quoted(version))
				return d.reparse([]byte(strings.Join(lines, "\n")))
			}
		}
		return fmt.Errorf("%q in [%s]: no version key: %w", name, table, ErrNotFound)
	}

	return fmt.Errorf("%q in [%s]: %w", name, table, ErrNotFound)
}

var versionKeyRe = regexp.MustCompile(`(version\s*=\s*)"[^"]*"`)

// sectionSpan locates the [table] header. It returns the header line
// index and the exclusive end index of the section body.
func sectionSpan(lines []string, table string) (start, end int, found bool) {
	header := "[" + table + "]"
	for i, line := range lines {
		if strings.TrimSpace(line) == header {
			start = i
			end = len(lines)
			for j := i + 1; j < len(lines); j++ {
				if strings.HasPrefix(strings.TrimSpace(lines[j]), "[") {
					end = j
					break
				}
			}
			return start, end, true
		}
	}
	return 0, 0, false
}

// entryLine finds the line declaring name within [from, to), accepting
// bare and quoted keys. Returns -1 when absent.
func entryLine(lines []string, from, to int, name string) int {
	re := regexp.MustCompile(`^\s*("` + regexp.QuoteMeta(name) + `"|` + regexp.QuoteMeta(name) + `)\s*=`)
	for i := from; i < to && i < len(lines); i++ {
		if re.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

var (
	stringValueRe = regexp.MustCompile(`^(\s*[^=]+=\s*)"[^"]*"(\s*(#.*)?)$`)
)

// rewriteEntryVersion replaces the version inside one entry line.
func rewriteEntryVersion(line, version string) (string, error) {
	if m := stringValueRe.FindStringSubmatch(line); m != nil {
		return m[1] + quoted(version) + m[2], nil
	}
	// Inline table form: serde = { version = "1.0", features = [...] }
	if strings.Contains(line, "{") {
		if !versionKeyRe.MatchString(line) {
			return "", errors.New("inline table has no version key")
		}
		return versionKeyRe.ReplaceAllString(line, "${1}"+quoted(version)), nil
	}
	return "", errors.New("could not understand the dependency entry")
}

func quoted(s string) string {
	return `"` + s + `"`
}
