package app

import (
	"github.com/cargodeck/cargodeck/internal/metadata"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/cargodeck/cargodeck/internal/session"
)

// UpdateKind discriminates updates emitted to the UI layer.
type UpdateKind int

const (
	// UpdateManifest reports the active manifest path and validity
	UpdateManifest UpdateKind = iota

	// UpdateWorkspace carries the package/target/feature summary
	UpdateWorkspace

	// UpdateRows carries a fresh flattened dependency tree
	UpdateRows

	// UpdateDiagnostic appends one build diagnostic
	UpdateDiagnostic

	// UpdateStatus replaces the free-text status line
	UpdateStatus

	// UpdateBuildFinished reports the terminal build summary
	UpdateBuildFinished

	// UpdateCompletions carries add-dependency completion candidates
	UpdateCompletions

	// UpdateError reports a failed operation with a readable message
	UpdateError
)

// Update is one state change pushed to the UI layer. Rows and
// completion lists are complete replacements, never deltas.
type Update struct {
	Kind UpdateKind

	ManifestPath string
	Valid        bool

	Workspace *metadata.WorkspaceInfo
	Rows      []models.DisplayRow

	Diagnostic models.Diagnostic
	Status     string
	Summary    *session.Summary

	Completions []string

	Err error
}
