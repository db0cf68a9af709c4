package app

import (
	"github.com/cargodeck/cargodeck/internal/models"
)

// Request is one action the UI layer asks the core to perform.
// Requests are drained by the app's single worker loop.
type Request interface{ isRequest() }

// SetManifestPath switches the project context to another manifest.
// The previous document, graph and open-set are discarded wholesale.
type SetManifestPath struct {
	Path string
}

// RunAction starts a build session for the action.
type RunAction struct {
	Action   models.BuildAction
	Features models.FeatureSettings
}

// CancelBuild cancels the running build session, if any.
type CancelBuild struct{}

// ToggleRow flips the open state of a dependency-tree row.
type ToggleRow struct {
	ID models.PackageID
}

// SelectPackage narrows the workspace view to one member package;
// empty selects all members.
type SelectPackage struct {
	Name string
}

// AddDependency adds a dependency to the selected package's manifest.
type AddDependency struct {
	Name string
	Kind models.DepKind
}

// RemoveDependency removes a dependency from the owning package.
type RemoveDependency struct {
	OwnerID models.PackageID
	Name    string
	Kind    models.DepKind
}

// UpgradeDependency upgrades a dependency in the owning package.
type UpgradeDependency struct {
	OwnerID models.PackageID
	Name    string
	Kind    models.DepKind
}

// Search asks for completion candidates for the add-dependency field.
type Search struct {
	Prefix string
}

// RefreshIndex asks for a background registry index refresh.
type RefreshIndex struct{}

func (SetManifestPath) isRequest()   {}
func (RunAction) isRequest()         {}
func (CancelBuild) isRequest()       {}
func (ToggleRow) isRequest()         {}
func (SelectPackage) isRequest()     {}
func (AddDependency) isRequest()     {}
func (RemoveDependency) isRequest()  {}
func (UpgradeDependency) isRequest() {}
func (Search) isRequest()            {}
func (RefreshIndex) isRequest()      {}

// internal loop messages

type metadataDone struct {
	graph *graphResult
}

func (metadataDone) isRequest() {}

type indexDone struct {
	err error
}

func (indexDone) isRequest() {}
