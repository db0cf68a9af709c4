// Package app coordinates the engine components behind a narrow
// message-passing surface: the UI layer posts Requests, a single
// worker loop executes them (pushing blocking work onto background
// goroutines), and state changes come back as Updates.
package app

import (
	"context"

	"github.com/cargodeck/cargodeck/internal/editor"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/cargodeck/cargodeck/internal/manifest"
	"github.com/cargodeck/cargodeck/internal/metadata"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/cargodeck/cargodeck/internal/registry"
	"github.com/cargodeck/cargodeck/internal/session"
)

type graphResult struct {
	graph *metadata.Graph
	err   error
}

// App owns one project context: the manifest store, the current graph
// snapshot, the open-set, the registry index handle, and the build
// session. All mutable state is confined to the worker loop goroutine.
type App struct {
	fs      filesystem.FileSystem
	store   *manifest.Store
	meta    *metadata.Service
	index   *registry.Index
	session *session.Session
	editor  *editor.Editor

	requests chan Request
	updates  chan Update

	// loop-confined state
	manifestPath string
	selected     string
	graph        *metadata.Graph
	open         models.OpenSet
	refreshing   bool
}

// New wires an App from its components.
func New(fsys filesystem.FileSystem, store *manifest.Store, meta *metadata.Service, index *registry.Index, sess *session.Session, ed *editor.Editor) *App {
	return &App{
		fs:       fsys,
		store:    store,
		meta:     meta,
		index:    index,
		session:  sess,
		editor:   ed,
		requests: make(chan Request, 16),
		updates:  make(chan Update, 64),
		open:     models.NewOpenSet(),
	}
}

// Updates is the stream the UI layer subscribes to.
func (a *App) Updates() <-chan Update {
	return a.updates
}

// Post submits a request to the worker loop.
func (a *App) Post(req Request) {
	a.requests <- req
}

// Run drains requests until the context ends. It closes the updates
// channel on return.
func (a *App) Run(ctx context.Context) {
	defer close(a.updates)
	for {
		select {
		case <-ctx.Done():
			a.session.Cancel()
			return
		case req := <-a.requests:
			a.handle(ctx, req)
		}
	}
}

func (a *App) handle(ctx context.Context, req Request) {
	switch r := req.(type) {
	case SetManifestPath:
		a.setManifestPath(ctx, r.Path)
	case RunAction:
		a.runAction(ctx, r)
	case CancelBuild:
		a.session.Cancel()
	case ToggleRow:
		a.open.Toggle(r.ID)
		a.emitRows()
	case SelectPackage:
		a.selected = r.Name
		a.emitWorkspace()
		a.emitRows()
	case AddDependency:
		a.addDependency(ctx, r)
	case RemoveDependency:
		a.editOwner(ctx, r.OwnerID, r.Name, r.Kind, a.editor.Remove)
	case UpgradeDependency:
		a.editOwner(ctx, r.OwnerID, r.Name, r.Kind, a.editor.Upgrade)
	case Search:
		a.updates <- Update{Kind: UpdateCompletions, Completions: a.index.Search(r.Prefix, 50)}
	case RefreshIndex:
		go func() {
			err := a.index.Refresh(ctx)
			a.requests <- indexDone{err: err}
		}()
	case indexDone:
		if r.err != nil {
			a.updates <- Update{Kind: UpdateError, Err: r.err}
			return
		}
		a.updates <- Update{Kind: UpdateStatus, Status: "registry index updated"}
		// Outdated flags depend on the index; recompute them.
		a.startRefresh(ctx)
	case metadataDone:
		a.refreshing = false
		if r.graph.err != nil {
			a.updates <- Update{Kind: UpdateManifest, ManifestPath: a.manifestPath, Valid: false}
			a.updates <- Update{Kind: UpdateError, Err: r.graph.err}
			return
		}
		a.graph = r.graph.graph
		a.updates <- Update{Kind: UpdateManifest, ManifestPath: a.manifestPath, Valid: true}
		a.emitWorkspace()
		a.emitRows()
	}
}

func (a *App) setManifestPath(ctx context.Context, path string) {
	a.manifestPath = manifest.ResolvePath(a.fs, path)
	a.selected = ""
	a.graph = nil
	a.open = models.NewOpenSet()

	if _, err := a.store.Load(a.manifestPath); err != nil {
		a.updates <- Update{Kind: UpdateManifest, ManifestPath: a.manifestPath, Valid: false}
		a.updates <- Update{Kind: UpdateError, Err: err}
		return
	}
	a.updates <- Update{Kind: UpdateStatus, Status: "loading metadata..."}
	a.startRefresh(ctx)
}

// startRefresh launches the blocking metadata query off the loop.
// A second refresh request while one is in flight is dropped; the
// in-flight result reflects the same manifest anyway.
func (a *App) startRefresh(ctx context.Context) {
	if a.refreshing || a.manifestPath == "" {
		return
	}
	a.refreshing = true
	path := a.manifestPath
	go func() {
		graph, err := a.meta.Refresh(ctx, path)
		a.requests <- metadataDone{graph: &graphResult{graph: graph, err: err}}
	}()
}

func (a *App) runAction(ctx context.Context, r RunAction) {
	events, err := a.session.Start(ctx, a.manifestPath, r.Action, r.Features)
	if err != nil {
		a.updates <- Update{Kind: UpdateError, Err: err}
		return
	}
	// One forwarder per session keeps diagnostic order intact.
	go func() {
		for ev := range events {
			switch ev.Kind {
			case session.EventStarted:
				a.updates <- Update{Kind: UpdateStatus, Status: "building..."}
			case session.EventDiagnostic:
				a.updates <- Update{Kind: UpdateDiagnostic, Diagnostic: ev.Diagnostic}
			case session.EventStatus:
				a.updates <- Update{Kind: UpdateStatus, Status: ev.Status}
			case session.EventFinished:
				a.updates <- Update{Kind: UpdateBuildFinished, Summary: ev.Summary}
			}
		}
	}()
}

func (a *App) addDependency(ctx context.Context, r AddDependency) {
	target := a.manifestPath
	if a.selected != "" && a.graph != nil {
		if member := a.graph.Member(a.selected); member != nil {
			target = member.ManifestPath
		}
	}
	if err := a.editor.Add(target, r.Name, r.Kind); err != nil {
		a.updates <- Update{Kind: UpdateError, Err: err}
		return
	}
	a.startRefresh(ctx)
}

func (a *App) editOwner(ctx context.Context, owner models.PackageID, name string, kind models.DepKind, op func(string, string, models.DepKind) error) {
	if a.graph == nil {
		a.updates <- Update{Kind: UpdateError, Err: editor.ErrNotFound}
		return
	}
	node := a.graph.Packages[owner]
	if node == nil {
		a.updates <- Update{Kind: UpdateError, Err: editor.ErrNotFound}
		return
	}
	if err := op(node.ManifestPath, name, kind); err != nil {
		a.updates <- Update{Kind: UpdateError, Err: err}
		return
	}
	a.startRefresh(ctx)
}

func (a *App) emitWorkspace() {
	if a.graph == nil {
		return
	}
	info := metadata.Workspace(a.graph, a.selected)
	a.updates <- Update{Kind: UpdateWorkspace, Workspace: &info}
}

func (a *App) emitRows() {
	if a.graph == nil {
		return
	}
	rows := metadata.Flatten(a.graph, a.selected, a.open)
	log.Debug("flattened %d rows", len(rows))
	a.updates <- Update{Kind: UpdateRows, Rows: rows}
}
