package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/stretchr/testify/require"
)

const (
	warningLine = `{"reason":"compiler-message","message":{"message":"unused variable","level":"warning","rendered":"warning: unused variable\n"}}`
	errorLine   = `{"reason":"compiler-message","message":{"message":"mismatched types","level":"error","rendered":"error[E0308]: mismatched types\n"}}`
)

func buildAction() models.BuildAction {
	return models.BuildAction{Command: models.CommandBuild, Profile: models.ProfileDebug}
}

func drainEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out draining session events, got %d so far", len(out))
		}
	}
}

func TestSession_Start_StreamsOrderedDiagnostics(t *testing.T) {
	stdout := warningLine + "\n" + "Compiling core v0.1.0\n" + errorLine + "\n"
	client := cargo.NewMockClient()
	client.Processes = []*cargo.MockProcess{cargo.NewMockProcess(stdout, "", nil)}

	sess := New(client)
	events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.NoError(t, err)

	all := drainEvents(t, events)
	require.Equal(t, EventStarted, all[0].Kind)
	require.Equal(t, EventFinished, all[len(all)-1].Kind)

	var diags []models.Diagnostic
	var statuses []string
	for _, ev := range all {
		switch ev.Kind {
		case EventDiagnostic:
			diags = append(diags, ev.Diagnostic)
		case EventStatus:
			statuses = append(statuses, ev.Status)
		}
	}

	require.Len(t, diags, 2)
	require.Equal(t, "unused variable", diags[0].Short)
	require.Equal(t, "mismatched types", diags[1].Short)
	require.Equal(t, []string{"Compiling core v0.1.0"}, statuses)

	summary := all[len(all)-1].Summary
	require.NotNil(t, summary)
	require.Equal(t, models.SessionCompleted, summary.State)
	require.Equal(t, 1, summary.Errors)
	require.Equal(t, 1, summary.Warnings)
	require.NoError(t, summary.ExitErr)

	require.Equal(t, models.SessionCompleted, sess.State())
	require.Len(t, sess.Diagnostics(), 2)
	require.NotEmpty(t, sess.ID())
}

func TestSession_Start_WhileRunningReturnsBusy(t *testing.T) {
	proc := cargo.NewMockProcess("", "", nil)
	proc.Blocked = true
	client := cargo.NewMockClient()
	client.Processes = []*cargo.MockProcess{proc}

	sess := New(client)
	events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.NoError(t, err)

	_, err = sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.ErrorIs(t, err, ErrSessionBusy)
	require.Len(t, client.StartCalls, 1, "the running subprocess must not be disturbed")

	sess.Cancel()
	drainEvents(t, events)
}

// slowStartClient widens the spawn window so racing Starts would both
// slip past a busy check that releases the lock before spawning.
type slowStartClient struct {
	inner *cargo.MockClient
	delay time.Duration
}

func (c *slowStartClient) Metadata(ctx context.Context, manifestPath string) ([]byte, error) {
	return c.inner.Metadata(ctx, manifestPath)
}

func (c *slowStartClient) Start(ctx context.Context, args []string) (cargo.Process, error) {
	time.Sleep(c.delay)
	return c.inner.Start(ctx, args)
}

func TestSession_Start_ConcurrentStartsSpawnOneProcess(t *testing.T) {
	proc := cargo.NewMockProcess("", "", nil)
	proc.Blocked = true
	inner := cargo.NewMockClient()
	inner.Processes = []*cargo.MockProcess{proc}
	client := &slowStartClient{inner: inner, delay: 20 * time.Millisecond}

	sess := New(client)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		started []<-chan Event
		busy    int
		errs    []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrSessionBusy):
				busy++
			case err != nil:
				errs = append(errs, err)
			default:
				started = append(started, events)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Equal(t, 1, busy, "exactly one Start must be rejected as busy")
	require.Len(t, started, 1)
	require.Len(t, inner.StartCalls, 1, "exactly one subprocess may be spawned")

	sess.Cancel()
	drainEvents(t, started[0])
}

func TestSession_Cancel_TerminatesRunningBuild(t *testing.T) {
	proc := cargo.NewMockProcess("", "", errors.New("signal: terminated"))
	proc.Blocked = true
	client := cargo.NewMockClient()
	client.Processes = []*cargo.MockProcess{proc}

	sess := New(client)
	events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.NoError(t, err)

	sess.Cancel()
	all := drainEvents(t, events)

	require.Equal(t, 1, proc.TerminateCalls())
	summary := all[len(all)-1].Summary
	require.NotNil(t, summary)
	require.Equal(t, models.SessionCancelled, summary.State)
	require.Equal(t, models.SessionCancelled, sess.State())
}

func TestSession_Cancel_AfterExitIsNoop(t *testing.T) {
	proc := cargo.NewMockProcess(warningLine+"\n", "", nil)
	client := cargo.NewMockClient()
	client.Processes = []*cargo.MockProcess{proc}

	sess := New(client)
	events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.NoError(t, err)
	drainEvents(t, events)

	sess.Cancel()

	require.Equal(t, 0, proc.TerminateCalls())
	require.Equal(t, 0, proc.KillCalls())
	require.Equal(t, models.SessionCompleted, sess.State())
}

func TestSession_Start_SpawnFailureKeepsPreviousDiagnostics(t *testing.T) {
	client := cargo.NewMockClient()
	client.Processes = []*cargo.MockProcess{cargo.NewMockProcess(errorLine+"\n", "", errors.New("exit status 101"))}

	sess := New(client)
	events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.NoError(t, err)
	drainEvents(t, events)

	require.Equal(t, models.SessionFailed, sess.State())
	require.Len(t, sess.Diagnostics(), 1)

	client.StartError = errors.New("executable file not found")
	_, err = sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.Error(t, err)

	// The failed spawn must leave the previous run observable.
	require.Equal(t, models.SessionFailed, sess.State())
	require.Len(t, sess.Diagnostics(), 1)
}

func TestSession_StderrBecomesStatus(t *testing.T) {
	proc := cargo.NewMockProcess("", "   Compiling serde v1.0.0\n    Finished dev profile\n", nil)
	client := cargo.NewMockClient()
	client.Processes = []*cargo.MockProcess{proc}

	sess := New(client)
	events, err := sess.Start(context.Background(), "/p/Cargo.toml", buildAction(), models.FeatureSettings{DefaultFeatures: true})
	require.NoError(t, err)

	var statuses []string
	for _, ev := range drainEvents(t, events) {
		if ev.Kind == EventStatus {
			statuses = append(statuses, ev.Status)
		}
	}

	require.Equal(t, []string{"   Compiling serde v1.0.0", "    Finished dev profile"}, statuses)
	require.Equal(t, "    Finished dev profile", sess.Status())
}
