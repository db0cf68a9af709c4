package session

import (
	"bufio"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/log"
	"github.com/cargodeck/cargodeck/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// ErrSessionBusy is returned when a start is attempted while a build
// is already running. Starts are rejected, never queued.
var ErrSessionBusy = errors.New("a build session is already running")

// EventKind discriminates session events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventDiagnostic
	EventStatus
	EventFinished
)

// Event is one observable session update. Diagnostic events arrive in
// exactly the order the subprocess emitted them.
type Event struct {
	Kind       EventKind
	Diagnostic models.Diagnostic // EventDiagnostic
	Status     string            // EventStatus
	Summary    *Summary          // EventFinished
}

// Summary is the exit report of one finished session.
type Summary struct {
	State    models.SessionState
	ExitErr  error
	Errors   int
	Warnings int
	Duration time.Duration
}

// defaultKillTimeout bounds the wait between the polite termination
// signal and the forced kill.
const defaultKillTimeout = 3 * time.Second

// Session drives one build-tool subprocess at a time for a project
// context. At most one build may be running; Start while running fails
// with ErrSessionBusy. All methods are safe for concurrent use.
type Session struct {
	client      cargo.Client
	killTimeout time.Duration

	mu        sync.Mutex
	id        string
	state     models.SessionState
	diags     []models.Diagnostic
	status    string
	cancelled bool
	proc      cargo.Process
	done      chan struct{}
}

// New creates an idle session.
func New(client cargo.Client) *Session {
	return &Session{
		client:      client,
		killTimeout: defaultKillTimeout,
		state:       models.SessionIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the identifier of the current or most recent run.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Status returns the most recent free-text status line.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Diagnostics returns a copy of the ordered diagnostic sequence of the
// current or most recent run.
func (s *Session) Diagnostics() []models.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// Start spawns the build tool for the action and begins streaming.
// The returned channel delivers ordered events and is closed after the
// terminal EventFinished. The caller must drain it. A failed spawn
// leaves the previous run's state and diagnostics in place.
func (s *Session) Start(ctx context.Context, manifestPath string, action models.BuildAction, features models.FeatureSettings) (<-chan Event, error) {
	args, err := BuildArgs(action, features, manifestPath)
	if err != nil {
		return nil, err
	}

	// Claim the running slot before spawning so a concurrent Start
	// cannot pass the busy check while the subprocess is launching.
	s.mu.Lock()
	if s.state == models.SessionRunning {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	prev := s.state
	s.state = models.SessionRunning
	s.mu.Unlock()

	proc, err := s.client.Start(ctx, args)
	if err != nil {
		s.mu.Lock()
		s.state = prev
		s.mu.Unlock()
		return nil, err
	}

	id, err := gonanoid.New(8)
	if err != nil {
		id = "session"
	}

	events := make(chan Event, 64)
	done := make(chan struct{})

	s.mu.Lock()
	s.id = id
	s.diags = nil
	s.status = ""
	s.cancelled = false
	s.proc = proc
	s.done = done
	s.mu.Unlock()

	log.Debug("session %s: started %v", id, args)
	events <- Event{Kind: EventStarted}

	go s.run(proc, events, done, time.Now())
	return events, nil
}

// run drains the subprocess streams and settles the terminal state.
func (s *Session) run(proc cargo.Process, events chan Event, done chan struct{}, started time.Time) {
	var group errgroup.Group

	group.Go(func() error {
		scanner := bufio.NewScanner(proc.Stdout())
		scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
		for scanner.Scan() {
			if s.isCancelled() {
				break
			}
			res := ClassifyLine(scanner.Text())
			switch {
			case res.Diag != nil:
				s.mu.Lock()
				s.diags = append(s.diags, *res.Diag)
				s.mu.Unlock()
				events <- Event{Kind: EventDiagnostic, Diagnostic: *res.Diag}
			case res.Status != "":
				s.setStatus(res.Status)
				events <- Event{Kind: EventStatus, Status: res.Status}
			}
		}
		return scanner.Err()
	})

	group.Go(func() error {
		scanner := bufio.NewScanner(proc.Stderr())
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if s.isCancelled() {
				break
			}
			line := scanner.Text()
			if line == "" {
				continue
			}
			s.setStatus(line)
			events <- Event{Kind: EventStatus, Status: line}
		}
		return scanner.Err()
	})

	if err := group.Wait(); err != nil {
		log.Debug("session %s: stream read error: %v", s.ID(), err)
	}

	exitErr := proc.Wait()
	close(done)

	s.mu.Lock()
	final := models.SessionCompleted
	switch {
	case s.cancelled:
		final = models.SessionCancelled
	case exitErr != nil:
		final = models.SessionFailed
	}
	s.state = final
	s.proc = nil

	summary := &Summary{
		State:    final,
		ExitErr:  exitErr,
		Duration: time.Since(started),
	}
	for _, d := range s.diags {
		switch d.Level {
		case models.LevelError:
			summary.Errors++
		case models.LevelWarning:
			summary.Warnings++
		}
	}
	s.mu.Unlock()

	log.Debug("session %s: finished %s (%d errors, %d warnings)",
		s.ID(), final, summary.Errors, summary.Warnings)
	events <- Event{Kind: EventFinished, Summary: summary}
	close(events)
}

// Cancel requests termination of the running build. It is a no-op when
// nothing is running, including after the subprocess already exited,
// and is safe to call from any goroutine.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state != models.SessionRunning || s.proc == nil {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	proc := s.proc
	done := s.done
	timeout := s.killTimeout
	s.mu.Unlock()

	log.Debug("session %s: cancel requested", s.ID())
	if err := proc.Terminate(); err != nil {
		log.Debug("session %s: terminate: %v", s.ID(), err)
	}

	// Escalate to a forced kill when the process ignores the signal.
	go func() {
		select {
		case <-done:
		case <-time.After(timeout):
			if err := proc.Kill(); err != nil {
				log.Debug("kill: %v", err)
			}
		}
	}()
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *Session) setStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}
