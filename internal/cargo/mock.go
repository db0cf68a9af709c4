package cargo

import (
	"context"
	"io"
	"strings"
	"sync"
)

// MockClient implements Client for testing with scripted subprocesses.
type MockClient struct {
	mu sync.Mutex

	// MetadataOutput is returned by Metadata when MetadataError is nil
	MetadataOutput []byte
	MetadataError  error

	// StartError fails Start before any process is created
	StartError error

	// Processes are handed out in order by Start; when exhausted an
	// immediately-exiting empty process is returned
	Processes []*MockProcess

	// StartCalls records the argument vectors passed to Start
	StartCalls [][]string

	// MetadataCalls records the manifest paths queried
	MetadataCalls []string
}

// NewMockClient creates a new MockClient.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Metadata(ctx context.Context, manifestPath string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MetadataCalls = append(c.MetadataCalls, manifestPath)
	if c.MetadataError != nil {
		return nil, c.MetadataError
	}
	return c.MetadataOutput, nil
}

func (c *MockClient) Start(ctx context.Context, args []string) (Process, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StartCalls = append(c.StartCalls, args)
	if c.StartError != nil {
		return nil, c.StartError
	}
	if len(c.Processes) == 0 {
		return NewMockProcess("", "", nil), nil
	}
	p := c.Processes[0]
	c.Processes = c.Processes[1:]
	return p, nil
}

// MockProcess is a scripted Process. Its output streams are fixed up
// front; Wait returns ExitError once the process is allowed to exit.
type MockProcess struct {
	stdout io.Reader
	stderr io.Reader

	// ExitError is what Wait reports (nil means exit status 0)
	ExitError error

	// Blocked keeps Wait hanging until Terminate or Kill is called,
	// simulating a long-running build
	Blocked bool

	exited    chan struct{}
	exitOnce  sync.Once
	mu        sync.Mutex
	termCalls int
	killCalls int
}

// NewMockProcess creates a process whose streams replay the given data.
func NewMockProcess(stdout, stderr string, exitErr error) *MockProcess {
	return &MockProcess{
		stdout:    strings.NewReader(stdout),
		stderr:    strings.NewReader(stderr),
		ExitError: exitErr,
		exited:    make(chan struct{}),
	}
}

func (p *MockProcess) Stdout() io.Reader { return p.stdout }
func (p *MockProcess) Stderr() io.Reader { return p.stderr }

func (p *MockProcess) Wait() error {
	if p.Blocked {
		<-p.exited
	}
	return p.ExitError
}

func (p *MockProcess) Terminate() error {
	p.mu.Lock()
	p.termCalls++
	p.mu.Unlock()
	p.exitOnce.Do(func() { close(p.exited) })
	return nil
}

func (p *MockProcess) Kill() error {
	p.mu.Lock()
	p.killCalls++
	p.mu.Unlock()
	p.exitOnce.Do(func() { close(p.exited) })
	return nil
}

// TerminateCalls reports how often Terminate was invoked.
func (p *MockProcess) TerminateCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.termCalls
}

// KillCalls reports how often Kill was invoked.
func (p *MockProcess) KillCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killCalls
}
