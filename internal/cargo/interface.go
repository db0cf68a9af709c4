package cargo

import (
	"context"
	"errors"
	"io"
)

// ErrToolInvocation is returned when the build tool could not be
// invoked at all (missing binary, spawn failure, metadata query with a
// non-zero exit). It is fatal to the requested operation.
var ErrToolInvocation = errors.New("build tool invocation failed")

// Client provides an abstraction over build-tool subprocesses for
// testability.
type Client interface {
	// Metadata runs the blocking metadata query for the manifest and
	// returns its structured stdout document.
	Metadata(ctx context.Context, manifestPath string) ([]byte, error)

	// Start spawns the build tool with the given arguments and piped
	// output streams. The caller owns the returned process.
	Start(ctx context.Context, args []string) (Process, error)
}

// Process is one running build-tool subprocess.
type Process interface {
	// Stdout is the structured line-delimited message stream
	Stdout() io.Reader

	// Stderr is the human-readable progress stream
	Stderr() io.Reader

	// Wait blocks until the process exits. A non-nil error reports a
	// non-zero exit status.
	Wait() error

	// Terminate sends a polite termination signal to the process group
	Terminate() error

	// Kill forcibly ends the process group
	Kill() error
}
