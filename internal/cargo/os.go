package cargo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cargodeck/cargodeck/internal/log"
)

// OSClient implements Client by running the real cargo binary.
type OSClient struct{}

// NewOSClient creates a new OSClient.
func NewOSClient() *OSClient {
	return &OSClient{}
}

// BinaryPath returns the cargo binary to invoke, honoring $CARGO.
func BinaryPath() string {
	if p := os.Getenv("CARGO"); p != "" {
		return p
	}
	return "cargo"
}

// Metadata runs `cargo metadata --format-version 1` for the manifest.
func (c *OSClient) Metadata(ctx context.Context, manifestPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, BinaryPath(),
		"metadata", "--format-version", "1", "--manifest-path", manifestPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: cargo metadata: %s", ErrToolInvocation, msg)
	}
	return stdout.Bytes(), nil
}

// Start spawns cargo with the given arguments in its own process group.
func (c *OSClient) Start(ctx context.Context, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, BinaryPath(), args...)
	setProcGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: piping stdout: %v", ErrToolInvocation, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: piping stderr: %v", ErrToolInvocation, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolInvocation, err)
	}
	log.Debug("spawned %s %s (pid %d)", BinaryPath(), strings.Join(args, " "), cmd.Process.Pid)

	return &osProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type osProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *osProcess) Stdout() io.Reader { return p.stdout }
func (p *osProcess) Stderr() io.Reader { return p.stderr }

func (p *osProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *osProcess) Terminate() error {
	return terminateProcGroup(p.cmd)
}

func (p *osProcess) Kill() error {
	return killProcGroup(p.cmd)
}
