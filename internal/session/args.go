package session

import (
	"fmt"
	"strings"

	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/mattn/go-shellwords"
)

// exampleSuffix marks run targets that are examples rather than bins.
const exampleSuffix = " (example)"

// BuildArgs derives the build-tool argument vector for an action.
// The vector always requests line-delimited structured output.
func BuildArgs(action models.BuildAction, features models.FeatureSettings, manifestPath string) ([]string, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	args := []string{string(action.Command), "--manifest-path", manifestPath}

	if action.Profile == models.ProfileRelease {
		args = append(args, "--release")
	}

	if action.Extra != "" {
		switch action.Command {
		case models.CommandRun:
			if example, ok := strings.CutSuffix(action.Extra, exampleSuffix); ok {
				args = append(args, "--example", example)
			} else {
				args = append(args, "--bin", action.Extra)
			}
		case models.CommandTest:
			args = append(args, "--test", action.Extra)
		}
	}

	if action.Package != "" {
		args = append(args, "-p", action.Package)
	}

	args = append(args, features.Args()...)
	args = append(args, "--message-format", "json")

	if action.Arguments != "" {
		user, err := shellwords.Parse(action.Arguments)
		if err != nil {
			return nil, fmt.Errorf("parsing command line arguments: %w", err)
		}
		args = append(args, "--")
		args = append(args, user...)
	}

	return args, nil
}
