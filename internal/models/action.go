package models

import (
	"fmt"
	"strings"
)

// BuildCommand is the cargo subcommand a BuildAction invokes.
type BuildCommand string

const (
	CommandRun   BuildCommand = "run"
	CommandBuild BuildCommand = "build"
	CommandCheck BuildCommand = "check"
	CommandTest  BuildCommand = "test"
)

// Profile selects the build profile.
type Profile string

const (
	ProfileDebug   Profile = "debug"
	ProfileRelease Profile = "release"
)

// BuildAction describes one requested build-tool invocation.
// It is constructed by the caller and consumed once when a session starts.
type BuildAction struct {
	// Command is the cargo subcommand (run, build, check, test)
	Command BuildCommand

	// Package is the target package name; empty means the default package
	Package string

	// Profile is debug or release
	Profile Profile

	// Extra selects a binary, example ("name (example)") or test target
	Extra string

	// Arguments is a raw command-line string passed after `--`,
	// split with shell quoting rules before spawning
	Arguments string
}

// Validate checks that the action describes a runnable invocation.
func (a BuildAction) Validate() error {
	switch a.Command {
	case CommandRun, CommandBuild, CommandCheck, CommandTest:
	default:
		return fmt.Errorf("unknown build command: %q", a.Command)
	}
	switch a.Profile {
	case "", ProfileDebug, ProfileRelease:
	default:
		return fmt.Errorf("unknown profile: %q", a.Profile)
	}
	return nil
}

// FeatureSettings captures the feature flags to pass to cargo.
type FeatureSettings struct {
	// Enabled lists features to enable beyond the defaults
	Enabled []string

	// DefaultFeatures controls whether the default feature set is enabled
	DefaultFeatures bool
}

// Args returns the cargo arguments for the settings.
func (f FeatureSettings) Args() []string {
	var args []string
	if !f.DefaultFeatures {
		args = append(args, "--no-default-features")
	}
	if len(f.Enabled) > 0 {
		args = append(args, "--features", strings.Join(f.Enabled, ","))
	}
	return args
}
