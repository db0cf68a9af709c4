package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/cargodeck/cargodeck/internal/cargo"
	"github.com/cargodeck/cargodeck/internal/filesystem"
	"github.com/cargodeck/cargodeck/internal/models"
	"github.com/cargodeck/cargodeck/internal/session"
	"github.com/spf13/cobra"
)

// ActionCommand handles the build/run/check/test commands
type ActionCommand struct {
	fs      filesystem.FileSystem
	client  cargo.Client
	command models.BuildCommand
}

// NewActionCommand creates one of the build-action commands
func NewActionCommand(fs filesystem.FileSystem, client cargo.Client, command string) *cobra.Command {
	cmd := &ActionCommand{fs: fs, client: client, command: models.BuildCommand(command)}

	cobraCmd := &cobra.Command{
		Use:   command,
		Short: fmt.Sprintf("Run `cargo %s` with structured diagnostics", command),
		RunE:  cmd.Run,
	}

	flags := cobraCmd.Flags()
	flags.Bool("release", false, "Build with the release profile")
	flags.StringP("package", "p", "", "Target package")
	flags.StringSlice("features", nil, "Features to enable")
	flags.Bool("no-default-features", false, "Disable default features")
	flags.String("args", "", "Arguments passed to the target after --")
	flags.Bool("expanded", false, "Print full rendered diagnostics")
	switch models.BuildCommand(command) {
	case models.CommandRun:
		flags.String("bin", "", "Binary target to run")
		flags.String("example", "", "Example target to run")
	case models.CommandTest:
		flags.String("test-target", "", "Integration test target")
	}

	return cobraCmd
}

// Run executes the action command
func (c *ActionCommand) Run(cmd *cobra.Command, args []string) error {
	manifestPath, err := resolveManifestPath(cmd, c.fs)
	if err != nil {
		return err
	}

	action, features, err := c.buildAction(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := session.New(c.client)
	events, err := sess.Start(ctx, manifestPath, action, features)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		sess.Cancel()
	}()

	expanded, _ := cmd.Flags().GetBool("expanded")
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var summary *session.Summary
	for ev := range events {
		switch ev.Kind {
		case session.EventDiagnostic:
			printDiagnostic(out, ev.Diagnostic, expanded)
		case session.EventStatus:
			fmt.Fprintln(errOut, SubtleStyle.Render(ev.Status))
		case session.EventFinished:
			summary = ev.Summary
		}
	}

	return printSummary(out, summary)
}

func (c *ActionCommand) buildAction(cmd *cobra.Command) (models.BuildAction, models.FeatureSettings, error) {
	flags := cmd.Flags()

	action := models.BuildAction{Command: c.command, Profile: models.ProfileDebug}
	if release, _ := flags.GetBool("release"); release {
		action.Profile = models.ProfileRelease
	}
	action.Package, _ = flags.GetString("package")
	action.Arguments, _ = flags.GetString("args")

	switch c.command {
	case models.CommandRun:
		bin, _ := flags.GetString("bin")
		example, _ := flags.GetString("example")
		if bin != "" && example != "" {
			return action, models.FeatureSettings{}, fmt.Errorf("--bin and --example are mutually exclusive")
		}
		if bin != "" {
			action.Extra = bin
		} else if example != "" {
			action.Extra = example + " (example)"
		}
	case models.CommandTest:
		action.Extra, _ = flags.GetString("test-target")
	}

	enabled, _ := flags.GetStringSlice("features")
	noDefault, _ := flags.GetBool("no-default-features")
	features := models.FeatureSettings{Enabled: enabled, DefaultFeatures: !noDefault}

	return action, features, nil
}

func printDiagnostic(out io.Writer, diag models.Diagnostic, expanded bool) {
	var label string
	switch diag.Level {
	case models.LevelError:
		label = ErrorStyle.Render("error")
	case models.LevelWarning:
		label = WarningStyle.Render("warning")
	case models.LevelNote:
		label = NoteStyle.Render("note")
	default:
		label = SubtleStyle.Render("info")
	}
	if expanded && diag.Expanded != "" {
		fmt.Fprintf(out, "%s:\n%s\n", label, diag.Expanded)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, diag.Short)
}

func printSummary(out io.Writer, summary *session.Summary) error {
	if summary == nil {
		return fmt.Errorf("build finished without a summary")
	}

	switch summary.State {
	case models.SessionCompleted:
		if summary.Errors == 0 && summary.Warnings == 0 {
			fmt.Fprintln(out, SuccessStyle.Render("finished")+SubtleStyle.Render(fmt.Sprintf(" in %s", summary.Duration.Round(10*time.Millisecond))))
			return nil
		}
		fmt.Fprintf(out, "%s: %d errors; %d warnings\n", SuccessStyle.Render("finished"), summary.Errors, summary.Warnings)
		return nil
	case models.SessionCancelled:
		fmt.Fprintln(out, SubtleStyle.Render("cancelled"))
		return nil
	default:
		fmt.Fprintf(out, "%s: %d errors; %d warnings\n", ErrorStyle.Render("failed"), summary.Errors, summary.Warnings)
		return fmt.Errorf("build failed")
	}
}
