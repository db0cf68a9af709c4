package models

// DiagnosticLevel classifies the severity of one build-tool message.
type DiagnosticLevel int

const (
	LevelOther DiagnosticLevel = iota
	LevelError
	LevelWarning
	LevelNote
)

func (l DiagnosticLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	default:
		return "other"
	}
}

// Diagnostic is one message emitted by the build tool.
// Both forms are computed once at parse time; values are never mutated.
type Diagnostic struct {
	// Short is the one-line summary
	Short string

	// Expanded is the full rendered message, possibly multi-line.
	// Empty when the tool provided no rendered form.
	Expanded string

	// Level is the classified severity
	Level DiagnosticLevel
}
