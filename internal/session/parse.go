package session

import (
	"encoding/json"
	"strings"

	"github.com/cargodeck/cargodeck/internal/models"
)

// cargoMessage mirrors the envelope of one structured output line.
type cargoMessage struct {
	Reason  string `json:"reason"`
	Message *struct {
		Message  string `json:"message"`
		Level    string `json:"level"`
		Rendered string `json:"rendered"`
	} `json:"message"`
}

// LineResult is the classification of one structured output line.
// At most one of Diag/Status is set; both nil/empty means the line is
// ignored (artifacts, build-script notifications, malformed input).
type LineResult struct {
	Diag   *models.Diagnostic
	Status string
}

// ClassifyLine classifies one line of the structured output stream.
// Compiler messages become diagnostics; plain text lines update the
// status; everything else is dropped. Classification never fails: a
// malformed line is simply not a diagnostic.
func ClassifyLine(line string) LineResult {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return LineResult{}
	}

	if !strings.HasPrefix(strings.TrimSpace(line), "{") {
		return LineResult{Status: line}
	}

	var msg cargoMessage
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		// Malformed structured line: recovered at line granularity.
		return LineResult{}
	}

	if msg.Reason != "compiler-message" || msg.Message == nil {
		return LineResult{}
	}

	diag := &models.Diagnostic{
		Short:    msg.Message.Message,
		Expanded: msg.Message.Rendered,
		Level:    classifyLevel(msg.Message.Level),
	}
	return LineResult{Diag: diag}
}

func classifyLevel(level string) models.DiagnosticLevel {
	switch level {
	case "error", "error: internal compiler error", "ice":
		return models.LevelError
	case "warning":
		return models.LevelWarning
	case "note", "help", "failure-note":
		return models.LevelNote
	default:
		return models.LevelOther
	}
}
