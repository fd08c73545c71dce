package domain

import "fmt"

// Severity is the category of a compiler diagnostic.
type Severity uint8

const (
	// SeverityError is a diagnostic that would fail a strict compile.
	SeverityError Severity = iota
	// SeverityWarning is an advisory diagnostic.
	SeverityWarning
	// SeverityMessage is informational.
	SeverityMessage
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "message"
	}
}

// Diagnostic is a positioned compiler message. Line and Column are 1-based.
// Diagnostics are logged and never abort a pass.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Code     int
	Message  string
}

// Error implements error so diagnostics can be passed to ports.Logger.Error.
func (d Diagnostic) Error() string {
	return d.String()
}

// String formats the diagnostic as `file(line,col): severity TScode: message`.
func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s TS%d: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s(%d,%d): %s TS%d: %s", d.File, d.Line, d.Column, d.Severity, d.Code, d.Message)
}
