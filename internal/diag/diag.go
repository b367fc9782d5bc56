// Package diag provides diagnostic (error/warning) types for the static
// phases: scanning, parsing and scope resolution.
package diag

import (
	"fmt"
	"lox-lang/internal/token"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents a static diagnostic message.
type Diagnostic struct {
	Code     string    `json:"code"`            // stable error code, e.g. "E3001"
	Severity Severity  `json:"severity"`        // error or warning
	Message  string    `json:"message"`         // human-readable description
	Pos      token.Pos `json:"pos"`             // source location
	Where    string    `json:"where,omitempty"` // locator: " at 'x'", " at end" or empty
}

// String renders the diagnostic the way the driver prints it:
//
//	[line 3] Error at 'x': Already a variable with this name in this scope.
func (d Diagnostic) String() string {
	label := "Error"
	if d.Severity == Warning {
		label = "Warning"
	}
	return fmt.Sprintf("[line %d] %s%s: %s", d.Pos.Line, label, d.Where, d.Message)
}

// Errorf creates an error diagnostic at a bare position, with no locator.
func Errorf(code string, pos token.Pos, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// ErrorAt creates an error diagnostic located at tok.
func ErrorAt(code string, tok token.Token, format string, args ...interface{}) Diagnostic {
	d := Errorf(code, tok.Pos, format, args...)
	d.Where = where(tok)
	return d
}

// WarningAt creates a warning diagnostic located at tok.
func WarningAt(code string, tok token.Token, format string, args ...interface{}) Diagnostic {
	d := ErrorAt(code, tok, format, args...)
	d.Severity = Warning
	return d
}

func where(tok token.Token) string {
	if tok.Kind == token.EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

// HasErrors reports whether any diagnostic in diags is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}
