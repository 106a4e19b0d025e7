package matscript

import (
	"errors"
	"fmt"
)

var (
	// ErrFile indicates the source document could not be read.
	ErrFile = errors.New("file error")

	// ErrScan indicates a scanner failure.
	ErrScan = errors.New("scanner error")

	// ErrParse indicates a parser failure.
	ErrParse = errors.New("parse error")

	// ErrParams indicates a parameter line that does not match its grammar.
	ErrParams = errors.New("params error")
)

// SyntaxError is a recoverable failure raised by a scanner, parser or
// params production. It is converted into a Diagnostic by whoever recovers.
type SyntaxError struct {
	Kind    ErrorKind // Error taxonomy bucket
	Code    string    // Machine-readable code
	Message string    // Human-readable message
	Range   Range     // Offending source range
}

// Error implements error.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Range.Start.Line+1, e.Range.Start.Character+1, e.Message)
}

// Unwrap maps the error onto its sentinel.
func (e *SyntaxError) Unwrap() error {
	return e.Kind.sentinel()
}

// Diagnostic converts the error into an error-level diagnostic.
func (e *SyntaxError) Diagnostic() Diagnostic {
	return Diagnostic{
		Level:   LevelError,
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Range:   e.Range,
	}
}

// syntaxErrorf builds a SyntaxError at tok.
func syntaxErrorf(kind ErrorKind, code string, tok Token, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...), Range: tok.Range()}
}
