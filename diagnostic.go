package matscript

import "fmt"

// Position is a zero-based line/character pair.
type Position struct {
	Line      int `json:"line" yaml:"line"`           // Zero-based line
	Character int `json:"character" yaml:"character"` // Zero-based rune column
}

// Range is a half-open source range, End is exclusive.
type Range struct {
	Start Position `json:"start" yaml:"start"` // Inclusive start
	End   Position `json:"end" yaml:"end"`     // Exclusive end
}

// Location is a range inside a document.
type Location struct {
	URI   string `json:"uri" yaml:"uri"`     // Document URI
	Range Range  `json:"range" yaml:"range"` // Target range
}

// Before reports whether p sorts before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}

	return p.Character < q.Character
}

// String renders the position 1-based, the way compilers print it.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// pointRange returns a zero-width range at p.
func pointRange(p Position) Range {
	return Range{Start: p, End: p}
}

// Level represents severity of a diagnostic.
type Level string

const (
	// LevelError indicates an error.
	LevelError Level = "error"
	// LevelWarning indicates a warning.
	LevelWarning Level = "warning"
)

// ErrorKind is the taxonomy bucket a diagnostic belongs to.
type ErrorKind int

// error kinds.
const (
	KindFile     ErrorKind = iota // Source unreadable
	KindScanner                   // Invalid character/number/string/match literal
	KindParse                     // Structural grammar violation
	KindParams                    // Parameter line shape violation
	KindResource                  // Referenced resource problem
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindFile:
		return "FileError"
	case KindScanner:
		return "ScannerError"
	case KindParse:
		return "ParseError"
	case KindParams:
		return "ParamsError"
	case KindResource:
		return "ResourceWarning"
	default:
		return "Error"
	}
}

// sentinel returns the package error matching the kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindFile:
		return ErrFile
	case KindScanner:
		return ErrScan
	case KindParams:
		return ErrParams
	default:
		return ErrParse
	}
}

// Diagnostic codes.
const (
	CodeInvalidCharacter     = "invalid_character"
	CodeInvalidNumber        = "invalid_number"
	CodeInvalidStringLiteral = "invalid_string_literal"
	CodeInvalidMatchLiteral  = "invalid_match_literal"
	CodeInvalidToken         = "invalid_token"
	CodeUnexpectedToken      = "unexpected_token"
	CodeNotValidParam        = "not_valid_param"
	CodeInvalidParams        = "invalid_params"
	CodeMissingResource      = "missing_resource"
	CodeResourceExtension    = "resource_extension"
)

// Diagnostic is a single problem found in a document.
type Diagnostic struct {
	Level   Level     `json:"level" yaml:"level"`                   // Severity level
	Kind    ErrorKind `json:"kind" yaml:"kind"`                     // Taxonomy bucket
	Code    string    `json:"code,omitempty" yaml:"code,omitempty"` // Machine-readable code
	Message string    `json:"message" yaml:"message"`               // Issue message
	Range   Range     `json:"range" yaml:"range"`                   // Affected source range
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Range.Start, d.Level, d.Message)
}

// HasErrors reports whether any diagnostic is error-level.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == LevelError {
			return true
		}
	}

	return false
}
