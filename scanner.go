package matscript

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Scanner converts material script source into tokens.
type Scanner struct {
	r     *bufio.Reader // Reader for the input
	opt   ScanOptions   // Options for the scanner
	diags []Diagnostic  // Collected scanner diagnostics
	ch    rune          // Current character
	line  int           // Line of the current character
	col   int           // Column of the current character
	eof   bool          // End of input reached
}

// NewScanner creates a new scanner reading from r.
func NewScanner(r io.Reader, opt *ScanOptions) *Scanner {
	s := &Scanner{r: bufio.NewReader(r), opt: opt.normalize(), col: -1}
	s.read()
	if s.ch == 0xFEFF {
		// Skip UTF-8 BOM if present.
		s.col = -1
		s.ch = 0
		s.read()
	}

	return s
}

// Scan tokenizes src up to and including the end_of_file token.
func Scan(src []byte, opt *ScanOptions) ([]Token, []Diagnostic) {
	s := NewScanner(bytes.NewReader(src), opt)
	tokens := make([]Token, 0, len(src)/4+1)
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEndOfFile {
			break
		}
	}

	return tokens, s.Diagnostics()
}

// ScanFile tokenizes a file from disk.
func ScanFile(path string, opt *ScanOptions) ([]Token, []Diagnostic, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFile, err)
	}

	tokens, diags := Scan(b, opt)
	return tokens, diags, nil
}

// Diagnostics returns diagnostics collected so far, in source order.
func (s *Scanner) Diagnostics() []Diagnostic {
	return s.diags
}

// Next returns the next token. After end_of_file it keeps returning end_of_file.
func (s *Scanner) Next() Token {
	for {
		s.skipSpace()
		if s.eof {
			return Token{Kind: TokenEndOfFile, Line: s.line, Column: s.col}
		}

		line, col := s.line, s.col
		switch s.ch {
		case '\n':
			s.read()
			return Token{Kind: TokenEndOfLine, Literal: "\n", Line: line, Column: col, Size: 1}
		case ':':
			s.read()
			return Token{Kind: TokenColon, Literal: ":", Line: line, Column: col, Size: 1}
		case ',':
			s.read()
			return Token{Kind: TokenComma, Literal: ",", Line: line, Column: col, Size: 1}
		case '{':
			s.read()
			return Token{Kind: TokenLeftBrace, Literal: "{", Line: line, Column: col, Size: 1}
		case '}':
			s.read()
			return Token{Kind: TokenRightBrace, Literal: "}", Line: line, Column: col, Size: 1}
		case '"':
			if tok, ok := s.readString(line, col); ok {
				return tok
			}
			continue
		case '*':
			if next := s.peek(); next == 0 || unicode.IsSpace(next) {
				s.read()
				return Token{Kind: TokenAsterisk, Literal: "*", Line: line, Column: col, Size: 1}
			}
			if tok, ok := s.readMatch(line, col); ok {
				return tok
			}
			continue
		case '/':
			if s.peek() == '/' {
				lit := s.readComment()
				if s.opt.KeepComments {
					return Token{Kind: TokenComment, Literal: lit, Line: line, Column: col, Size: s.col - col}
				}
				continue
			}
		}

		if isNumberStart(s.ch, s.peek()) {
			if tok, ok := s.readNumber(line, col); ok {
				return tok
			}
			continue
		}

		if isIdentStart(s.ch) {
			return s.readIdent(line, col, "")
		}

		s.errorf(CodeInvalidCharacter, line, col, col+1, "invalid character '%c'", s.ch)
		s.skipToBoundary()
	}
}

// read advances to the next character.
func (s *Scanner) read() {
	if s.ch == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}

	ch, _, err := s.r.ReadRune()
	if err != nil {
		s.eof = true
		s.ch = 0
		return
	}

	s.ch = ch
}

// peek returns the character after the current one without consuming it.
func (s *Scanner) peek() rune {
	ch, _, err := s.r.ReadRune()
	if err != nil {
		return 0
	}

	_ = s.r.UnreadRune()
	return ch
}

// skipSpace skips horizontal whitespace. Newlines are significant.
func (s *Scanner) skipSpace() {
	for !s.eof && isHorizontalSpace(s.ch) {
		s.read()
	}
}

// skipToBoundary skips to the next whitespace character without consuming it.
func (s *Scanner) skipToBoundary() {
	for !s.eof && !unicode.IsSpace(s.ch) {
		s.read()
	}
}

// readComment consumes a // comment up to, not including, the newline.
func (s *Scanner) readComment() string {
	var b strings.Builder
	for !s.eof && s.ch != '\n' {
		b.WriteRune(s.ch)
		s.read()
	}

	return strings.TrimRight(b.String(), "\r")
}

// readString reads a "..." literal starting at the opening quote.
func (s *Scanner) readString(line, col int) (Token, bool) {
	s.read() // consume opening quote
	var b strings.Builder
	for {
		if s.eof || s.ch == '\n' {
			s.errorf(CodeInvalidStringLiteral, line, col, s.col, "unterminated string literal")
			return Token{}, false
		}

		if s.ch == '"' {
			s.read()
			break
		}

		// Backslash escapes the next character, kept verbatim.
		if s.ch == '\\' {
			b.WriteRune(s.ch)
			s.read()
			if s.eof || s.ch == '\n' {
				continue
			}
		}

		b.WriteRune(s.ch)
		s.read()
	}

	return Token{Kind: TokenString, Literal: b.String(), Line: line, Column: col, Size: s.col - col}, true
}

// readMatch reads a *name* literal starting at the opening star.
func (s *Scanner) readMatch(line, col int) (Token, bool) {
	s.read() // consume opening star
	var b strings.Builder
	for {
		if s.eof || unicode.IsSpace(s.ch) {
			s.errorf(CodeInvalidMatchLiteral, line, col, s.col, "match literal is not closed before whitespace")
			return Token{}, false
		}

		if s.ch == '*' {
			s.read()
			break
		}

		if s.ch == '\\' {
			b.WriteRune(s.ch)
			s.read()
			if s.eof || unicode.IsSpace(s.ch) {
				continue
			}
		}

		b.WriteRune(s.ch)
		s.read()
	}

	return Token{Kind: TokenMatch, Literal: b.String(), Line: line, Column: col, Size: s.col - col}, true
}

// readNumber reads a number literal. A digit run directly followed by
// letters (texture types such as "2d") is handed over to readIdent.
func (s *Scanner) readNumber(line, col int) (Token, bool) {
	var b strings.Builder
	if s.ch == '-' {
		b.WriteRune(s.ch)
		s.read()
	}

	dot := false
	for !s.eof {
		if isDigit(s.ch) {
			b.WriteRune(s.ch)
			s.read()
			continue
		}
		if s.ch == '.' && !dot {
			dot = true
			b.WriteRune(s.ch)
			s.read()
			continue
		}
		break
	}

	lit := b.String()
	if s.eof || unicode.IsSpace(s.ch) {
		return Token{Kind: TokenNumber, Literal: lit, Line: line, Column: col, Size: s.col - col}, true
	}

	if !dot && isDigit(lit[0]) && (unicode.IsLetter(s.ch) || s.ch == '_') {
		return s.readIdent(line, col, lit), true
	}

	s.errorf(CodeInvalidNumber, line, col, s.col+1, "invalid number '%s%c'", lit, s.ch)
	s.skipToBoundary()
	return Token{}, false
}

// readIdent reads an identifier, keyword or variable. prefix holds
// characters already consumed by the caller.
func (s *Scanner) readIdent(line, col int, prefix string) Token {
	var b strings.Builder
	b.WriteString(prefix)
	for !s.eof && isIdentPart(s.ch) {
		if s.ch == '/' && s.peek() == '/' {
			break
		}
		b.WriteRune(s.ch)
		s.read()
	}

	lit := b.String()
	kind := TokenIdentifier
	if k, ok := keywords[lit]; ok {
		kind = k
	} else if strings.HasPrefix(lit, "$") {
		kind = TokenVariable
	}

	return Token{Kind: kind, Literal: lit, Line: line, Column: col, Size: s.col - col}
}

// errorf records a scanner diagnostic on the current line.
func (s *Scanner) errorf(code string, line, from, to int, format string, args ...any) {
	if to <= from {
		to = from + 1
	}

	s.diags = append(s.diags, Diagnostic{
		Level:   LevelError,
		Kind:    KindScanner,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Range: Range{
			Start: Position{Line: line, Character: from},
			End:   Position{Line: line, Character: to},
		},
	})
}

// isHorizontalSpace checks for whitespace other than a newline.
func isHorizontalSpace(r rune) bool {
	return r != '\n' && (unicode.IsSpace(r) || r == 0xFEFF)
}

// isDigit checks for an ASCII digit.
func isDigit[T rune | byte](r T) bool {
	return r >= '0' && r <= '9'
}

// isNumberStart checks if r (followed by next) starts a number.
func isNumberStart(r, next rune) bool {
	if isDigit(r) {
		return true
	}

	return (r == '-' || r == '.') && isDigit(next)
}

// isIdentStart checks if a character is a valid start of an identifier.
func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$' || r == '/' || r == '.'
}

// isIdentPart checks if a character is a valid part of an identifier.
func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '-'
}
