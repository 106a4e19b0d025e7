package matscript

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Encode writes tokens as canonical source to w. Comment tokens are kept
// when present.
func Encode(w io.Writer, tokens []Token, opt *FormatOptions) error {
	fopt := opt.normalize()
	// Buffered writer reduces syscall overhead and short writes.
	bw := bufio.NewWriter(w)
	wr := &writer{w: bw, indent: fopt.Indent}
	if err := wr.writeTokens(tokens); err != nil {
		return err
	}

	return bw.Flush()
}

// Format reformats material script source. Input with scanner diagnostics
// is refused, since tokens dropped by the scanner would be lost.
func Format(src []byte, opt *FormatOptions) ([]byte, error) {
	tokens, diags := Scan(src, &ScanOptions{KeepComments: true})
	if len(diags) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrScan, diags[0])
	}

	var buf bytes.Buffer
	if err := Encode(&buf, tokens, opt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// FormatFile reformats a file in place. It reports whether the content changed.
func FormatFile(path string, opt *FormatOptions) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFile, err)
	}

	out, err := Format(src, opt)
	if err != nil {
		return false, err
	}
	if bytes.Equal(src, out) {
		return false, nil
	}

	return true, os.WriteFile(path, out, 0o600)
}

// writer writes tokens line by line.
type writer struct {
	w       io.Writer // Writer to write to
	indent  string    // Indentation string
	cache   []string  // Cache of indentation strings
	line    []Token   // Tokens of the pending line
	level   int       // Current nesting level
	blank   bool      // A blank line is pending
	opened  bool      // The previous line ended with '{'
	written bool      // Something was written already
}

// writeTokens writes the token stream.
func (w *writer) writeTokens(tokens []Token) error {
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenEndOfLine:
			if len(w.line) == 0 {
				w.blank = w.written
				continue
			}
			if err := w.flushLine(); err != nil {
				return err
			}
		case TokenEndOfFile:
			return w.flushLine()
		default:
			w.line = append(w.line, tok)
		}
	}

	return w.flushLine()
}

// flushLine writes the pending line with its indentation.
func (w *writer) flushLine() error {
	if len(w.line) == 0 {
		return nil
	}

	if w.line[0].Kind == TokenRightBrace && w.level > 0 {
		w.level--
	}

	// No blank line right after an opening brace or before a closing one.
	if w.blank && !w.opened && w.line[0].Kind != TokenRightBrace {
		if err := w.writeString("\n"); err != nil {
			return err
		}
	}
	w.blank = false

	if err := w.writeIndent(); err != nil {
		return err
	}

	for i, tok := range w.line {
		if i > 0 && tok.Kind != TokenComma {
			if err := w.writeString(" "); err != nil {
				return err
			}
		}
		if err := w.writeString(tok.Source()); err != nil {
			return err
		}

		switch {
		case tok.Kind == TokenLeftBrace:
			w.level++
		case tok.Kind == TokenRightBrace && i > 0 && w.level > 0:
			w.level--
		}
	}

	w.opened = w.line[len(w.line)-1].Kind == TokenLeftBrace
	w.line = w.line[:0]
	w.written = true

	return w.writeString("\n")
}

// writeIndent writes the current indentation level to the writer.
func (w *writer) writeIndent() error {
	if w.level <= 0 {
		return nil
	}

	// Cache repeated indentation strings per nesting level.
	return w.writeString(w.indentFor(w.level))
}

// writeString writes a string to the writer.
func (w *writer) writeString(s string) error {
	_, err := io.WriteString(w.w, s)
	return err
}

// indentFor returns the indentation string for level.
func (w *writer) indentFor(level int) string {
	if level <= 0 {
		return ""
	}

	if len(w.cache) <= level {
		w.cache = append(w.cache, make([]string, level-len(w.cache)+1)...)
	}
	if w.cache[level] == "" {
		// Cache computed indentation for this level.
		w.cache[level] = strings.Repeat(w.indent, level)
	}

	return w.cache[level]
}
