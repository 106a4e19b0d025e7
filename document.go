package matscript

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const fileScheme = "file://"

// Document is a parsed material script with everything derived from it.
type Document struct {
	URI          string          `json:"uri" yaml:"uri"`                                       // Document URI
	Path         string          `json:"path" yaml:"path"`                                     // Filesystem path
	Text         string          `json:"-" yaml:"-"`                                           // Source text
	Tokens       []Token         `json:"-" yaml:"-"`                                           // Scanned tokens
	Script       *MaterialScript `json:"script" yaml:"script"`                                 // Syntax tree
	Declarations Declarations    `json:"-" yaml:"-"`                                           // Declarations index
	Diagnostics  []Diagnostic    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"` // All diagnostics
}

// LoadAndParse runs the whole pipeline for one document. When text is nil
// the document is read from the path named by uri. Only an unreadable file
// is an error; everything else is reported as diagnostics.
func LoadAndParse(uri string, text *string, opt *Options) (*Document, error) {
	o := opt.normalize()
	doc := &Document{URI: uri, Path: URIToPath(uri)}

	if text != nil {
		doc.Text = *text
	} else {
		b, err := os.ReadFile(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFile, err)
		}
		doc.Text = string(b)
	}

	tokens, scanDiags := Scan([]byte(doc.Text), o.Scan)
	res := Parse(uri, tokens, scanDiags)

	doc.Tokens = tokens
	doc.Script = res.Script
	doc.Declarations = res.Declarations
	doc.Diagnostics = res.Diagnostics

	if !o.DisableParamsValidation {
		doc.Diagnostics = append(doc.Diagnostics, o.Validator.ValidateParams(doc.Script)...)
	}

	if o.Resources != nil {
		ropt := *o.Resources
		ropt.Roots = append([]string{filepath.Dir(doc.Path)}, ropt.Roots...)
		doc.Diagnostics = append(doc.Diagnostics, CheckResources(doc.Script, &ropt)...)
	}

	return doc, nil
}

// Definition resolves the declaration referenced at pos inside the document.
func (d *Document) Definition(pos Position) Location {
	return Resolve(d.Script, d.Declarations, pos)
}

// Reference returns the declaration key referenced at pos.
func (d *Document) Reference(pos Position) (DeclKey, Token, bool) {
	return FindReference(d.Script, pos)
}

// HasErrors reports whether the document has error-level diagnostics.
func (d *Document) HasErrors() bool {
	return HasErrors(d.Diagnostics)
}

// URIToPath converts a file:// URI into a filesystem path. Other strings
// are returned unchanged.
func URIToPath(uri string) string {
	if !strings.HasPrefix(uri, fileScheme) {
		return uri
	}

	p := strings.TrimPrefix(uri, fileScheme)
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}

	// file:///C:/dir becomes C:/dir.
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}

	return filepath.FromSlash(p)
}

// PathToURI converts a filesystem path into a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, fileScheme) {
		return path
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return (&url.URL{Scheme: "file", Path: p}).String()
}
