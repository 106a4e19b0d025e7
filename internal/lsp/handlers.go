package lsp

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/woozymasta/matscript"
)

func (s *Server) onInitialize(id json.RawMessage) {
	s.sendResponse(id, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    1,
				Save:      &SaveOptions{IncludeText: true},
			},
			DefinitionProvider:         true,
			DocumentSymbolProvider:     true,
			DocumentFormattingProvider: true,
			ColorProvider:              true,
			SemanticTokensProvider: &SemanticTokensOptions{
				Legend: SemanticTokensLegend{
					TokenTypes:     matscript.SemanticTokenTypes,
					TokenModifiers: []string{},
				},
				Full: true,
			},
		},
		ServerInfo: ServerInfo{Name: serverName, Version: s.version},
	})
}

func (s *Server) onDidOpen(raw json.RawMessage) {
	var p DidOpenTextDocumentParams
	if !s.decode(nil, raw, &p) {
		return
	}

	s.update(p.TextDocument.URI, p.TextDocument.Text)
}

func (s *Server) onDidChange(raw json.RawMessage) {
	var p DidChangeTextDocumentParams
	if !s.decode(nil, raw, &p) || len(p.ContentChanges) == 0 {
		return
	}

	// Full sync: the last change holds the whole document.
	s.update(p.TextDocument.URI, p.ContentChanges[len(p.ContentChanges)-1].Text)
}

func (s *Server) onDidSave(raw json.RawMessage) {
	var p DidSaveTextDocumentParams
	if !s.decode(nil, raw, &p) {
		return
	}

	if p.Text != nil {
		s.update(p.TextDocument.URI, *p.Text)
		return
	}

	if doc, ok := s.ws.Get(p.TextDocument.URI); ok {
		s.publish(doc)
	}
}

func (s *Server) onDidClose(raw json.RawMessage) {
	var p DidCloseTextDocumentParams
	if !s.decode(nil, raw, &p) {
		return
	}

	s.ws.Close(p.TextDocument.URI)
	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: p.TextDocument.URI, Diagnostics: []Diagnostic{}})
}

func (s *Server) onDefinition(id, raw json.RawMessage) {
	var p TextDocumentPositionParams
	if !s.decode(id, raw, &p) {
		return
	}

	loc, ok := s.ws.Definition(p.TextDocument.URI, p.Position)
	if !ok {
		s.sendResponse(id, nil)
		return
	}

	s.sendResponse(id, loc)
}

func (s *Server) onDocumentSymbol(id, raw json.RawMessage) {
	doc, ok := s.document(id, raw)
	if !ok {
		return
	}

	syms := matscript.DocumentSymbols(doc.Script)
	if syms == nil {
		syms = []matscript.Symbol{}
	}
	s.sendResponse(id, syms)
}

func (s *Server) onFormatting(id, raw json.RawMessage) {
	doc, ok := s.document(id, raw)
	if !ok {
		return
	}

	out, err := matscript.Format([]byte(doc.Text), s.format)
	if err != nil {
		s.log.Info("formatting skipped", "uri", doc.URI, "err", err)
		s.sendResponse(id, []TextEdit{})
		return
	}

	if string(out) == doc.Text {
		s.sendResponse(id, []TextEdit{})
		return
	}

	s.sendResponse(id, []TextEdit{{
		Range:   matscript.Range{End: endOf(doc.Text)},
		NewText: string(out),
	}})
}

func (s *Server) onSemanticTokensFull(id, raw json.RawMessage) {
	doc, ok := s.document(id, raw)
	if !ok {
		return
	}

	s.sendResponse(id, SemanticTokens{Data: matscript.SemanticTokens(doc.Tokens)})
}

func (s *Server) onDocumentColor(id, raw json.RawMessage) {
	doc, ok := s.document(id, raw)
	if !ok {
		return
	}

	colors := matscript.DocumentColors(doc.Script)
	for i := range colors {
		colors[i].Color = colors[i].Color.Clamped()
	}
	if colors == nil {
		colors = []matscript.ColorInfo{}
	}
	s.sendResponse(id, colors)
}

func (s *Server) onColorPresentation(id, raw json.RawMessage) {
	var p ColorPresentationParams
	if !s.decode(id, raw, &p) {
		return
	}

	label := matscript.FormatColor(p.Color)
	s.sendResponse(id, []ColorPresentation{{
		Label:    label,
		TextEdit: &TextEdit{Range: p.Range, NewText: label},
	}})
}

// update reparses a document and publishes its diagnostics.
func (s *Server) update(uri, text string) {
	doc, err := s.ws.Update(uri, text)
	if err != nil {
		s.log.Error("parse document", "uri", uri, "err", err)
		return
	}

	s.publish(doc)
}

// publish sends the diagnostics of doc.
func (s *Server) publish(doc *matscript.Document) {
	out := make([]Diagnostic, 0, len(doc.Diagnostics))
	for _, d := range doc.Diagnostics {
		out = append(out, toWire(d))
	}

	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: doc.URI, Diagnostics: out})
}

// document decodes document params and looks the document up. Failures
// are answered here.
func (s *Server) document(id, raw json.RawMessage) (*matscript.Document, bool) {
	var p DocumentParams
	if !s.decode(id, raw, &p) {
		return nil, false
	}

	doc, ok := s.ws.Get(p.TextDocument.URI)
	if !ok {
		s.sendResponse(id, nil)
		return nil, false
	}

	return doc, true
}

// decode unmarshals params. Request failures are answered with InvalidParams.
func (s *Server) decode(id, raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		s.log.Warn("invalid params", "err", err)
		if len(id) > 0 {
			s.sendError(id, codeInvalidParams, err.Error())
		}
		return false
	}

	return true
}

// toWire converts a diagnostic to its wire form.
func toWire(d matscript.Diagnostic) Diagnostic {
	sev := severityError
	if d.Level == matscript.LevelWarning {
		sev = severityWarning
	}

	return Diagnostic{
		Range:    d.Range,
		Severity: sev,
		Code:     d.Code,
		Source:   serverName,
		Message:  d.Message,
	}
}

// endOf returns the position after the last character of text.
func endOf(text string) matscript.Position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndexByte(text, '\n')+1:]

	return matscript.Position{Line: line, Character: utf8.RuneCountInString(last)}
}
