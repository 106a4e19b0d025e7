// Package lsp serves material script language features over the Language
// Server Protocol on a framed byte stream.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/woozymasta/matscript"
	"github.com/woozymasta/matscript/internal/workspace"
)

const serverName = "matscript"

// Server answers editor requests against a workspace.
type Server struct {
	ws       *workspace.Workspace
	format   *matscript.FormatOptions
	log      *slog.Logger
	out      io.Writer
	version  string
	wmu      sync.Mutex // Serializes writes to out
	shutdown bool
}

// New creates a server. A nil logger falls back to slog.Default.
func New(ws *workspace.Workspace, format *matscript.FormatOptions, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{ws: ws, format: format, version: version, log: logger}
}

// Serve reads requests from r and writes responses and notifications to w
// until exit, end of input or ctx cancellation.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = w
	in := bufio.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		msg, err := readMsg(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			s.log.Warn("malformed message", "err", err)
			s.sendError(nil, codeParseError, "malformed JSON")
			continue
		}

		if s.dispatch(req) {
			return nil
		}
	}
}

// dispatch routes one request. It reports true on exit.
func (s *Server) dispatch(req Request) bool {
	s.log.Debug("request", "method", req.Method)

	switch req.Method {
	// Lifecycle
	case "initialize":
		s.onInitialize(req.ID)
	case "initialized":
		// no-op
	case "shutdown":
		s.shutdown = true
		s.sendResponse(req.ID, nil)
	case "exit":
		if !s.shutdown {
			s.log.Warn("exit without shutdown")
		}
		return true

	// Text sync
	case "textDocument/didOpen":
		s.onDidOpen(req.Params)
	case "textDocument/didChange":
		s.onDidChange(req.Params)
	case "textDocument/didSave":
		s.onDidSave(req.Params)
	case "textDocument/didClose":
		s.onDidClose(req.Params)

	// Language features
	case "textDocument/definition":
		s.onDefinition(req.ID, req.Params)
	case "textDocument/documentSymbol":
		s.onDocumentSymbol(req.ID, req.Params)
	case "textDocument/formatting":
		s.onFormatting(req.ID, req.Params)
	case "textDocument/semanticTokens/full":
		s.onSemanticTokensFull(req.ID, req.Params)
	case "textDocument/documentColor":
		s.onDocumentColor(req.ID, req.Params)
	case "textDocument/colorPresentation":
		s.onColorPresentation(req.ID, req.Params)

	default:
		// Requests get MethodNotFound; notifications are ignored.
		if len(req.ID) > 0 {
			s.sendError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
		}
	}

	return false
}

// sendResponse writes a result. A nil result is sent as JSON null.
func (s *Server) sendResponse(id json.RawMessage, result any) {
	if result == nil {
		result = json.RawMessage("null")
	}
	s.write(Response{JSONRPC: "2.0", ID: id, Result: result})
}

// sendError writes an error response.
func (s *Server) sendError(id json.RawMessage, code int, msg string) {
	s.write(Response{JSONRPC: "2.0", ID: id, Error: &ResponseError{Code: code, Message: msg}})
}

// notify writes a notification.
func (s *Server) notify(method string, params any) {
	s.write(Notification{JSONRPC: "2.0", Method: method, Params: params})
}

func (s *Server) write(v any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := writeMsg(s.out, v); err != nil {
		s.log.Error("write message", "err", err)
	}
}
