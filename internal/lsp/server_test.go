package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/matscript"
	"github.com/woozymasta/matscript/internal/workspace"
)

const testURI = "file:///virtual/a.material"

const testText = "material A : B\n{\nlighting maybe\n}\n\n" +
	"material B\n{\n    technique\n    {\n        pass\n        {\n            ambient 1 0 0\n        }\n    }\n}\n"

// message is any server output.
type message struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *ResponseError  `json:"error"`
	Params json.RawMessage `json:"params"`
}

type session struct {
	t  *testing.T
	in bytes.Buffer
	id int
}

func (s *session) request(method string, params any) string {
	s.id++
	id, _ := json.Marshal(s.id)
	s.send(map[string]any{"jsonrpc": "2.0", "id": json.RawMessage(id), "method": method, "params": params})

	return string(id)
}

func (s *session) notify(method string, params any) {
	s.send(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *session) send(v any) {
	require.NoError(s.t, writeMsg(&s.in, v))
}

// run serves the queued input and returns every output message.
func (s *session) run() []message {
	var out bytes.Buffer
	ws := workspace.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := New(ws, nil, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(s.t, srv.Serve(context.Background(), &s.in, &out))

	var msgs []message
	r := bufio.NewReader(&out)
	for {
		raw, err := readMsg(r)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(s.t, err)

		var m message
		require.NoError(s.t, json.Unmarshal(raw, &m))
		msgs = append(msgs, m)
	}
}

func docParams() map[string]any {
	return map[string]any{"textDocument": map[string]any{"uri": testURI}}
}

func posParams(line, char int) map[string]any {
	p := docParams()
	p["position"] = map[string]int{"line": line, "character": char}
	return p
}

func TestServerSession(t *testing.T) {
	s := &session{t: t}

	initID := s.request("initialize", map[string]any{})
	s.notify("initialized", map[string]any{})
	require.NoError(t, writeMsgRaw(&s.in, "{bad"))
	s.notify("textDocument/didOpen", map[string]any{"textDocument": map[string]any{
		"uri": testURI, "languageId": "material", "version": 1, "text": testText,
	}})
	defID := s.request("textDocument/definition", posParams(0, 13))
	symID := s.request("textDocument/documentSymbol", docParams())
	fmtID := s.request("textDocument/formatting", docParams())
	semID := s.request("textDocument/semanticTokens/full", docParams())
	colorID := s.request("textDocument/documentColor", docParams())
	presID := s.request("textDocument/colorPresentation", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"color":        map[string]float64{"red": 0.5, "green": 0.25, "blue": 1, "alpha": 1},
		"range":        matscript.Range{},
	})
	unknownID := s.request("workspace/unknown", nil)
	s.notify("$/cancelRequest", map[string]any{"id": 1})
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []map[string]string{{"text": "material A\n{\n}\n"}},
	})
	s.notify("textDocument/didClose", docParams())
	closedID := s.request("textDocument/definition", posParams(0, 9))
	shutdownID := s.request("shutdown", nil)
	s.notify("exit", nil)
	s.notify("textDocument/didOpen", map[string]any{})

	msgs := s.run()

	responses := make(map[string]message)
	var notes []message
	var parseErrors int
	for _, m := range msgs {
		switch {
		case m.Method != "":
			notes = append(notes, m)
		case len(m.ID) == 0:
			require.NotNil(t, m.Error)
			assert.Equal(t, codeParseError, m.Error.Code)
			parseErrors++
		default:
			responses[string(m.ID)] = m
		}
	}
	assert.Equal(t, 1, parseErrors)

	var init InitializeResult
	require.NoError(t, json.Unmarshal(responses[initID].Result, &init))
	assert.Equal(t, "matscript", init.ServerInfo.Name)
	assert.Equal(t, "test", init.ServerInfo.Version)
	assert.True(t, init.Capabilities.DefinitionProvider)
	assert.True(t, init.Capabilities.ColorProvider)
	require.NotNil(t, init.Capabilities.SemanticTokensProvider)
	assert.Equal(t, matscript.SemanticTokenTypes, init.Capabilities.SemanticTokensProvider.Legend.TokenTypes)

	// didOpen, didChange and didClose each publish.
	require.Len(t, notes, 3)
	var published []PublishDiagnosticsParams
	for _, n := range notes {
		assert.Equal(t, "textDocument/publishDiagnostics", n.Method)
		var p PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(n.Params, &p))
		assert.Equal(t, testURI, p.URI)
		published = append(published, p)
	}
	require.Len(t, published[0].Diagnostics, 1)
	assert.Equal(t, severityError, published[0].Diagnostics[0].Severity)
	assert.Equal(t, "matscript", published[0].Diagnostics[0].Source)
	assert.Equal(t, matscript.CodeInvalidParams, published[0].Diagnostics[0].Code)
	assert.Equal(t, 2, published[0].Diagnostics[0].Range.Start.Line)
	assert.Empty(t, published[1].Diagnostics)
	assert.Empty(t, published[2].Diagnostics)

	var loc matscript.Location
	require.NoError(t, json.Unmarshal(responses[defID].Result, &loc))
	assert.Equal(t, testURI, loc.URI)
	assert.Equal(t, matscript.Position{Line: 5, Character: 9}, loc.Range.Start)

	var syms []matscript.Symbol
	require.NoError(t, json.Unmarshal(responses[symID].Result, &syms))
	require.Len(t, syms, 2)
	assert.Equal(t, "A", syms[0].Name)
	assert.Equal(t, "B", syms[1].Name)

	var edits []TextEdit
	require.NoError(t, json.Unmarshal(responses[fmtID].Result, &edits))
	require.Len(t, edits, 1)
	want, err := matscript.Format([]byte(testText), nil)
	require.NoError(t, err)
	assert.Equal(t, string(want), edits[0].NewText)
	assert.Equal(t, matscript.Position{Line: 15, Character: 0}, edits[0].Range.End)

	var sem SemanticTokens
	require.NoError(t, json.Unmarshal(responses[semID].Result, &sem))
	assert.NotEmpty(t, sem.Data)
	assert.Zero(t, len(sem.Data)%5)

	var colors []matscript.ColorInfo
	require.NoError(t, json.Unmarshal(responses[colorID].Result, &colors))
	require.Len(t, colors, 1)
	assert.Equal(t, matscript.Color{R: 1, A: 1}, colors[0].Color)

	var pres []ColorPresentation
	require.NoError(t, json.Unmarshal(responses[presID].Result, &pres))
	require.Len(t, pres, 1)
	assert.Equal(t, "0.5 0.25 1", pres[0].Label)

	require.NotNil(t, responses[unknownID].Error)
	assert.Equal(t, codeMethodNotFound, responses[unknownID].Error.Code)

	assert.Equal(t, "null", string(responses[closedID].Result))
	assert.Equal(t, "null", string(responses[shutdownID].Result))
}

func TestServerInvalidParams(t *testing.T) {
	s := &session{t: t}
	id := s.request("textDocument/definition", "not an object")
	s.request("textDocument/documentSymbol", docParams())

	msgs := s.run()
	require.Len(t, msgs, 2)

	assert.Equal(t, id, string(msgs[0].ID))
	require.NotNil(t, msgs[0].Error)
	assert.Equal(t, codeInvalidParams, msgs[0].Error.Code)

	// Unknown documents answer null.
	assert.Equal(t, "null", string(msgs[1].Result))
}

func TestServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := New(workspace.New(nil, nil), nil, "", nil)
	var out bytes.Buffer
	assert.NoError(t, srv.Serve(ctx, &bytes.Buffer{}, &out))
	assert.Zero(t, out.Len())
}

func TestEndOf(t *testing.T) {
	assert.Equal(t, matscript.Position{}, endOf(""))
	assert.Equal(t, matscript.Position{Line: 0, Character: 3}, endOf("abc"))
	assert.Equal(t, matscript.Position{Line: 2, Character: 1}, endOf("a\nbc\né"))
}

// writeMsgRaw frames a body verbatim.
func writeMsgRaw(w io.Writer, body string) error {
	_, err := io.WriteString(w, "Content-Length: "+strconv.Itoa(len(body))+"\r\n\r\n"+body)
	return err
}
