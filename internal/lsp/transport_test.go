package lsp

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteMsg(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMsg(&buf, map[string]int{"a": 1}))
	require.NoError(t, writeMsg(&buf, []string{"é"}))
	assert.True(t, strings.HasPrefix(buf.String(), "Content-Length: 7\r\n\r\n{\"a\":1}"))

	r := bufio.NewReader(&buf)
	msg, err := readMsg(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(msg))

	msg, err = readMsg(r)
	require.NoError(t, err)
	assert.Equal(t, `["é"]`, string(msg))

	_, err = readMsg(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMsgHeaders(t *testing.T) {
	in := "content-length: 2\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n{}"
	msg, err := readMsg(bufio.NewReader(strings.NewReader(in)))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(msg))
}

func TestReadMsgErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no length", "Content-Type: x\r\n\r\n{}"},
		{"bad length", "Content-Length: x\r\n\r\n{}"},
		{"negative length", "Content-Length: -1\r\n\r\n"},
		{"short body", "Content-Length: 10\r\n\r\n{}"},
		{"truncated header", "Content-Length: 2"},
		{"missing body separator", "Content-Length: 2\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readMsg(bufio.NewReader(strings.NewReader(tt.in)))
			require.Error(t, err)
			assert.NotErrorIs(t, err, io.EOF)
		})
	}

	_, err := readMsg(bufio.NewReader(strings.NewReader("Content-Type: x\r\n\r\n")))
	assert.ErrorIs(t, err, errNoContentLength)
}
