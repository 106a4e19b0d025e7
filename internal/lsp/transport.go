package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// errNoContentLength is returned for a header block without Content-Length.
var errNoContentLength = errors.New("missing Content-Length header")

// readMsg reads one Content-Length framed message.
func readMsg(r *bufio.Reader) ([]byte, error) {
	contentLen := -1
	for started := false; ; started = true {
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read header: %w", err)
			}
			if !started && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", io.ErrUnexpectedEOF)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "content-length") {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad Content-Length %q", val)
		}
		contentLen = n
	}

	if contentLen < 0 {
		return nil, errNoContentLength
	}

	buf := make([]byte, contentLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return buf, nil
}

// writeMsg writes v as one Content-Length framed JSON message.
func writeMsg(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(body))
	b.Write(body)
	_, err = w.Write(b.Bytes())

	return err
}
