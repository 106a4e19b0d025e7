package workspace

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/matscript"
)

func newTestWorkspace() *Workspace {
	return New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func importsDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "..", "testdata", "imports"))
	require.NoError(t, err)

	return dir
}

func TestDefinitionAcrossImports(t *testing.T) {
	dir := importsDir(t)
	ws := newTestWorkspace()

	child, err := ws.Load(filepath.Join(dir, "child.material"))
	require.NoError(t, err)
	require.Empty(t, child.Diagnostics)

	baseURI := matscript.PathToURI(filepath.Join(dir, "base.material"))
	want := matscript.Range{
		Start: matscript.Position{Line: 0, Character: 9},
		End:   matscript.Position{Line: 0, Character: 14},
	}

	for _, pos := range []matscript.Position{
		{Line: 2, Character: 24}, // parent clause
		{Line: 0, Character: 8},  // import target
	} {
		loc, ok := ws.Definition(child.URI, pos)
		require.True(t, ok, pos)
		assert.Equal(t, baseURI, loc.URI)
		assert.Equal(t, want, loc.Range)
	}

	// The imported document is registered as a side effect.
	_, ok := ws.Get(baseURI)
	assert.True(t, ok)
	assert.Len(t, ws.Documents(), 2)
}

func TestDefinitionLocalAndMiss(t *testing.T) {
	dir := importsDir(t)
	ws := newTestWorkspace()

	// Unknown documents are loaded on demand.
	uri := matscript.PathToURI(filepath.Join(dir, "child.material"))
	loc, ok := ws.Definition(uri, matscript.Position{Line: 2, Character: 12})
	require.True(t, ok)
	assert.Equal(t, uri, loc.URI)
	assert.Equal(t, 2, loc.Range.Start.Line)

	pos := matscript.Position{Line: 8, Character: 14}
	loc, ok = ws.Definition(uri, pos)
	assert.False(t, ok)
	assert.Equal(t, matscript.Range{Start: pos, End: pos}, loc.Range)

	_, ok = ws.Definition("file:///does/not/exist.material", pos)
	assert.False(t, ok)
}

func TestImportCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.material")
	b := filepath.Join(dir, "b.material")
	require.NoError(t, os.WriteFile(a, []byte("import * from b.material\n\nmaterial A : Missing\n{\n}\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("import * from a.material\n"), 0o600))

	ws := newTestWorkspace()
	doc, err := ws.Load(a)
	require.NoError(t, err)

	_, ok := ws.Definition(doc.URI, matscript.Position{Line: 2, Character: 15})
	assert.False(t, ok)
}

func TestOpenOwnsDocument(t *testing.T) {
	dir := importsDir(t)
	path := filepath.Join(dir, "base.material")
	uri := matscript.PathToURI(path)
	ws := newTestWorkspace()

	doc, err := ws.Open(uri, "material Edited\n{\n}\n")
	require.NoError(t, err)
	assert.Equal(t, "Edited", doc.Script.Materials[0].Name.Literal)

	// Disk content does not replace the editor buffer.
	loaded, err := ws.Load(path)
	require.NoError(t, err)
	assert.Same(t, doc, loaded)

	doc, err = ws.Update(uri, "material Again\n{\n}\n")
	require.NoError(t, err)
	got, ok := ws.Get(uri)
	require.True(t, ok)
	assert.Same(t, doc, got)

	ws.Close(uri)
	_, ok = ws.Get(uri)
	assert.False(t, ok)

	loaded, err = ws.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Stone", loaded.Script.Materials[0].Name.Literal)
}

func TestLoadMissing(t *testing.T) {
	_, err := newTestWorkspace().Load(filepath.Join(t.TempDir(), "none.material"))
	assert.ErrorIs(t, err, matscript.ErrFile)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.material")
	require.NoError(t, os.WriteFile(path, []byte("material A\n{\n}\n"), 0o600))

	ws := newTestWorkspace()
	_, err := ws.Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *matscript.Document, 16)
	done := make(chan error, 1)
	go func() {
		done <- ws.Watch(ctx, func(doc *matscript.Document) {
			select {
			case changed <- doc:
			default:
			}
		})
	}()

	// A truncating write may be observed before the new content lands.
	reloaded := func(doc *matscript.Document) bool {
		return len(doc.Script.Materials) == 1 && doc.Script.Materials[0].Name.Literal == "B"
	}

	deadline := time.After(5 * time.Second)
	for ok := false; !ok; {
		require.NoError(t, os.WriteFile(path, []byte("material B\n{\n}\n"), 0o600))
		select {
		case doc := <-changed:
			ok = reloaded(doc)
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
