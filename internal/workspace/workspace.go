// Package workspace keeps parsed material scripts of an editing session and
// resolves definitions across import statements.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/woozymasta/matscript"
)

// Workspace is a registry of parsed documents keyed by URI. It is safe for
// concurrent use.
type Workspace struct {
	log  *slog.Logger
	opt  *matscript.Options
	docs map[string]*matscript.Document
	open map[string]bool // Documents owned by the editor
	mu   sync.RWMutex
}

// New creates an empty workspace. opt is passed to every parse; a nil
// logger falls back to slog.Default.
func New(opt *matscript.Options, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}

	return &Workspace{
		log:  logger,
		opt:  opt,
		docs: make(map[string]*matscript.Document),
		open: make(map[string]bool),
	}
}

// Open parses text as the editor content of uri.
func (w *Workspace) Open(uri, text string) (*matscript.Document, error) {
	doc, err := matscript.LoadAndParse(uri, &text, w.opt)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.docs[uri] = doc
	w.open[uri] = true
	w.mu.Unlock()

	w.log.Debug("document opened", "uri", uri, "diagnostics", len(doc.Diagnostics))
	return doc, nil
}

// Update replaces the content of an open document.
func (w *Workspace) Update(uri, text string) (*matscript.Document, error) {
	return w.Open(uri, text)
}

// Close forgets a document.
func (w *Workspace) Close(uri string) {
	w.mu.Lock()
	delete(w.docs, uri)
	delete(w.open, uri)
	w.mu.Unlock()

	w.log.Debug("document closed", "uri", uri)
}

// Get returns a registered document.
func (w *Workspace) Get(uri string) (*matscript.Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc, ok := w.docs[uri]
	return doc, ok
}

// Documents returns registered documents ordered by URI.
func (w *Workspace) Documents() []*matscript.Document {
	w.mu.RLock()
	out := make([]*matscript.Document, 0, len(w.docs))
	for _, doc := range w.docs {
		out = append(out, doc)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// Load parses a file from disk and registers it. Documents open in the
// editor are returned as they are.
func (w *Workspace) Load(path string) (*matscript.Document, error) {
	uri := matscript.PathToURI(path)

	w.mu.RLock()
	doc, open := w.docs[uri], w.open[uri]
	w.mu.RUnlock()
	if open {
		return doc, nil
	}

	doc, err := matscript.LoadAndParse(uri, nil, w.opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	w.mu.Lock()
	if !w.open[uri] {
		w.docs[uri] = doc
	}
	w.mu.Unlock()

	w.log.Debug("document loaded", "path", path, "diagnostics", len(doc.Diagnostics))
	return doc, nil
}

// Definition resolves the reference at pos in document uri. Names not
// declared locally are looked up in imported scripts. The boolean is false
// when nothing resolves; the location then points at pos.
func (w *Workspace) Definition(uri string, pos matscript.Position) (matscript.Location, bool) {
	miss := matscript.Location{URI: uri, Range: matscript.Range{Start: pos, End: pos}}

	doc, ok := w.Get(uri)
	if !ok {
		var err error
		if doc, err = w.Load(matscript.URIToPath(uri)); err != nil {
			w.log.Debug("definition source unavailable", "uri", uri, "err", err)
			return miss, false
		}
	}

	key, _, ok := doc.Reference(pos)
	if !ok {
		return miss, false
	}

	if tok, ok := doc.Declarations.Lookup(key); ok {
		return matscript.Location{URI: doc.URI, Range: tok.Range()}, true
	}

	if loc, ok := w.lookupImported(doc, key, map[string]bool{doc.URI: true}); ok {
		return loc, true
	}

	return miss, false
}

// lookupImported searches key in the scripts imported by doc, depth first.
func (w *Workspace) lookupImported(doc *matscript.Document, key matscript.DeclKey, seen map[string]bool) (matscript.Location, bool) {
	for _, imp := range doc.Script.Imports {
		if imp.Target.Kind != matscript.TokenAsterisk && imp.Target.Literal != key.Name {
			continue
		}

		path := imp.Source.Literal
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(doc.Path), path)
		}

		uri := matscript.PathToURI(path)
		if seen[uri] {
			continue
		}
		seen[uri] = true

		dep, ok := w.Get(uri)
		if !ok {
			var err error
			if dep, err = w.Load(path); err != nil {
				w.log.Warn("import not loaded", "from", doc.URI, "path", path, "err", err)
				continue
			}
		}

		if tok, ok := dep.Declarations.Lookup(key); ok {
			return matscript.Location{URI: dep.URI, Range: tok.Range()}, true
		}

		if loc, ok := w.lookupImported(dep, key, seen); ok {
			return loc, true
		}
	}

	return matscript.Location{}, false
}

// watchRescan is how often Watch picks up directories of newly loaded documents.
const watchRescan = 2 * time.Second

// Watch re-parses disk-backed documents when their files change and passes
// each new document to onChange. Editor-owned documents are left alone.
// It blocks until ctx is done.
func (w *Workspace) Watch(ctx context.Context, onChange func(*matscript.Document)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	w.watchDirs(watcher, watched)

	ticker := time.NewTicker(watchRescan)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			w.watchDirs(watcher, watched)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			uri := matscript.PathToURI(event.Name)
			w.mu.RLock()
			_, known := w.docs[uri]
			open := w.open[uri]
			w.mu.RUnlock()
			if !known || open {
				continue
			}

			doc, err := w.Load(event.Name)
			if err != nil {
				w.log.Warn("reload failed", "path", event.Name, "err", err)
				continue
			}

			w.log.Info("document reloaded", "path", event.Name, "diagnostics", len(doc.Diagnostics))
			if onChange != nil {
				onChange(doc)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// watchDirs adds the directories of all disk-backed documents to watcher.
func (w *Workspace) watchDirs(watcher *fsnotify.Watcher, watched map[string]bool) {
	for _, doc := range w.Documents() {
		if doc.Path == "" {
			continue
		}

		dir := filepath.Dir(doc.Path)
		if watched[dir] {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			w.log.Warn("watch directory", "dir", dir, "err", err)
			continue
		}
		watched[dir] = true
		w.log.Debug("watching directory", "dir", dir)
	}
}
