package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gobwas/glob"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/woozymasta/matscript"
	"github.com/woozymasta/matscript/internal/workspace"
)

func (a *app) lintCmd() *cobra.Command {
	var (
		watch    bool
		jobs     int
		warnFail bool
	)

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Report diagnostics for material scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			files, err := a.collect(args)
			if err != nil {
				return err
			}
			a.log.Debug("lint", "files", len(files), "jobs", jobs)

			docs, err := a.parseAll(cmd.Context(), files, jobs)
			if err != nil {
				return err
			}

			out := termenv.NewOutput(cmd.OutOrStdout())
			failed := false
			for _, doc := range docs {
				printDiagnostics(out, doc)
				if doc.HasErrors() || (warnFail && len(doc.Diagnostics) > 0) {
					failed = true
				}
			}

			if watch {
				return a.watch(cmd.Context(), out, docs)
			}

			if failed {
				return errFindings
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check files when they change")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "files parsed in parallel")
	cmd.Flags().BoolVar(&warnFail, "strict", false, "exit non-zero on warnings too")

	return cmd
}

// collect expands paths into material script files, honoring exclude globs.
func (a *app) collect(paths []string) ([]string, error) {
	var excludes []glob.Glob
	for _, p := range a.cfg.Exclude {
		g, err := glob.Compile(filepath.ToSlash(p), '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		excludes = append(excludes, g)
	}

	excluded := func(path string) bool {
		norm := filepath.ToSlash(path)
		for _, g := range excludes {
			if g.Match(norm) {
				return true
			}
		}
		return false
	}

	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if excluded(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && a.cfg.IsScript(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return files, nil
}

// parseAll parses files concurrently. Results keep the input order.
func (a *app) parseAll(ctx context.Context, files []string, jobs int) ([]*matscript.Document, error) {
	docs := make([]*matscript.Document, len(files))
	opt := a.options()

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := matscript.LoadAndParse(matscript.PathToURI(path), nil, opt)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			doc.Path = path
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}

// watch keeps re-checking documents until ctx is cancelled.
func (a *app) watch(ctx context.Context, out *termenv.Output, docs []*matscript.Document) error {
	ws := workspace.New(a.options(), a.log)
	for _, doc := range docs {
		if _, err := ws.Load(doc.Path); err != nil {
			return err
		}
	}

	a.log.Info("watching for changes", "files", len(docs))
	return ws.Watch(ctx, func(doc *matscript.Document) {
		printDiagnostics(out, doc)
		if len(doc.Diagnostics) == 0 {
			fmt.Fprintf(out, "%s: ok\n", doc.Path)
		}
	})
}

// printDiagnostics writes one line per diagnostic, compiler style.
func printDiagnostics(w io.Writer, doc *matscript.Document) {
	out, ok := w.(*termenv.Output)
	if !ok {
		out = termenv.NewOutput(w)
	}

	for _, d := range doc.Diagnostics {
		level := out.String(string(d.Level))
		switch d.Level {
		case matscript.LevelError:
			level = level.Foreground(out.Color("1")).Bold()
		case matscript.LevelWarning:
			level = level.Foreground(out.Color("3"))
		}

		code := ""
		if d.Code != "" {
			code = " " + out.String("["+d.Code+"]").Faint().String()
		}

		fmt.Fprintf(out, "%s:%s: %s: %s%s\n", doc.Path, d.Range.Start, level, d.Message, code)
	}
}
