package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/woozymasta/matscript/internal/lsp"
	"github.com/woozymasta/matscript/internal/workspace"
)

func (a *app) serveCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws := workspace.New(a.options(), a.log)

			if watch {
				go func() {
					if err := ws.Watch(ctx, nil); err != nil {
						a.log.Error("watch", "err", err)
					}
				}()
			}

			a.log.Info("language server started", "version", version)
			return lsp.New(ws, a.cfg.FormatOptions(), version, a.log).Serve(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload imported scripts when they change on disk")

	return cmd
}
