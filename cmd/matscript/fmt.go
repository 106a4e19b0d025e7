package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/woozymasta/matscript"
)

func (a *app) fmtCmd() *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [paths...]",
		Short: "Reformat material scripts",
		Long: "Reformat material scripts. Without -w the result is printed to stdout.\n" +
			"Files with scanner errors are left untouched.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.collect(args)
			if err != nil {
				return err
			}

			opt := a.cfg.FormatOptions()
			out := cmd.OutOrStdout()

			for _, path := range files {
				if write {
					changed, err := matscript.FormatFile(path, opt)
					if err != nil {
						return fmt.Errorf("format %s: %w", path, err)
					}
					if changed {
						a.log.Debug("formatted", "path", path)
						if list {
							fmt.Fprintln(out, path)
						}
					}
					continue
				}

				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				formatted, err := matscript.Format(src, opt)
				if err != nil {
					return fmt.Errorf("format %s: %w", path, err)
				}

				if list {
					if !bytes.Equal(src, formatted) {
						fmt.Fprintln(out, path)
					}
					continue
				}
				if _, err := out.Write(formatted); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to source files")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list files whose formatting differs")

	return cmd
}
