package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woozymasta/matscript"
	"github.com/woozymasta/matscript/internal/workspace"
)

func (a *app) definitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "definition <file> <line:column>",
		Short: "Print where the name at a position is declared",
		Long: "Print where the name at a position is declared. Line and column are\n" +
			"1-based; imported scripts are searched too.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}

			ws := workspace.New(a.options(), a.log)
			doc, err := ws.Load(args[0])
			if err != nil {
				return err
			}

			loc, ok := ws.Definition(doc.URI, pos)
			if !ok {
				return fmt.Errorf("no definition at %s:%s", args[0], pos)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", matscript.URIToPath(loc.URI), loc.Range.Start)
			return nil
		},
	}
}

// parsePosition parses a 1-based "line:column" pair.
func parsePosition(s string) (matscript.Position, error) {
	line, col, ok := strings.Cut(s, ":")
	if !ok {
		return matscript.Position{}, fmt.Errorf("position %q: want line:column", s)
	}

	l, err := strconv.Atoi(line)
	if err != nil || l < 1 {
		return matscript.Position{}, fmt.Errorf("position %q: bad line", s)
	}
	c, err := strconv.Atoi(col)
	if err != nil || c < 1 {
		return matscript.Position{}, fmt.Errorf("position %q: bad column", s)
	}

	return matscript.Position{Line: l - 1, Character: c - 1}, nil
}
