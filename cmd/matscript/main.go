// Command matscript checks, formats and navigates material scripts and
// serves them to editors over the Language Server Protocol.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/woozymasta/matscript"
	"github.com/woozymasta/matscript/internal/config"
)

var version = "dev"

// errFindings makes the process exit non-zero without printing anything more.
var errFindings = errors.New("findings reported")

// app holds state shared by subcommands.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
	validator *matscript.Validator

	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := a.rootCmd().ExecuteContext(ctx)
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}

	if err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "matscript",
		Short:         "Material script linter, formatter and language server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.lintCmd(),
		a.fmtCmd(),
		a.definitionCmd(),
		a.astCmd(),
		a.serveCmd(),
	)

	return root
}

// setup loads configuration and installs the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logCloser = f
		w = f
	}

	a.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(a.log)

	a.validator = matscript.NewValidator()
	return nil
}

// options returns pipeline options for the loaded configuration.
func (a *app) options() *matscript.Options {
	return a.cfg.Options(a.validator)
}
