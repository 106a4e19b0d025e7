// Package config loads matscript tool settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/matscript"
)

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// DefaultExtensions are the file extensions treated as material scripts.
var DefaultExtensions = []string{".material", ".program", ".compositor", ".os"}

// Config holds the settings shared by the CLI, the workspace and the LSP server.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// LogFile receives logs instead of stderr when set.
	LogFile string `toml:"log_file" yaml:"log_file"`
	// ResourceRoots are searched for textures and program sources.
	ResourceRoots []string `toml:"resource_roots" yaml:"resource_roots"`
	// Exclude holds glob patterns of resources and scripts to skip.
	Exclude []string `toml:"exclude" yaml:"exclude"`
	// Extensions lists material script file extensions.
	Extensions []string `toml:"extensions" yaml:"extensions"`
	// TextureExtensions overrides the accepted texture extensions.
	TextureExtensions []string `toml:"texture_extensions" yaml:"texture_extensions"`
	// ValidateParams enables parameter line validation.
	ValidateParams bool `toml:"validate_params" yaml:"validate_params"`
	// CheckResources enables texture and program source checks.
	CheckResources bool `toml:"check_resources" yaml:"check_resources"`
	// Indent is the formatter indentation.
	Indent string `toml:"indent" yaml:"indent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		Extensions:     slices.Clone(DefaultExtensions),
		ValidateParams: true,
		Indent:         "    ",
	}
}

// Load reads a configuration file. An empty path yields Default. Keys
// missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize expands home directories and checks values.
func (c *Config) normalize() error {
	var err error
	if c.LogFile, err = homedir.Expand(c.LogFile); err != nil {
		return fmt.Errorf("expand log_file: %w", err)
	}

	for i, root := range c.ResourceRoots {
		if c.ResourceRoots[i], err = homedir.Expand(root); err != nil {
			return fmt.Errorf("expand resource root %q: %w", root, err)
		}
	}

	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(DefaultExtensions)
	}

	return c.Validate()
}

// Validate checks log level and exclude patterns.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	for _, p := range c.Exclude {
		if err := matscript.ValidateGlob(p); err != nil {
			return fmt.Errorf("exclude pattern %q: %w", p, err)
		}
	}

	return nil
}

// ParseLevel parses a log level name. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}

	return lvl, nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// IsScript reports whether path has a material script extension.
func (c *Config) IsScript(path string) bool {
	return slices.Contains(c.Extensions, strings.ToLower(filepath.Ext(path)))
}

// FormatOptions returns formatter options.
func (c *Config) FormatOptions() *matscript.FormatOptions {
	return &matscript.FormatOptions{Indent: c.Indent}
}

// Options returns pipeline options using validator v.
func (c *Config) Options(v *matscript.Validator) *matscript.Options {
	opt := &matscript.Options{
		Validator:               v,
		DisableParamsValidation: !c.ValidateParams,
	}

	if c.CheckResources {
		opt.Resources = &matscript.ResourceOptions{
			Roots:      c.ResourceRoots,
			Exclude:    c.Exclude,
			Extensions: c.TextureExtensions,
		}
	}

	return opt
}
