package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/matscript"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.True(t, cfg.ValidateParams)
	assert.False(t, cfg.CheckResources)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"tool.toml", `
log_level = "debug"
resource_roots = ["/srv/media"]
exclude = ["generated/*"]
extensions = ["material", ".PROGRAM"]
texture_extensions = [".png"]
check_resources = true
validate_params = false
indent = "  "
`},
		{"tool.yaml", `
log_level: debug
resource_roots: [/srv/media]
exclude: ["generated/*"]
extensions: [material, .PROGRAM]
texture_extensions: [.png]
check_resources: true
validate_params: false
indent: "  "
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.name, tt.body))
			require.NoError(t, err)

			assert.Equal(t, slog.LevelDebug, cfg.Level())
			assert.Equal(t, []string{"/srv/media"}, cfg.ResourceRoots)
			assert.Equal(t, []string{".material", ".program"}, cfg.Extensions)
			assert.False(t, cfg.ValidateParams)
			assert.True(t, cfg.CheckResources)
			assert.Equal(t, "  ", cfg.FormatOptions().Indent)

			assert.True(t, cfg.IsScript("a/b.Material"))
			assert.False(t, cfg.IsScript("a/b.compositor"))

			v := matscript.NewValidator()
			opt := cfg.Options(v)
			assert.Same(t, v, opt.Validator)
			assert.True(t, opt.DisableParamsValidation)
			require.NotNil(t, opt.Resources)
			assert.Equal(t, []string{"/srv/media"}, opt.Resources.Roots)
			assert.Equal(t, []string{"generated/*"}, opt.Resources.Exclude)
			assert.Equal(t, []string{".png"}, opt.Resources.Extensions)
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "tool.yml", "log_level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.True(t, cfg.ValidateParams)
	assert.Nil(t, cfg.Options(nil).Resources)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "tool.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeConfig(t, "tool.toml", "log_level = \"loud\"\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tool.toml", "exclude = [\"gen/[a\"]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tool.yaml", "log_level: [\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	cfg, err := Load(writeConfig(t, "tool.toml", "resource_roots = [\"~/media\"]\nlog_file = \"~/matscript.log\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "media")}, cfg.ResourceRoots)
	assert.Equal(t, filepath.Join(home, "matscript.log"), cfg.LogFile)
}
