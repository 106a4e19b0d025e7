package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/matscript"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := (&app{}).rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	return dir
}

func TestParsePosition(t *testing.T) {
	pos, err := parsePosition("3:14")
	require.NoError(t, err)
	assert.Equal(t, matscript.Position{Line: 2, Character: 13}, pos)

	for _, bad := range []string{"", "3", "0:1", "1:0", "a:1", "1:b"} {
		_, err := parsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestLint(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"good.material": "material A\n{\n    receive_shadows on\n}\n",
		"bad.material":  "material A\n{\n    receive_shadows maybe\n}\n",
		"notes.txt":     "not a script",
	})

	out, err := execute(t, "lint", dir)
	require.ErrorIs(t, err, errFindings)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, filepath.Join(dir, "bad.material")+
		":3:21: error: unexpected 'maybe' in 'receive_shadows' parameter, expected off, on [invalid_params]", lines[0])

	out, err = execute(t, "lint", filepath.Join(dir, "good.material"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLintExclude(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"bad.material": "material A\n{\n    receive_shadows maybe\n}\n",
	})
	cfg := filepath.Join(t.TempDir(), "matscript.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("exclude: [\"**/bad.material\"]\n"), 0o600))

	out, err := execute(t, "--config", cfg, "lint", dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFmt(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"a.material": "material A\n{\nlighting off\n}\n",
		"b.material": "material B\n{\n}\n",
	})

	out, err := execute(t, "fmt", "-l", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.material")+"\n", out)

	out, err = execute(t, "fmt", filepath.Join(dir, "a.material"))
	require.NoError(t, err)
	assert.Equal(t, "material A\n{\n    lighting off\n}\n", out)

	_, err = execute(t, "fmt", "-w", dir)
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "a.material"))
	require.NoError(t, err)
	assert.Equal(t, "material A\n{\n    lighting off\n}\n", string(b))
}

func TestDefinition(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"a.material": "material A\n{\n}\n\nmaterial B : A\n{\n}\n",
	})
	path := filepath.Join(dir, "a.material")

	out, err := execute(t, "definition", path, "5:14")
	require.NoError(t, err)
	assert.Equal(t, path+":1:10\n", out)

	_, err = execute(t, "definition", path, "2:1")
	assert.Error(t, err)
}

func TestAST(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"a.material": "material A\n{\n}\n",
	})
	path := filepath.Join(dir, "a.material")

	out, err := execute(t, "ast", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"materials"`)

	out, err = execute(t, "ast", "-f", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "materials:")

	_, err = execute(t, "ast", "-f", "xml", path)
	assert.Error(t, err)
}
