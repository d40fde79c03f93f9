package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/keepsake/internal/paths"
	"github.com/mesh-intelligence/keepsake/pkg/sqlite"
)

type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	e := env{configDir: t.TempDir(), dataDir: t.TempDir()}
	t.Setenv(paths.EnvConfigDir, e.configDir)
	t.Setenv(paths.EnvDataDir, e.dataDir)
	return e
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (e env) document(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dataDir, "settings.json"))
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	out, _, code := run(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "keepsake v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)

	out, _, code := run(t, "init")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Keepsake initialized successfully")
	assert.FileExists(t, filepath.Join(e.configDir, "config.yaml"))
	assert.Equal(t, "{}", e.document(t))

	config, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "backend: file")
	assert.Contains(t, string(config), "file: settings.json")

	// Idempotent: nothing is rewritten.
	out, _, code = run(t, "init")
	require.Equal(t, exitSuccess, code)
	assert.NotContains(t, out, "Wrote")
	assert.NotContains(t, out, "Created")
}

func TestSetAndGet(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, "settings.json"), []byte(`{"App":{"Other":1}}`), 0o644))

	_, _, code := run(t, "set", "App:Window:Width", "800")
	require.Equal(t, exitSuccess, code)
	_, _, code = run(t, "set", "App:Window:Title", "main window")
	require.Equal(t, exitSuccess, code)
	_, _, code = run(t, "set", "App:Window:Code", "42", "--string")
	require.Equal(t, exitSuccess, code)

	doc := e.document(t)
	assert.Equal(t, int64(1), gjson.Get(doc, "App.Other").Int())
	assert.Equal(t, int64(800), gjson.Get(doc, "App.Window.Width").Int())
	assert.Equal(t, "main window", gjson.Get(doc, "App.Window.Title").String())
	assert.Equal(t, gjson.String, gjson.Get(doc, "App.Window.Code").Type)

	out, _, code := run(t, "get", "App:Window")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, int64(800), gjson.Get(out, "Width").Int())

	out, _, code = run(t, "get", "App:Window:Title", "--raw")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "main window\n", out)
}

func TestGet_Formats(t *testing.T) {
	newEnv(t)
	_, _, code := run(t, "set", "App", `{"Width":800,"Ratio":1.5,"Tags":["a"],"None":null}`)
	require.Equal(t, exitSuccess, code)

	out, _, code := run(t, "get", "App", "--format", "yaml")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Width: 800\n")
	assert.Contains(t, out, "Ratio: 1.5\n")

	out, _, code = run(t, "get", "App", "--format", "toml")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Width = 800")
	assert.NotContains(t, out, "None")

	_, errOut, code := run(t, "get", "App:Width", "--format", "toml")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "toml output needs an object")

	_, _, code = run(t, "get", "--format", "xml")
	assert.Equal(t, exitUserError, code)
}

func TestUnsetAndSections(t *testing.T) {
	newEnv(t)
	_, _, code := run(t, "set", "App:Window", `{"Width":800,"Height":600}`)
	require.Equal(t, exitSuccess, code)
	_, _, code = run(t, "set", "Theme", `"dark"`)
	require.Equal(t, exitSuccess, code)

	out, _, code := run(t, "sections")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, []string{"App:Window:Height", "App:Window:Width", "Theme"}, strings.Fields(out))

	out, _, code = run(t, "sections", "App")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, []string{"App:Window:Height", "App:Window:Width"}, strings.Fields(out))

	out, _, code = run(t, "sections", "App:Window:Width")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, []string{"App:Window:Width"}, strings.Fields(out))

	_, _, code = run(t, "unset", "App:Window:Height")
	require.Equal(t, exitSuccess, code)
	_, _, code = run(t, "unset", "App:Window:Height")
	assert.Equal(t, exitUserError, code)

	out, _, code = run(t, "sections")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, []string{"App:Window:Width", "Theme"}, strings.Fields(out))
}

func TestUserErrors(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := run(t, "get")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "settings file does not exist")

	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, "settings.json"), []byte(`[1]`), 0o644))
	_, errOut, code = run(t, "get")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "not a JSON object")

	_, _, code = run(t, "set", "App::Width", "1")
	assert.Equal(t, exitUserError, code)

	_, _, code = run(t, "get", "Missing", "--file", "other.json")
	assert.Equal(t, exitUserError, code)

	_, _, code = run(t, "history")
	assert.Equal(t, exitUserError, code, "history needs the sqlite backend")

	_, _, code = run(t, "get", "--backend", "etcd")
	assert.Equal(t, exitUserError, code)

	_, _, code = run(t, "nope")
	assert.Equal(t, exitUserError, code)
}

func TestConfigFile(t *testing.T) {
	e := newEnv(t)
	custom := t.TempDir()
	config := "data_dir: " + custom + "\nfile: prefs.json\nformat: yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(config), 0o644))

	_, _, code := run(t, "set", "Level", "3")
	require.Equal(t, exitSuccess, code)
	assert.FileExists(t, filepath.Join(custom, "prefs.json"))

	out, _, code := run(t, "get")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "Level: 3\n", out)

	// Flags win over the config file.
	out, _, code = run(t, "get", "--format", "json")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, int64(3), gjson.Get(out, "Level").Int())
}

func TestSQLiteBackend(t *testing.T) {
	e := newEnv(t)

	_, _, code := run(t, "init", "--backend", "sqlite")
	require.Equal(t, exitSuccess, code)
	assert.FileExists(t, filepath.Join(e.dataDir, "keepsake.db"))
	assert.NoFileExists(t, filepath.Join(e.dataDir, "settings.json"))

	for _, width := range []string{"800", "1024"} {
		_, _, code = run(t, "set", "App:Window:Width", width, "--backend", "sqlite")
		require.Equal(t, exitSuccess, code)
	}

	out, _, code := run(t, "get", "App:Window:Width", "--backend", "sqlite", "--raw")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "1024\n", out)

	out, _, code = run(t, "history", "--backend", "sqlite")
	require.Equal(t, exitSuccess, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header plus three revisions")
	assert.True(t, strings.HasPrefix(lines[0], "REV"))

	out, _, code = run(t, "history", "--backend", "sqlite", "--format", "json")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, int64(3), gjson.Get(out, "#").Int())

	out, _, code = run(t, "history", "--backend", "sqlite", "--revision", "2")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, int64(800), gjson.Get(out, "App.Window.Width").Int())

	export := filepath.Join(t.TempDir(), "history.jsonl")
	_, _, code = run(t, "export", export, "--backend", "sqlite")
	require.Equal(t, exitSuccess, code)

	other := t.TempDir()
	out, _, code = run(t, "import", export, "--backend", "sqlite", "--data-dir", other)
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Imported 3 revisions")

	// Documents keep the path they were written under.
	store := sqlite.NewStore()
	require.NoError(t, store.Attach(other))
	defer store.Detach()
	data, err := store.ReadFile(filepath.Join(e.dataDir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, int64(1024), gjson.GetBytes(data, "App.Window.Width").Int())
}
