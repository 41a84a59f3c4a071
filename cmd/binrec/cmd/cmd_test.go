package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/binrec/pkg/config"
	"github.com/ssargent/binrec/pkg/store"
)

// testEnv is a scratch directory with a quiet config file
type testEnv struct {
	dir        string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "binrec_cmd_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(tmpDir, "data")
	cfg.Logging.Level = "error"

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))
	return &testEnv{dir: tmpDir, configPath: configPath}
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

// run executes the root command with a fresh set of global flags
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	container, formatter = nil, nil
	cfgFile, dataDir, logLevel, outputFormat = "", "", "", "table"
	initForce = false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	if !hasFlag(args, "--config") {
		args = append(args, "--config", e.configPath)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func (e *testEnv) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := e.run(t, append(args, "-o", "json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestSaveAndRead(t *testing.T) {
	env := newTestEnv(t)
	demo := env.path("demo.bin")

	var saved fileResult
	env.runJSON(t, &saved, "save", demo)
	assert.Equal(t, fileResult{Path: demo, Params: 4}, saved)

	out, err := env.run(t, "read", demo)
	require.NoError(t, err)
	assert.Contains(t, out, "integer")
	assert.Contains(t, out, "[first element second and so forth]")
	assert.Contains(t, out, "some raw data")
	assert.Contains(t, out, "some less raw data")

	var rows []map[string]any
	env.runJSON(t, &rows, "read", demo, "string blob")
	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0]["tag"])
	assert.Equal(t, "some less raw data", rows[0]["value"])

	_, err = env.run(t, "read", demo, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no parameter "missing"`)
}

func TestDump(t *testing.T) {
	env := newTestEnv(t)
	demo := env.path("demo.bin")
	_, err := env.run(t, "save", demo)
	require.NoError(t, err)

	var rows []map[string]any
	env.runJSON(t, &rows, "dump", demo)
	require.Len(t, rows, 4)
	for i, key := range demoKeys {
		assert.Equal(t, key, rows[i]["key"])
	}

	out, err := env.run(t, "dump", demo)
	require.NoError(t, err)
	assert.Contains(t, out, demo)
	assert.Contains(t, out, "KEY")

	_, err = env.run(t, "dump", env.path("absent.bin"))
	assert.Error(t, err)
}

func TestStoreCommands(t *testing.T) {
	env := newTestEnv(t)
	demo := env.path("demo.bin")
	_, err := env.run(t, "save", demo)
	require.NoError(t, err)

	var imported storedResult
	env.runJSON(t, &imported, "import", demo)
	require.NotEmpty(t, imported.ID)
	assert.Equal(t, 4, imported.Params)

	var listed []listRow
	env.runJSON(t, &listed, "list")
	require.Len(t, listed, 1)
	assert.Equal(t, imported.ID, listed[0].ID)
	assert.Equal(t, 4, listed[0].Params)

	exported := env.path("exported.bin")
	_, err = env.run(t, "export", imported.ID, exported)
	require.NoError(t, err)

	got, err := store.LoadStructure(exported, store.FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, demoStructure().Params(), got.Params())

	_, err = env.run(t, "delete", imported.ID)
	require.NoError(t, err)

	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No results.\n", out)

	_, err = env.run(t, "export", imported.ID, exported)
	assert.Error(t, err)

	_, err = env.run(t, "delete", "not-an-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestRecordsCommands(t *testing.T) {
	env := newTestEnv(t)
	notes := env.path("notes.rec")

	var appended []noteRow
	env.runJSON(t, &appended, "records", "append", notes, "first", "second")
	require.Len(t, appended, 2)
	assert.Equal(t, int64(0), appended[0].Offset)
	assert.Equal(t, int64(8+2+len("first")), appended[1].Offset)

	var shown []noteRow
	env.runJSON(t, &shown, "records", "show", notes)
	assert.Equal(t, appended, shown)

	// a torn tail is reported, not silently dropped
	stat, err := os.Stat(notes)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(notes, stat.Size()-1))
	_, err = env.run(t, "records", "show", notes)
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	env := newTestEnv(t)
	configPath := env.path("fresh/config.yaml")
	dataPath := env.path("fresh/data")

	out, err := env.run(t, "init", "--data-dir", dataPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to "+configPath)
	assert.FileExists(t, configPath)
	assert.DirExists(t, dataPath)

	out, err = env.run(t, "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	moved := env.path("moved")
	out, err = env.run(t, "init", "--force", "--data-dir", moved, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, moved, cfg.DataDir)
}

func TestInitializeConfig(t *testing.T) {
	env := newTestEnv(t)

	cfg, err := initializeConfig(env.path("c.yaml"), env.path("d"))
	require.NoError(t, err)
	assert.Equal(t, env.path("d"), cfg.DataDir)
	assert.DirExists(t, env.path("d"))

	// a regular file where a directory is needed
	blocker := env.path("blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	_, err = initializeConfig(filepath.Join(blocker, "c.yaml"), env.path("d"))
	assert.Error(t, err)
}

func TestRootFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")

	_, err = env.run(t, "list", "--log-level", "chatty")
	assert.Error(t, err)

	_, err = env.run(t, "list", "--config", env.path("missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file does not exist")

	// --data-dir overrides the config file
	other := env.path("other")
	_, err = env.run(t, "list", "--data-dir", other)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(other, "structures"))
}
