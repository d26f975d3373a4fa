package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-term/internal/store"
)

func executeCLI(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// isolate runs the test in an empty directory with a fresh database path.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "data", "zach-term.db")
	t.Setenv("DB_PATH", db)
	t.Setenv("GIN_MODE", "test")
	t.Setenv("LOG_LEVEL", "error")
	return db
}

func seed(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{Path: path})
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.RecordVisit(ctx, store.Visit{IP: "10.0.0.1", Path: "/"}))
	require.NoError(t, st.RecordCommand(ctx, "s1", "about", "command"))
	require.NoError(t, st.RecordCommand(ctx, "s1", "about", "command"))
	require.NoError(t, st.RecordCommand(ctx, "s1", "hax", "unknown"))
	require.NoError(t, st.RecordAchievement(ctx, "s1", "speedrunner"))
}

func TestVersion(t *testing.T) {
	isolate(t)

	stdout, _, err := executeCLI(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

func TestStats(t *testing.T) {
	db := isolate(t)
	seed(t, db)

	stdout, _, err := executeCLI(t, context.Background(), "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 total · 1 unique")
	assert.Contains(t, stdout, "3 commands across 1 sessions")
	assert.Contains(t, stdout, "about")
	assert.Contains(t, stdout, "hax")
	assert.Contains(t, stdout, "speedrunner")
}

func TestStatsJSON(t *testing.T) {
	db := isolate(t)
	seed(t, db)

	stdout, _, err := executeCLI(t, context.Background(), "stats", "--json")
	require.NoError(t, err)
	var got store.Stats
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, int64(3), got.TotalCommands)
	assert.Equal(t, []store.Count{{Name: "about", Count: 2}}, got.TopCommands)
}

func TestStatsDBFlag(t *testing.T) {
	isolate(t)
	other := filepath.Join(t.TempDir(), "other.db")
	seed(t, other)

	stdout, _, err := executeCLI(t, context.Background(), "stats", "--db", other, "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"total_commands": 3`)
}

func TestStatsMissingDatabase(t *testing.T) {
	isolate(t)

	_, _, err := executeCLI(t, context.Background(), "stats")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	isolate(t)

	_, _, err := executeCLI(t, context.Background(), "--config", "nope.toml", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestServeStopsWithContext(t *testing.T) {
	db := isolate(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, _, err := executeCLI(t, ctx, "serve", "--port", "0")
	require.NoError(t, err)
	assert.FileExists(t, db)
}
