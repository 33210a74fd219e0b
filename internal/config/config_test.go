package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvFile, EnvCopy, EnvLog, "XDG_CONFIG_HOME"} {
		t.Setenv(k, "")
	}
	t.Setenv(EnvPass, "")
	os.Unsetenv(EnvPass)
}

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passrs", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "xclip -selection clipboard")

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestDefault_NoSaveJournal(t *testing.T) {
	assert.False(t, Default().History)
	assert.Empty(t, Default().HistoryDB)
}

func TestLoadOrCreate_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
data_file = "/tmp/vault"
poll_interval_ms = 0
default_tab = "bogus"
history = true

[keys]
quit = ["ctrl+c"]
copy = ["y", "Y"]
`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vault", cfg.DataFile)
	assert.Equal(t, DefaultPollInterval, cfg.PollIntervalMS)
	assert.Equal(t, DefaultTab, cfg.DefaultTab)
	assert.True(t, cfg.History)
	assert.Equal(t, []string{"ctrl+c"}, cfg.Keys.Quit)
	assert.Equal(t, []string{"y", "Y"}, cfg.Keys.Copy)
	assert.Equal(t, []string{"up", "k"}, cfg.Keys.Up, "unset keys keep their defaults")
	assert.Equal(t, DefaultCopyCommand, cfg.CopyCommand)
}

func TestLoadOrCreate_BadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("data_file = "), 0o644))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestLoadOrCreate_NoPath(t *testing.T) {
	cfg, err := LoadOrCreate("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/home/u")
	assert.Equal(t, "/home/u/.config/passrs/config.toml", Path())

	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/passrs/config.toml", Path())

	t.Setenv(EnvConfig, "/etc/passrs.toml")
	assert.Equal(t, "/etc/passrs.toml", Path())
}

func TestResolve_DataPathPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/home/u")
	cfg := Default()

	s, err := Resolve(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.local/share/passrs", s.DataPath)

	cfg.DataFile = "/cfg/data"
	s, err = Resolve(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "/cfg/data", s.DataPath)

	t.Setenv(EnvFile, "/env/data")
	s, err = Resolve(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", s.DataPath)

	s, err = Resolve(cfg, "/flag/data")
	require.NoError(t, err)
	assert.Equal(t, "/flag/data", s.DataPath)
}

func TestResolve_NoDataPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "")

	_, err := Resolve(Default(), "")
	assert.ErrorIs(t, err, ErrNoDataPath)
}

func TestResolve_Password(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/home/u")

	s, err := Resolve(Default(), "")
	require.NoError(t, err)
	assert.Nil(t, s.Password, "unset means prompt")

	t.Setenv(EnvPass, "")
	s, err = Resolve(Default(), "")
	require.NoError(t, err)
	require.NotNil(t, s.Password)
	assert.Equal(t, "", *s.Password)

	t.Setenv(EnvPass, "hunter2")
	s, err = Resolve(Default(), "")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", *s.Password)
}

func TestResolve_CopyLogAndJournal(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.PollIntervalMS = 250

	s, err := Resolve(cfg, "/data")
	require.NoError(t, err)
	assert.Equal(t, DefaultCopyCommand, s.CopyCommand)
	assert.Equal(t, 250*time.Millisecond, s.PollInterval)
	assert.Empty(t, s.JournalPath, "the save journal is opt-in")
	assert.Equal(t, DefaultHistoryKeep, s.JournalKeep)

	t.Setenv(EnvCopy, "wl-copy")
	t.Setenv(EnvLog, "/tmp/passrs.log")
	cfg.History = true
	s, err = Resolve(cfg, "/data")
	require.NoError(t, err)
	assert.Equal(t, "wl-copy", s.CopyCommand)
	assert.Equal(t, "/tmp/passrs.log", s.LogFile)
	assert.Equal(t, "/data.history.db", s.JournalPath)

	cfg.History = true
	cfg.HistoryDB = "/var/db/passrs.db"
	s, err = Resolve(cfg, "/data")
	require.NoError(t, err)
	assert.Equal(t, "/var/db/passrs.db", s.JournalPath)
}
