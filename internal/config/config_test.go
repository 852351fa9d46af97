package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("driver", DefaultDriver, "")
	flags.String("prefix", "", "")
	flags.Bool("prefix-indexes", false, "")
	flags.String("output-dir", "", "")
	flags.String("db-url", "", "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ddlkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDriver, cfg.Driver)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.FileUsed)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, `
driver: pgsql
prefix: file_
format: markdown
connection:
  charset: utf8mb4
  postgis: false
`)
	t.Setenv("DDLKIT_PREFIX", "env_")
	t.Setenv("DDLKIT_CONNECTION_VERSION", "16.2")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--prefix", "flag_", "--prefix-indexes", "--output-dir", "out"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "ddlkit.yaml", cfg.FileUsed)
	assert.Equal(t, "pgsql", cfg.Driver, "unset flag must not override the file")
	assert.Equal(t, "markdown", cfg.Format)
	assert.Equal(t, "flag_", cfg.Prefix)
	assert.True(t, cfg.PrefixIndexes)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "utf8mb4", cfg.Connection["charset"])
	assert.Equal(t, "16.2", cfg.Connection["version"])
}

func TestLoadExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, t.TempDir(), "sqlite: app.db\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.FileUsed)
	assert.Equal(t, "app.db", cfg.SQLite)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConnectionConfig(t *testing.T) {
	cfg := &Config{Connection: map[string]any{"mariadb": "true", "postgis": false, "engine": "InnoDB"}}
	got, err := cfg.ConnectionConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mariadb": true, "postgis": false, "engine": "InnoDB"}, got)

	cfg.Connection["mariadb"] = "maybe"
	_, err = cfg.ConnectionConfig()
	assert.Error(t, err)
}

func TestTarget(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantDriver string
		wantErr    string
	}{
		{name: "postgres", cfg: Config{DBURL: "postgres://localhost/app"}, wantDriver: "pgsql"},
		{name: "mysql", cfg: Config{MySQLURL: "root@tcp(localhost:3306)/app"}, wantDriver: "mysql"},
		{name: "sqlite", cfg: Config{SQLite: "app.db"}, wantDriver: "sqlite"},
		{name: "none", wantErr: "one of --db-url, --mysql-url, or --sqlite is required"},
		{name: "two", cfg: Config{DBURL: "postgres://x", SQLite: "app.db"}, wantErr: "only one database target may be set, got db-url, sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, _, err := tt.cfg.Target()
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
		})
	}
}

func TestHasTarget(t *testing.T) {
	assert.False(t, (&Config{Driver: "mysql"}).HasTarget())
	assert.True(t, (&Config{SQLite: "app.db"}).HasTarget())
}
