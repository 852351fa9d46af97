// Package config loads ddlkit CLI configuration from defaults, a ddlkit.yaml
// file, DDLKIT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix prefixes every environment variable the loader reads.
	EnvPrefix = "DDLKIT_"

	DefaultDriver = "mysql"
	DefaultFormat = "text"
)

// Config holds all CLI configuration options.
type Config struct {
	Driver        string   `koanf:"driver"`
	Files         []string `koanf:"file"`
	DBURL         string   `koanf:"db_url"`
	MySQLURL      string   `koanf:"mysql_url"`
	SQLite        string   `koanf:"sqlite"`
	Prefix        string   `koanf:"prefix"`
	PrefixIndexes bool     `koanf:"prefix_indexes"`
	Format        string   `koanf:"format"`
	Output        string   `koanf:"output"`
	OutputDir     string   `koanf:"output_dir"`
	Verbose       bool     `koanf:"verbose"`
	// Tables and Exclude filter the tables describe prints.
	Tables  []string `koanf:"tables"`
	Exclude []string `koanf:"exclude"`
	// Connection holds grammar settings: charset, collation, engine,
	// version, mariadb, postgis and schema.
	Connection map[string]any `koanf:"connection"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// boolSettings are connection settings grammars read as booleans.
var boolSettings = map[string]bool{"mariadb": true, "postgis": true}

// findConfigFile finds the config file to use.
// Priority: explicit path > ddlkit.yaml > ddlkit.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"ddlkit.yaml", "ddlkit.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"driver":  DefaultDriver,
		"format":  DefaultFormat,
		"verbose": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables
	// Transform: DDLKIT_DB_URL -> db_url, DDLKIT_CONNECTION_CHARSET -> connection.charset
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "connection_"); ok {
		return "connection." + rest
	}
	return key
}

// ConnectionConfig returns the grammar settings with boolean settings
// normalised, so values read from the environment behave like YAML ones.
func (c *Config) ConnectionConfig() (map[string]any, error) {
	out := make(map[string]any, len(c.Connection))
	for key, value := range c.Connection {
		if s, ok := value.(string); ok && boolSettings[key] {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("connection setting %s: %w", key, err)
			}
			value = b
		}
		out[key] = value
	}
	return out, nil
}

// HasTarget reports whether a database target is configured.
func (c *Config) HasTarget() bool {
	return c.DBURL != "" || c.MySQLURL != "" || c.SQLite != ""
}

// Target returns the driver and connection string of the configured
// database. Exactly one of db_url, mysql_url and sqlite must be set.
func (c *Config) Target() (driver, dsn string, err error) {
	var targets []string
	if c.DBURL != "" {
		targets = append(targets, "db-url")
		driver, dsn = "pgsql", c.DBURL
	}
	if c.MySQLURL != "" {
		targets = append(targets, "mysql-url")
		driver, dsn = "mysql", c.MySQLURL
	}
	if c.SQLite != "" {
		targets = append(targets, "sqlite")
		driver, dsn = "sqlite", c.SQLite
	}

	switch len(targets) {
	case 0:
		return "", "", fmt.Errorf("one of --db-url, --mysql-url, or --sqlite is required")
	case 1:
		return driver, dsn, nil
	default:
		return "", "", fmt.Errorf("only one database target may be set, got %s", strings.Join(targets, ", "))
	}
}
