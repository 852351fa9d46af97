package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/ddlkit"
	"github.com/tordrt/ddlkit/internal/catalog"
	"github.com/tordrt/ddlkit/internal/config"
	"github.com/tordrt/ddlkit/internal/formatter"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "ddlkit",
		Short:         "Compile and apply table definitions as SQL DDL",
		Long:          `ddlkit compiles HCL table definitions into DDL for MySQL, PostgreSQL, or SQLite, applies them to a database, and describes existing tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: ddlkit.yaml)")
	flags.String("db-url", "", "PostgreSQL connection string")
	flags.String("mysql-url", "", "MySQL connection string")
	flags.String("sqlite", "", "SQLite database file path")
	flags.String("prefix", "", "Table name prefix")
	flags.Bool("prefix-indexes", false, "Apply the table prefix to generated index names")
	flags.BoolP("verbose", "v", false, "Log every executed statement")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(configPath, cmd.Flags())
	}

	rootCmd.AddCommand(newCompileCmd(load), newApplyCmd(load), newDescribeCmd(load))
	return rootCmd
}

type loader func(cmd *cobra.Command) (*config.Config, error)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringP("output-dir", "d", "", "Output directory for multi-file output")
	cmd.Flags().String("format", config.DefaultFormat, "Output format: text or markdown")
}

func newCompileCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the SQL a schema file compiles to",
		Long:  `Compile schema files without executing them. Without a database target the statements are compiled offline for --driver; SQLite alterations that rebuild tables need a live --sqlite database to describe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runCompile(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceP("file", "f", nil, "Schema files, applied in order")
	cmd.Flags().String("driver", config.DefaultDriver, "Target driver when no database is given: mysql, pgsql, or sqlite")
	addOutputFlags(cmd)
	return cmd
}

func newApplyCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute schema files against a database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runApply(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringSliceP("file", "f", nil, "Schema files, applied in order")
	return cmd
}

func newDescribeCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe the tables of a database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runDescribe(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceP("tables", "t", nil, "Specific tables (comma-separated, optional)")
	cmd.Flags().StringSlice("exclude", nil, "Tables to leave out (comma-separated)")
	addOutputFlags(cmd)
	return cmd
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func options(cfg *config.Config) (ddlkit.Options, error) {
	settings, err := cfg.ConnectionConfig()
	if err != nil {
		return ddlkit.Options{}, err
	}
	return ddlkit.Options{Prefix: cfg.Prefix, PrefixIndexes: cfg.PrefixIndexes, Config: settings}, nil
}

// connect opens the configured database. The returned close function
// reports close failures as warnings.
func connect(ctx context.Context, cfg *config.Config) (ddlkit.Client, func(), error) {
	driver, dsn, err := cfg.Target()
	if err != nil {
		return nil, nil, err
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := ddlkit.OpenDriver(ctx, driver, dsn, opts)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close %s connection: %v\n", driver, err)
		}
	}, nil
}

func loadDefinitions(cfg *config.Config) ([]ddlkit.Definition, error) {
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("at least one schema file is required (-f)")
	}
	defs, err := ddlkit.LoadDefinitions(cfg.Files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema files: %w", err)
	}
	return defs, nil
}

func runCompile(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	defs, err := loadDefinitions(cfg)
	if err != nil {
		return err
	}

	var conn ddlkit.Connection
	if cfg.HasTarget() {
		client, closeClient, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeClient()
		conn = client
	} else {
		opts, err := options(cfg)
		if err != nil {
			return err
		}
		conn = ddlkit.NewOffline(cfg.Driver, opts)
	}

	builder, err := ddlkit.NewBuilder(conn, nil)
	if err != nil {
		return err
	}
	plan, err := builder.Plan(ctx, defs)
	if err != nil {
		return fmt.Errorf("failed to compile: %w", err)
	}

	return writeOutput(cfg, stdout, func(f formatter.Formatter) error { return f.Format(plan) })
}

func runApply(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	defs, err := loadDefinitions(cfg)
	if err != nil {
		return err
	}
	client, closeClient, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	builder, err := ddlkit.NewBuilder(client, newLogger(cfg, stderr))
	if err != nil {
		return err
	}
	if err := builder.Apply(ctx, defs); err != nil {
		return fmt.Errorf("failed to apply: %w", err)
	}

	fmt.Fprintf(stdout, "applied %d definitions to %s\n", len(defs), client.DriverName())
	return nil
}

func runDescribe(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	client, closeClient, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	names := cfg.Tables
	if len(names) == 0 {
		names, err = client.TableNames(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
	}
	names = filterExcludedTables(parseTableList(names), cfg.Exclude)

	tables := make([]catalog.Table, 0, len(names))
	for _, name := range names {
		table, err := client.Describe(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %w", name, err)
		}
		tables = append(tables, *table)
	}

	return writeOutput(cfg, stdout, func(f formatter.Formatter) error { return f.FormatTables(tables) })
}

// writeOutput renders to --output-dir, --output or stdout.
func writeOutput(cfg *config.Config, stdout io.Writer, render func(f formatter.Formatter) error) error {
	// Validate flag combinations
	if cfg.OutputDir != "" && cfg.Output != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	if cfg.OutputDir != "" {
		if err := render(formatter.NewMultiFileFormatter(cfg.OutputDir, cfg.Format)); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	writer := stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	f, err := formatter.New(cfg.Format, writer)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// parseTableList trims names and splits any comma-separated entries.
func parseTableList(names []string) []string {
	var out []string
	for _, name := range names {
		for part := range strings.SplitSeq(name, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func filterExcludedTables(names, excludeList []string) []string {
	if len(excludeList) == 0 {
		return names
	}
	exclude := parseTableList(excludeList)
	return slices.DeleteFunc(names, func(name string) bool { return slices.Contains(exclude, name) })
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
