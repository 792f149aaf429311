// Package cli implements the stock-ingest command line: run, status and
// db-check, their JSON payloads and exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stock_ingest/internal/platform/config"
)

// Version is reported by --version.
var Version = "dev"

// app holds state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	compact    bool
	settings   config.Settings
	stdout     io.Writer
	stderr     io.Writer
}

// print writes v to stdout as JSON.
func (a *app) print(v any) error {
	return writeJSON(a.stdout, v, a.compact)
}

// load resolves settings and installs the JSON logger on stderr.
func (a *app) load() error {
	s, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.settings = s
	slog.SetDefault(slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{Level: parseLevel(s.LogLevel)})))
	return nil
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "stock-ingest",
		Short: "Market reference data ingest",
		Long: `stock-ingest pulls instrument master data, OHLCV candles, financial
statements, corporate disclosures and margin policy from the KIS and DART
providers into a local store, recording every run in a ledger.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.load()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&a.compact, "json", false, "print the payload as compact single-line JSON")
	pf.StringVar(&a.configFile, "config", "", "optional YAML config file")
	pf.String("sqlite-path", config.DefaultSQLitePath(), "SQLite store file")
	pf.String("db-driver", "sqlite", "store driver: sqlite or postgres")
	pf.String("db-dsn", "", "PostgreSQL connection string")
	pf.Duration("timeout", a.v.GetDuration(config.KeyTimeout), "provider request timeout")
	pf.String("kis-base-url", a.v.GetString(config.KeyKISBaseURL), "KIS API base URL")
	pf.String("dart-base-url", a.v.GetString(config.KeyDARTBaseURL), "DART API base URL")
	pf.Int("kis-max-price-pages", a.v.GetInt(config.KeyKISMaxPages), "price pages fetched per symbol and timeframe")
	pf.Int("workers", a.v.GetInt(config.KeyWorkers), "concurrent symbol fetches per category")
	pf.String("log-level", "info", "log level: debug, info, warn or error")

	bindings := map[string]string{
		"sqlite-path":         config.KeySQLitePath,
		"db-driver":           config.KeyDBDriver,
		"db-dsn":              config.KeyDBDSN,
		"timeout":             config.KeyTimeout,
		"kis-base-url":        config.KeyKISBaseURL,
		"dart-base-url":       config.KeyDARTBaseURL,
		"kis-max-price-pages": config.KeyKISMaxPages,
		"workers":             config.KeyWorkers,
		"log-level":           config.KeyLogLevel,
	}
	for flag, key := range bindings {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newRunCmd(a),
		newStatusCmd(a),
		newDBCheckCmd(a),
	)
	return root
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && !reported(err) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return ExitCode(err)
}
