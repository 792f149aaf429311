package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"stock_ingest/internal/app/di"
	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/feature/ingest/usecase"
	"stock_ingest/internal/platform/db"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	runType       string
	scope         string
	symbol        []string
	symbols       string
	sourceProfile string
	timeframes    []string
	asOf          string
	asOfFrom      string
	asOfTo        string
	pricesWindow  string
	lookbackDays  int
	backfill      bool
	limitSymbols  int
	dryRun        bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one ingest run",
		Long: `Run resolves the requested symbols and executes each enabled category
(symbols, prices, financials, events, margins) in order, committing every
category before the next starts. The run payload is printed on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.runConfig(cmd)
			cfg.MaxPricePages = a.settings.MaxPricePages
			cfg.Workers = a.settings.Workers
			return a.runIngest(cmd, cfg)
		},
	}

	opts.bindFlags(cmd.Flags())
	return cmd
}

func (o *runOptions) bindFlags(f *pflag.FlagSet) {
	f.StringVar(&o.runType, "run-type", string(entity.RunTypeAll), "symbols, prices, fundamental, financials, events, margins or all")
	f.StringVar(&o.scope, "scope", string(entity.ScopeSingle), "single or all")
	f.StringArrayVar(&o.symbol, "symbol", nil, "instrument code, repeatable")
	f.StringVar(&o.symbols, "symbols", "", "comma-separated instrument codes")
	f.StringVar(&o.sourceProfile, "source-profile", string(entity.ProfileAll), "all, kis or dart")
	f.StringSliceVar(&o.timeframes, "timeframes", []string{"D"}, "candle timeframes: D, W, M, Y")
	f.StringVar(&o.asOf, "as-of", "", "as-of date stamped on fetched records")
	f.StringVar(&o.asOfFrom, "as-of-from", "", "first price date (YYYYMMDD or YYYY-MM-DD)")
	f.StringVar(&o.asOfTo, "as-of-to", "", "last price date (YYYYMMDD or YYYY-MM-DD)")
	f.StringVar(&o.pricesWindow, "prices-window", string(entity.WindowFast), "fast (7d), normal (30d) or full")
	f.IntVar(&o.lookbackDays, "prices-lookback-days", 0, "price lookback in days, overrides --prices-window")
	f.BoolVar(&o.backfill, "prices-backfill", false, "fetch price history from the listing date")
	f.IntVar(&o.limitSymbols, "limit-symbols", 0, "process at most this many symbols")
	f.BoolVar(&o.dryRun, "dry-run", false, "record the run without contacting providers")
}

// runConfig builds the RunConfig described by the flags. --prices-backfill
// without an explicit --prices-window clears the default window.
func (o *runOptions) runConfig(cmd *cobra.Command) entity.RunConfig {
	cfg := entity.DefaultRunConfig()
	cfg.RunType = entity.RunType(strings.ToLower(strings.TrimSpace(o.runType)))
	cfg.Scope = entity.Scope(strings.ToLower(strings.TrimSpace(o.scope)))
	cfg.SourceProfile = entity.SourceProfile(strings.ToLower(strings.TrimSpace(o.sourceProfile)))
	cfg.Symbols = splitSymbols(o.symbol, o.symbols)
	cfg.Timeframes = splitTimeframes(o.timeframes)
	cfg.AsOf = strings.TrimSpace(o.asOf)
	cfg.AsOfFrom = strings.TrimSpace(o.asOfFrom)
	cfg.AsOfTo = strings.TrimSpace(o.asOfTo)
	cfg.PricesWindow = entity.PricesWindow(strings.ToLower(strings.TrimSpace(o.pricesWindow)))
	cfg.LookbackDays = o.lookbackDays
	cfg.Backfill = o.backfill
	cfg.LimitSymbols = o.limitSymbols
	cfg.DryRun = o.dryRun

	if o.backfill && !cmd.Flags().Changed("prices-window") {
		cfg.PricesWindow = ""
	}
	return cfg
}

func splitSymbols(repeated []string, csv string) []string {
	var out []string
	values := append(append([]string(nil), repeated...), strings.Split(csv, ",")...)
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitTimeframes(values []string) []string {
	var out []string
	for _, tf := range values {
		if tf = strings.ToUpper(strings.TrimSpace(tf)); tf != "" {
			out = append(out, tf)
		}
	}
	if len(out) == 0 {
		return []string{"D"}
	}
	return out
}

func (a *app) runIngest(cmd *cobra.Command, cfg entity.RunConfig) error {
	ctx := cmd.Context()

	gdb, err := di.NewDB(a.settings)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			fmt.Fprintln(a.stderr, "failed to close store:", err)
		}
	}()

	uc, cleanup := di.NewIngestUsecase(ctx, a.settings, gdb)
	defer cleanup()

	run, err := uc.Run(ctx, cfg)

	var cfgErr *usecase.ConfigError
	if errors.As(err, &cfgErr) {
		if run.FinishedAt == nil {
			if perr := a.print(setupPayload{RunID: run.ID, Status: StatusSetupRequired, Error: err.Error()}); perr != nil {
				return perr
			}
			fmt.Fprintln(a.stderr, err.Error())
			return &ExitError{Code: ExitConfigError, Err: err}
		}
		if perr := a.print(newPayload(run, a.settings.DB.Location())); perr != nil {
			return perr
		}
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	if err != nil && run.FinishedAt == nil {
		return err
	}

	if perr := a.print(newPayload(run, a.settings.DB.Location())); perr != nil {
		return perr
	}
	if err != nil {
		return &ExitError{Code: ExitFailed, Err: err}
	}
	if run.Status != entity.RunSuccess {
		return &ExitError{Code: ExitFailed, Err: errors.New(run.Error)}
	}
	return nil
}
