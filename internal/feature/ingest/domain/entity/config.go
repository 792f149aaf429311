package entity

import (
	"fmt"
	"strings"

	"stock_ingest/internal/shared/dates"
)

// Category is an independent unit of fetch-and-reconcile work within a run.
type Category string

const (
	CategorySymbols    Category = "symbols"
	CategoryPrices     Category = "prices"
	CategoryFinancials Category = "financials"
	CategoryEvents     Category = "events"
	CategoryMargins    Category = "margins"
)

// Categories lists every category in execution order.
var Categories = []Category{CategorySymbols, CategoryPrices, CategoryFinancials, CategoryEvents, CategoryMargins}

// RunType names the requested work; each maps to one or more categories.
type RunType string

const (
	RunTypeSymbols     RunType = "symbols"
	RunTypePrices      RunType = "prices"
	RunTypeFundamental RunType = "fundamental"
	RunTypeFinancials  RunType = "financials"
	RunTypeEvents      RunType = "events"
	RunTypeMargins     RunType = "margins"
	RunTypeAll         RunType = "all"
)

var runTypeCategories = map[RunType][]Category{
	RunTypeSymbols:     {CategorySymbols},
	RunTypePrices:      {CategoryPrices},
	RunTypeFundamental: {CategoryFinancials},
	RunTypeFinancials:  {CategoryFinancials},
	RunTypeEvents:      {CategoryEvents},
	RunTypeMargins:     {CategoryMargins},
	RunTypeAll:         Categories,
}

// Categories returns the categories covered by rt in execution order.
func (rt RunType) Categories() []Category {
	return runTypeCategories[rt]
}

// Includes reports whether rt covers c.
func (rt RunType) Includes(c Category) bool {
	for _, v := range rt.Categories() {
		if v == c {
			return true
		}
	}
	return false
}

// Scope selects between explicitly named symbols and the whole universe.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeAll    Scope = "all"
)

// SourceProfile restricts which provider family a run may use.
type SourceProfile string

const (
	ProfileAll  SourceProfile = "all"
	ProfileKIS  SourceProfile = "kis"
	ProfileDART SourceProfile = "dart"
)

// IncludesKIS reports whether the quote provider may be used.
func (p SourceProfile) IncludesKIS() bool { return p == ProfileAll || p == ProfileKIS }

// IncludesDART reports whether the disclosure provider may be used.
func (p SourceProfile) IncludesDART() bool { return p == ProfileAll || p == ProfileDART }

// PricesWindow is a named price lookback policy.
type PricesWindow string

const (
	WindowFast   PricesWindow = "fast"
	WindowNormal PricesWindow = "normal"
	WindowFull   PricesWindow = "full"
)

// Days returns the lookback length of a bounded window, or 0 for full.
func (w PricesWindow) Days() int {
	switch w {
	case WindowFast:
		return 7
	case WindowNormal:
		return 30
	default:
		return 0
	}
}

// RunConfig is the requested configuration of one ingest run.
type RunConfig struct {
	RunType       RunType       `json:"run_type"`
	Scope         Scope         `json:"scope"`
	Symbols       []string      `json:"symbols"`
	SourceProfile SourceProfile `json:"source_profile"`
	Timeframes    []string      `json:"timeframes"`
	AsOf          string        `json:"as_of,omitempty"`
	AsOfFrom      string        `json:"as_of_from,omitempty"`
	AsOfTo        string        `json:"as_of_to,omitempty"`
	PricesWindow  PricesWindow  `json:"prices_window,omitempty"`
	LookbackDays  int           `json:"prices_lookback_days,omitempty"`
	Backfill      bool          `json:"prices_backfill"`
	LimitSymbols  int           `json:"limit_symbols,omitempty"`
	DryRun        bool          `json:"dry_run"`
	MaxPricePages int           `json:"max_price_pages"`
	Workers       int           `json:"workers"`
}

// DefaultMaxPricePages bounds price pagination per symbol and timeframe.
const DefaultMaxPricePages = 3

// DefaultRunConfig mirrors the CLI defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		RunType:       RunTypeAll,
		Scope:         ScopeSingle,
		SourceProfile: ProfileAll,
		Timeframes:    []string{"D"},
		PricesWindow:  WindowFast,
		MaxPricePages: DefaultMaxPricePages,
		Workers:       1,
	}
}

// Validate rejects values outside the recognized option sets.
func (c RunConfig) Validate() error {
	if _, ok := runTypeCategories[c.RunType]; !ok {
		return fmt.Errorf("unknown run type %q", c.RunType)
	}
	switch c.Scope {
	case ScopeSingle, ScopeAll:
	default:
		return fmt.Errorf("unknown scope %q", c.Scope)
	}
	switch c.SourceProfile {
	case ProfileAll, ProfileKIS, ProfileDART:
	default:
		return fmt.Errorf("unknown source profile %q", c.SourceProfile)
	}
	switch c.PricesWindow {
	case "", WindowFast, WindowNormal, WindowFull:
	default:
		return fmt.Errorf("unknown prices window %q", c.PricesWindow)
	}
	for _, tf := range c.Timeframes {
		if NormalizeTimeframe(tf) != tf {
			return fmt.Errorf("unknown timeframe %q", tf)
		}
	}
	for _, d := range []struct{ flag, value string }{
		{"as-of", c.AsOf},
		{"as-of-from", c.AsOfFrom},
		{"as-of-to", c.AsOfTo},
	} {
		if strings.TrimSpace(d.value) != "" && dates.ToCompact(d.value) == "" {
			return fmt.Errorf("invalid %s date %q: use YYYYMMDD or YYYY-MM-DD", d.flag, d.value)
		}
	}
	if c.LookbackDays < 0 {
		return fmt.Errorf("prices lookback days must not be negative: %d", c.LookbackDays)
	}
	if c.LimitSymbols < 0 {
		return fmt.Errorf("limit symbols must not be negative: %d", c.LimitSymbols)
	}
	return nil
}
