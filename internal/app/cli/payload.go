package cli

import (
	"encoding/json"
	"io"
	"time"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// StatusSetupRequired is reported for runs refused before creation.
const StatusSetupRequired = "setup_required"

// Payload is the JSON document printed for a run. For run, OK reports a
// successful run. For status and db-check, OK reports that the run was found.
type Payload struct {
	OK                 bool                 `json:"ok"`
	RunID              string               `json:"run_id"`
	Status             entity.RunStatus     `json:"status"`
	Command            string               `json:"command"`
	RunType            entity.RunType       `json:"run_type"`
	Scope              entity.Scope         `json:"scope"`
	Symbols            []string             `json:"symbols"`
	SourceProfile      entity.SourceProfile `json:"source_profile"`
	Timeframes         []string             `json:"timeframes"`
	AsOf               string               `json:"as_of,omitempty"`
	AsOfFrom           string               `json:"as_of_from,omitempty"`
	AsOfTo             string               `json:"as_of_to,omitempty"`
	PricesWindow       entity.PricesWindow  `json:"prices_window"`
	PricesLookbackDays *int                 `json:"prices_lookback_days"`
	PricesBackfill     bool                 `json:"prices_backfill"`
	LimitSymbols       *int                 `json:"limit_symbols"`
	DryRun             bool                 `json:"dry_run"`
	SymbolsCount       int                  `json:"symbols_count"`
	ProcessedSymbols   int                  `json:"processed_symbols"`
	RowCounts          entity.RowCounts     `json:"row_counts"`
	Notes              []string             `json:"notes"`
	Error              *string              `json:"error"`
	StoreLocation      string               `json:"store_location"`
	StartedAt          string               `json:"started_at"`
	FinishedAt         *string              `json:"finished_at"`
	DBCheck            *entity.RowCounts    `json:"db_check,omitempty"`
}

// setupPayload is printed when a run is refused for missing configuration.
type setupPayload struct {
	OK     bool   `json:"ok"`
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// errorPayload is printed when a command fails without a run to report.
type errorPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func newPayload(run *entity.Run, storeLocation string) Payload {
	cfg := run.Config
	p := Payload{
		OK:               run.Status == entity.RunSuccess,
		RunID:            run.ID,
		Status:           run.Status,
		Command:          run.Command,
		RunType:          cfg.RunType,
		Scope:            cfg.Scope,
		Symbols:          nonNil(cfg.Symbols),
		SourceProfile:    cfg.SourceProfile,
		Timeframes:       nonNil(cfg.Timeframes),
		AsOf:             cfg.AsOf,
		AsOfFrom:         cfg.AsOfFrom,
		AsOfTo:           cfg.AsOfTo,
		PricesWindow:     cfg.PricesWindow,
		PricesBackfill:   cfg.Backfill,
		DryRun:           cfg.DryRun,
		SymbolsCount:     run.SymbolsCount,
		ProcessedSymbols: run.ProcessedSymbols,
		RowCounts:        run.Counts,
		Notes:            nonNil(run.Notes),
		StoreLocation:    storeLocation,
		StartedAt:        formatTime(run.StartedAt),
	}
	if cfg.LookbackDays > 0 {
		p.PricesLookbackDays = &cfg.LookbackDays
	}
	if cfg.LimitSymbols > 0 {
		p.LimitSymbols = &cfg.LimitSymbols
	}
	if run.Error != "" {
		p.Error = &run.Error
	}
	if run.FinishedAt != nil {
		finished := formatTime(*run.FinishedAt)
		p.FinishedAt = &finished
	}
	return p
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// writeJSON prints v on w, compact when compact is set and indented otherwise.
func writeJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
