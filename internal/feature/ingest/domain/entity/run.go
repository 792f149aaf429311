package entity

import "time"

// RunStatus is the ledger state of a run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// RowCounts holds the per-category rows written by a run.
type RowCounts struct {
	Symbols      int `json:"symbol_universe"`
	Prices       int `json:"raw_price_ohlcv"`
	Fundamentals int `json:"raw_fundamental_statement"`
	Events       int `json:"raw_event_feed"`
	Margins      int `json:"symbol_margin_policy"`
}

// Add increments the counter owned by c.
func (rc *RowCounts) Add(c Category, n int) {
	switch c {
	case CategorySymbols:
		rc.Symbols += n
	case CategoryPrices:
		rc.Prices += n
	case CategoryFinancials:
		rc.Fundamentals += n
	case CategoryEvents:
		rc.Events += n
	case CategoryMargins:
		rc.Margins += n
	}
}

// Run is one ingestion execution and its provenance.
type Run struct {
	ID               string
	Command          string
	Status           RunStatus
	Config           RunConfig
	SymbolsCount     int
	ProcessedSymbols int
	Counts           RowCounts
	Notes            []string
	Error            string
	StartedAt        time.Time
	FinishedAt       *time.Time
}

// AddNote appends a free-text diagnostic.
func (r *Run) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}
