package entity

import "encoding/json"

// ReportType identifies one financial statement sub-report.
type ReportType string

const (
	ReportRatio   ReportType = "RATIO"
	ReportBalance ReportType = "BS"
	ReportIncome  ReportType = "IS"
	ReportGrowth  ReportType = "GROWTH"
	ReportOther   ReportType = "ETC"
)

// ReportTypes lists the sub-reports fetched per instrument, in fetch order.
var ReportTypes = []ReportType{ReportRatio, ReportBalance, ReportIncome, ReportGrowth, ReportOther}

// Term is the reporting cadence of a statement.
type Term string

const (
	TermAnnual    Term = "annual"
	TermQuarterly Term = "quarterly"
)

// Terms lists the cadences fetched per sub-report, in fetch order.
var Terms = []Term{TermAnnual, TermQuarterly}

// StatementItem is one numeric line item of a financial statement.
type StatementItem struct {
	Code        string
	ReportType  ReportType
	Period      string // YYYYMM
	Term        Term
	ItemKey     string
	ItemLabel   string
	Value       float64
	Unit        string
	Currency    string
	Provider    string
	ProviderKey string
	Raw         json.RawMessage
}
