package adapters

import "time"

// IngestRunModel は実行台帳の1行を表す GORM モデルです。
type IngestRunModel struct {
	RunID              string `gorm:"column:run_id;primaryKey;size:36"`
	StartedAt          time.Time
	FinishedAt         *time.Time
	Status             string `gorm:"size:16;not null;index"`
	Command            string `gorm:"size:32;not null"`
	RunType            string `gorm:"size:16;not null"`
	Scope              string `gorm:"size:16;not null"`
	SourceProfile      string `gorm:"size:16;not null"`
	PricesWindow       string `gorm:"size:16"`
	PricesLookbackDays *int
	PricesBackfill     bool
	SymbolsCount       int
	ProcessedSymbols   int
	SymbolRows         int
	PriceRows          int
	FundamentalRows    int
	EventRows          int
	MarginRows         int
	ConfigJSON         string `gorm:"column:config_json;type:text"`
	NotesJSON          string `gorm:"column:notes_json;type:text"`
	ErrorMessage       *string
}

func (IngestRunModel) TableName() string { return "ingest_runs" }

// SymbolModel は銘柄ユニバースの1銘柄を表す GORM モデルです。
type SymbolModel struct {
	StockCode    string `gorm:"primaryKey;size:6"`
	Name         *string
	Market       *string `gorm:"size:16"`
	Sector       *string
	DARTCorpCode *string `gorm:"column:dart_corp_code;size:8"`
	ListedDate   *string `gorm:"size:10"`
	IsActive     bool    `gorm:"not null;default:true"`
	IsDelisted   bool    `gorm:"not null;default:false"`
	RunID        string  `gorm:"size:36"`
	UpdatedAt    time.Time
}

func (SymbolModel) TableName() string { return "symbol_universe" }

// PriceModel は1本の OHLCV ローソク足を表す GORM モデルです。
type PriceModel struct {
	ID          uint    `gorm:"primaryKey"`
	StockCode   string  `gorm:"size:6;not null;uniqueIndex:uq_price_candle,priority:1"`
	Timeframe   string  `gorm:"size:1;not null;uniqueIndex:uq_price_candle,priority:2"`
	CandleAt    string  `gorm:"size:10;not null;uniqueIndex:uq_price_candle,priority:3"`
	Source      string  `gorm:"size:16;not null;uniqueIndex:uq_price_candle,priority:4"`
	Open        float64 `gorm:"not null"`
	High        float64 `gorm:"not null"`
	Low         float64 `gorm:"not null"`
	Close       float64 `gorm:"not null"`
	Volume      float64 `gorm:"not null;default:0"`
	AsOf        *string `gorm:"size:10"`
	RawPayload  string  `gorm:"type:text"`
	RunID       string  `gorm:"size:36;index"`
	CollectedAt time.Time
}

func (PriceModel) TableName() string { return "raw_price_ohlcv" }

// StatementModel は財務諸表の1項目を表す GORM モデルです。
type StatementModel struct {
	ID           uint    `gorm:"primaryKey"`
	StockCode    string  `gorm:"size:6;not null;uniqueIndex:uq_fundamental_item,priority:1"`
	ReportType   string  `gorm:"size:8;not null;uniqueIndex:uq_fundamental_item,priority:2"`
	PeriodYYYYMM string  `gorm:"column:period_yyyymm;size:6;not null;uniqueIndex:uq_fundamental_item,priority:3"`
	ItemKey      string  `gorm:"size:64;not null;uniqueIndex:uq_fundamental_item,priority:4"`
	Source       string  `gorm:"size:16;not null;uniqueIndex:uq_fundamental_item,priority:5"`
	SourceKey    string  `gorm:"size:128;not null;uniqueIndex:uq_fundamental_item,priority:6"`
	PeriodType   string  `gorm:"size:16;not null"`
	ItemLabel    string  `gorm:"size:64"`
	Value        float64 `gorm:"not null"`
	Unit         *string `gorm:"size:16"`
	Currency     string  `gorm:"size:8"`
	RawPayload   string  `gorm:"type:text"`
	RunID        string  `gorm:"size:36;index"`
	CollectedAt  time.Time
}

func (StatementModel) TableName() string { return "raw_fundamental_statement" }

// EventModel は1件の開示・イベントを表す GORM モデルです。
type EventModel struct {
	ID            uint    `gorm:"primaryKey"`
	Source        string  `gorm:"size:16;not null;uniqueIndex:uq_event_source_id,priority:1"`
	SourceEventID string  `gorm:"size:64;not null;uniqueIndex:uq_event_source_id,priority:2"`
	StockCode     *string `gorm:"size:6;index"`
	EventTime     time.Time
	EventType     string `gorm:"size:32;not null"`
	Severity      int
	Headline      string
	Summary       *string
	RawPayload    string `gorm:"type:text"`
	RunID         string `gorm:"size:36;index"`
	CollectedAt   time.Time
}

func (EventModel) TableName() string { return "raw_event_feed" }

// MarginModel は銘柄ごとの証拠金区分のスナップショットを表す GORM モデルです。
type MarginModel struct {
	ID               uint   `gorm:"primaryKey"`
	StockCode        string `gorm:"size:6;not null;uniqueIndex:uq_margin_code_asof,priority:1"`
	AsOf             string `gorm:"size:10;not null;uniqueIndex:uq_margin_code_asof,priority:2"`
	IsFullMargin     bool   `gorm:"not null;default:false"`
	MarginRatePct    *float64
	CollectionStatus string `gorm:"size:16;not null"`
	SourceNote       *string
	RunID            string `gorm:"size:36;index"`
	CollectedAt      time.Time
}

func (MarginModel) TableName() string { return "symbol_margin_policy" }

// Models はマイグレーション対象のすべてのモデルを返します。
func Models() []any {
	return []any{
		&IngestRunModel{},
		&SymbolModel{},
		&PriceModel{},
		&StatementModel{},
		&EventModel{},
		&MarginModel{},
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
