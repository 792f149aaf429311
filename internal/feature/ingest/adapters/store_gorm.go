package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/feature/ingest/usecase"
	"stock_ingest/internal/shared/dates"
)

const batchSize = 200

type ingestStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.Store = (*ingestStore)(nil)

// NewIngestStore は GORM を使用するレコードストアを作成します。
func NewIngestStore(db *gorm.DB) *ingestStore {
	return &ingestStore{db: db, now: time.Now}
}

// dedupe keeps the last element per key, in first-seen key order.
func dedupe[T any](items []T, key func(T) string) []T {
	idx := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if i, ok := idx[k]; ok {
			out[i] = it
			continue
		}
		idx[k] = len(out)
		out = append(out, it)
	}
	return out
}

func rawString(b []byte) string {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}

// upsert は ms を1トランザクションで一括挿入（または更新）します。
func upsert[M any](ctx context.Context, db *gorm.DB, ms []M, onConflict clause.OnConflict) (int, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(onConflict).CreateInBatches(&ms, batchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(ms), nil
}

func columns(names ...string) []clause.Column {
	cs := make([]clause.Column, 0, len(names))
	for _, n := range names {
		cs = append(cs, clause.Column{Name: n})
	}
	return cs
}

func (s *ingestStore) ListSymbols(ctx context.Context) ([]entity.Symbol, error) {
	var rows []SymbolModel
	if err := s.db.WithContext(ctx).Order("stock_code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Symbol{
			Code:         m.StockCode,
			Name:         strVal(m.Name),
			Market:       strVal(m.Market),
			DARTCorpCode: strVal(m.DARTCorpCode),
			ListedDate:   dates.ToCompact(strVal(m.ListedDate)),
		})
	}
	return out, nil
}

// UpsertSymbols は銘柄をユニバースにマージします。
// 空のフィールドで保存済みの値を上書きすることはありません。
func (s *ingestStore) UpsertSymbols(ctx context.Context, runID string, symbols []entity.Symbol) (int, error) {
	now := s.now().UTC()
	symbols = dedupe(symbols, func(e entity.Symbol) string { return e.Code })
	ms := make([]SymbolModel, 0, len(symbols))
	for _, e := range symbols {
		ms = append(ms, SymbolModel{
			StockCode:    e.Code,
			Name:         strPtr(e.Name),
			Market:       strPtr(e.Market),
			DARTCorpCode: strPtr(e.DARTCorpCode),
			ListedDate:   strPtr(dates.ToISO(e.ListedDate)),
			IsActive:     true,
			RunID:        runID,
			UpdatedAt:    now,
		})
	}

	assignments := clause.Set{
		{Column: clause.Column{Name: "run_id"}, Value: gorm.Expr("excluded.run_id")},
		{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
	}
	for _, col := range []string{"name", "market", "sector", "dart_corp_code", "listed_date"} {
		assignments = append(assignments, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  gorm.Expr("COALESCE(excluded." + col + ", symbol_universe." + col + ")"),
		})
	}
	return upsert(ctx, s.db, ms, clause.OnConflict{
		Columns:   columns("stock_code"),
		DoUpdates: assignments,
	})
}

func (s *ingestStore) UpsertCandles(ctx context.Context, runID string, candles []entity.Candle) (int, error) {
	now := s.now().UTC()
	ms := make([]PriceModel, 0, len(candles))
	for _, c := range candles {
		ms = append(ms, PriceModel{
			StockCode:   c.Code,
			Timeframe:   c.Timeframe,
			CandleAt:    c.Date.Format(dates.ISO),
			Source:      c.Provider,
			Open:        c.Open,
			High:        c.High,
			Low:         c.Low,
			Close:       c.Close,
			Volume:      c.Volume,
			AsOf:        strPtr(c.AsOf),
			RawPayload:  rawString(c.Raw),
			RunID:       runID,
			CollectedAt: now,
		})
	}
	ms = dedupe(ms, func(m PriceModel) string {
		return m.StockCode + "|" + m.Timeframe + "|" + m.CandleAt + "|" + m.Source
	})
	return upsert(ctx, s.db, ms, clause.OnConflict{
		Columns: columns("stock_code", "timeframe", "candle_at", "source"),
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume", "as_of", "raw_payload", "run_id", "collected_at",
		}),
	})
}

func (s *ingestStore) UpsertStatements(ctx context.Context, runID string, items []entity.StatementItem) (int, error) {
	now := s.now().UTC()
	ms := make([]StatementModel, 0, len(items))
	for _, it := range items {
		ms = append(ms, StatementModel{
			StockCode:    it.Code,
			ReportType:   string(it.ReportType),
			PeriodYYYYMM: it.Period,
			ItemKey:      it.ItemKey,
			Source:       it.Provider,
			SourceKey:    it.ProviderKey,
			PeriodType:   string(it.Term),
			ItemLabel:    it.ItemLabel,
			Value:        it.Value,
			Unit:         strPtr(it.Unit),
			Currency:     it.Currency,
			RawPayload:   rawString(it.Raw),
			RunID:        runID,
			CollectedAt:  now,
		})
	}
	ms = dedupe(ms, func(m StatementModel) string {
		return m.StockCode + "|" + m.ReportType + "|" + m.PeriodYYYYMM + "|" + m.ItemKey + "|" + m.Source + "|" + m.SourceKey
	})
	return upsert(ctx, s.db, ms, clause.OnConflict{
		Columns: columns("stock_code", "report_type", "period_yyyymm", "item_key", "source", "source_key"),
		DoUpdates: clause.AssignmentColumns([]string{
			"period_type", "item_label", "value", "unit", "currency", "raw_payload", "run_id", "collected_at",
		}),
	})
}

// UpsertEvents は提供元IDごとにイベントを銘柄コードも含めて上書きします。
func (s *ingestStore) UpsertEvents(ctx context.Context, runID string, events []entity.Event) (int, error) {
	now := s.now().UTC()
	ms := make([]EventModel, 0, len(events))
	for _, e := range events {
		ms = append(ms, EventModel{
			Source:        e.Provider,
			SourceEventID: e.ProviderEventID,
			StockCode:     strPtr(e.Code),
			EventTime:     e.Time.UTC(),
			EventType:     e.Type,
			Severity:      e.Severity,
			Headline:      e.Headline,
			Summary:       strPtr(e.Summary),
			RawPayload:    rawString(e.Raw),
			RunID:         runID,
			CollectedAt:   now,
		})
	}
	ms = dedupe(ms, func(m EventModel) string { return m.Source + "|" + m.SourceEventID })

	return upsert(ctx, s.db, ms, clause.OnConflict{
		Columns: columns("source", "source_event_id"),
		DoUpdates: clause.AssignmentColumns([]string{
			"stock_code", "event_time", "event_type", "severity", "headline", "summary", "raw_payload", "run_id", "collected_at",
		}),
	})
}

func (s *ingestStore) UpsertMargins(ctx context.Context, runID string, policies []entity.MarginPolicy) (int, error) {
	now := s.now().UTC()
	ms := make([]MarginModel, 0, len(policies))
	for _, p := range policies {
		ms = append(ms, MarginModel{
			StockCode:        p.Code,
			AsOf:             p.AsOf,
			IsFullMargin:     p.IsFullMargin,
			MarginRatePct:    p.RatePct,
			CollectionStatus: string(p.Status),
			SourceNote:       strPtr(p.Note),
			RunID:            runID,
			CollectedAt:      now,
		})
	}
	ms = dedupe(ms, func(m MarginModel) string { return m.StockCode + "|" + m.AsOf })
	return upsert(ctx, s.db, ms, clause.OnConflict{
		Columns: columns("stock_code", "as_of"),
		DoUpdates: clause.AssignmentColumns([]string{
			"is_full_margin", "margin_rate_pct", "collection_status", "source_note", "run_id", "collected_at",
		}),
	})
}
