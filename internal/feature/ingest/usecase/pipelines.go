package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/shared/dates"
)

const (
	noteKISMissing     = "KIS_APP_KEY/KIS_APP_SECRET not provided"
	noteDARTMissing    = "DART_API_KEY not provided"
	noteProfileNoKIS   = "source_profile does not include kis"
	noteAccountInvalid = "KIS_ACCOUNT_NO must be at least 10 digits"
)

// pipelines returns every category pipeline in execution order.
func (u *IngestUsecase) pipelines() []pipeline {
	return []pipeline{
		{category: entity.CategorySymbols, isolatePerSymbol: true, run: u.runSymbols},
		{category: entity.CategoryPrices, isolatePerSymbol: false, run: u.runPrices},
		{category: entity.CategoryFinancials, isolatePerSymbol: false, run: u.runFinancials},
		{category: entity.CategoryEvents, isolatePerSymbol: false, run: u.runEvents},
		{category: entity.CategoryMargins, isolatePerSymbol: true, run: u.runMargins},
	}
}

// runSymbols enriches explicitly named symbols from the quote provider and
// merges every resolved symbol into the universe. Enriched fields are kept on
// rc.symbols for later stages.
func (u *IngestUsecase) runSymbols(ctx context.Context, rc *runContext, isolate bool) StageResult {
	var notes []string
	if u.quote != nil && rc.cfg.Scope == entity.ScopeSingle {
		infos, errs, err := forEachSymbol(ctx, rc.workers, rc.symbols, isolate,
			func(ctx context.Context, sym entity.Symbol) (entity.StockInfo, error) {
				return u.quote.FetchStockInfo(ctx, sym.Code)
			})
		if err != nil {
			return failed(entity.CategorySymbols, err)
		}
		for i := range rc.symbols {
			if errs[i] != nil {
				notes = append(notes, fmt.Sprintf("symbol enrich failed %s: %v", rc.symbols[i].Code, errs[i]))
				slog.Warn("symbol enrich failed", "symbol", rc.symbols[i].Code, "error", errs[i])
				continue
			}
			rc.symbols[i].Merge(infos[i])
		}
	}

	n, err := u.store.UpsertSymbols(ctx, rc.runID, rc.symbols)
	if err != nil {
		return failed(entity.CategorySymbols, fmt.Errorf("upsert symbols: %w", err), notes...)
	}
	return succeeded(entity.CategorySymbols, n, notes...)
}

func (u *IngestUsecase) runPrices(ctx context.Context, rc *runContext, isolate bool) StageResult {
	if u.quote == nil {
		return skipped(entity.CategoryPrices, "prices skipped: "+noteKISMissing)
	}
	timeframes := rc.cfg.Timeframes
	if len(timeframes) == 0 {
		timeframes = []string{"D"}
	}
	asOf := dates.ToISO(rc.cfg.AsOfTo)
	if asOf == "" {
		asOf = dates.ToISO(rc.cfg.AsOf)
	}
	paginator := NewPricePaginator(u.quote, u.maxPricePages(rc.cfg))

	batches, errs, err := forEachSymbol(ctx, rc.workers, rc.symbols, isolate,
		func(ctx context.Context, sym entity.Symbol) ([]entity.Candle, error) {
			from, to := PriceRange(rc.cfg, sym, rc.today)
			var out []entity.Candle
			for _, tf := range timeframes {
				candles, err := paginator.Fetch(ctx, sym.Code, tf, from, to, rc.today)
				if err != nil {
					return nil, err
				}
				out = append(out, candles...)
			}
			return out, nil
		})
	if err != nil {
		return failed(entity.CategoryPrices, err)
	}

	var (
		candles   []entity.Candle
		processed int
	)
	for i, batch := range batches {
		if errs[i] != nil {
			continue
		}
		for j := range batch {
			batch[j].Code = rc.symbols[i].Code
			batch[j].AsOf = asOf
		}
		candles = append(candles, batch...)
		processed++
	}
	n, err := u.store.UpsertCandles(ctx, rc.runID, candles)
	if err != nil {
		return failed(entity.CategoryPrices, fmt.Errorf("upsert prices: %w", err))
	}
	res := succeeded(entity.CategoryPrices, n)
	res.Processed = processed
	return res
}

func (u *IngestUsecase) runFinancials(ctx context.Context, rc *runContext, isolate bool) StageResult {
	if u.quote == nil {
		return skipped(entity.CategoryFinancials, "financials skipped: "+noteKISMissing)
	}
	batches, _, err := forEachSymbol(ctx, rc.workers, rc.symbols, isolate,
		func(ctx context.Context, sym entity.Symbol) ([]entity.StatementItem, error) {
			var out []entity.StatementItem
			for _, report := range entity.ReportTypes {
				for _, term := range entity.Terms {
					items, err := u.quote.FetchStatement(ctx, sym.Code, report, term)
					if err != nil {
						return nil, fmt.Errorf("%s %s: %w", report, term, err)
					}
					out = append(out, items...)
				}
			}
			return out, nil
		})
	if err != nil {
		return failed(entity.CategoryFinancials, err)
	}

	var items []entity.StatementItem
	for _, batch := range batches {
		items = append(items, batch...)
	}
	n, err := u.store.UpsertStatements(ctx, rc.runID, items)
	if err != nil {
		return failed(entity.CategoryFinancials, fmt.Errorf("upsert financials: %w", err))
	}
	return succeeded(entity.CategoryFinancials, n)
}

func (u *IngestUsecase) runEvents(ctx context.Context, rc *runContext, isolate bool) StageResult {
	if u.disclosure == nil {
		return skipped(entity.CategoryEvents, "events skipped: "+noteDARTMissing)
	}
	end := dates.ToCompact(rc.cfg.AsOfTo)
	if end == "" {
		end = dates.FormatCompact(rc.today)
	}
	begin := dates.ToCompact(rc.cfg.AsOfFrom)
	if begin == "" {
		begin = dates.FormatCompact(rc.today.AddDate(0, 0, -30))
	}

	var withCorp []entity.Symbol
	for _, sym := range rc.symbols {
		if sym.DARTCorpCode != "" {
			withCorp = append(withCorp, sym)
		}
	}
	batches, _, err := forEachSymbol(ctx, rc.workers, withCorp, isolate,
		func(ctx context.Context, sym entity.Symbol) ([]entity.Event, error) {
			events, err := u.disclosure.FetchEvents(ctx, sym.DARTCorpCode, begin, end)
			if err != nil {
				return nil, err
			}
			for i := range events {
				events[i].Code = sym.Code
			}
			return events, nil
		})
	if err != nil {
		return failed(entity.CategoryEvents, err)
	}

	var events []entity.Event
	for _, batch := range batches {
		events = append(events, batch...)
	}
	n, err := u.store.UpsertEvents(ctx, rc.runID, events)
	if err != nil {
		return failed(entity.CategoryEvents, fmt.Errorf("upsert events: %w", err))
	}
	return succeeded(entity.CategoryEvents, n)
}

func (u *IngestUsecase) runMargins(ctx context.Context, rc *runContext, isolate bool) StageResult {
	switch {
	case !rc.cfg.SourceProfile.IncludesKIS():
		return skipped(entity.CategoryMargins, "margins skipped: "+noteProfileNoKIS)
	case u.quote == nil:
		return skipped(entity.CategoryMargins, "margins skipped: "+noteKISMissing)
	case !u.quote.HasAccount():
		return skipped(entity.CategoryMargins, "margins skipped: "+noteAccountInvalid)
	}

	asOf := dates.ToISO(rc.cfg.AsOfTo)
	if asOf == "" {
		asOf = dates.ToISO(rc.cfg.AsOf)
	}
	if asOf == "" {
		asOf = rc.today.Format(dates.ISO)
	}

	policies, errs, err := forEachSymbol(ctx, rc.workers, rc.symbols, isolate,
		func(ctx context.Context, sym entity.Symbol) (entity.MarginPolicy, error) {
			return u.lookupMargin(ctx, sym.Code, asOf)
		})
	if err != nil {
		return failed(entity.CategoryMargins, err)
	}

	var collected, failedCount int
	for i := range policies {
		if errs[i] != nil {
			policies[i] = entity.MarginPolicy{
				Code:   rc.symbols[i].Code,
				AsOf:   asOf,
				Status: entity.StatusFailed,
				Note:   fmt.Sprintf("lookup failed: %v", errs[i]),
			}
		}
		if policies[i].Status == entity.StatusCollected {
			collected++
		} else {
			failedCount++
		}
	}
	summary := fmt.Sprintf("margins: collected=%d, failed=%d", collected, failedCount)

	n, err := u.store.UpsertMargins(ctx, rc.runID, policies)
	if err != nil {
		return failed(entity.CategoryMargins, fmt.Errorf("upsert margins: %w", err))
	}
	return succeeded(entity.CategoryMargins, n, summary)
}

// lookupMargin checks that code is orderable, then reads its margin rate.
func (u *IngestUsecase) lookupMargin(ctx context.Context, code, asOf string) (entity.MarginPolicy, error) {
	policy := entity.MarginPolicy{Code: code, AsOf: asOf}

	ok, msg, err := u.quote.CheckOrderable(ctx, code)
	if err != nil {
		return policy, err
	}
	if !ok {
		policy.Status = entity.StatusFailed
		policy.Note = msg
		return policy, nil
	}

	rate, err := u.quote.FetchMarginRate(ctx, code)
	if err != nil {
		return policy, err
	}
	policy.RatePct = rate
	policy.IsFullMargin, policy.Status = entity.ClassifyMargin(rate)
	if rate != nil {
		policy.Note = "margin rate " + strconv.FormatFloat(*rate, 'f', -1, 64) + "%"
	} else {
		policy.Note = "no margin data"
	}
	return policy, nil
}
