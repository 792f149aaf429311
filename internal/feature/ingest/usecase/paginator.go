package usecase

import (
	"context"
	"time"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/shared/dates"
)

// PricePaginator walks a candle window backwards from its upper bound. The
// provider has no page cursor, so each page narrows the upper bound to the
// day before the oldest candle returned.
type PricePaginator struct {
	quote    QuoteProvider
	maxPages int
}

// NewPricePaginator creates a PricePaginator capped at maxPages (minimum 1).
func NewPricePaginator(quote QuoteProvider, maxPages int) *PricePaginator {
	if maxPages < 1 {
		maxPages = 1
	}
	return &PricePaginator{quote: quote, maxPages: maxPages}
}

// Fetch returns every candle of code in [from, to]. Empty bounds default to
// the year ending today.
func (p *PricePaginator) Fetch(ctx context.Context, code, timeframe, from, to string, today time.Time) ([]entity.Candle, error) {
	timeframe = entity.NormalizeTimeframe(timeframe)
	if to == "" {
		to = dates.FormatCompact(today)
	}
	if from == "" {
		from = dates.FormatCompact(today.AddDate(0, 0, -DefaultPriceSpanDays))
	}
	fromDay, err := dates.ParseCompact(from)
	if err != nil {
		return nil, err
	}

	var candles []entity.Candle
	var prevOldest time.Time
	currentTo := to
	for page := 0; page < p.maxPages; page++ {
		res, err := p.quote.FetchPricePage(ctx, code, timeframe, from, currentTo)
		if err != nil {
			return nil, err
		}
		if !res.OK || len(res.Candles) == 0 {
			break
		}

		var oldest time.Time
		for _, c := range res.Candles {
			if c.Date.IsZero() {
				continue
			}
			candles = append(candles, c)
			if oldest.IsZero() || c.Date.Before(oldest) {
				oldest = c.Date
			}
		}

		if oldest.IsZero() || !oldest.After(fromDay) {
			break
		}
		if !prevOldest.IsZero() && !oldest.Before(prevOldest) {
			break
		}
		prevOldest = oldest
		currentTo = dates.FormatCompact(oldest.AddDate(0, 0, -1))
	}
	return candles, nil
}
