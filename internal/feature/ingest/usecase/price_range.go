package usecase

import (
	"time"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/shared/dates"
)

// EpochFloor is the earliest date requested when backfilling a symbol whose
// listing date is unknown.
const EpochFloor = "19900101"

// DefaultPriceSpanDays is the span fetched when no range policy applies.
const DefaultPriceSpanDays = 365

// PriceRange derives the YYYYMMDD window for sym. The first matching policy
// wins: explicit bounds, lookback days, a bounded named window, full history
// (window full or backfill), then none. Empty bounds mean provider default.
func PriceRange(cfg entity.RunConfig, sym entity.Symbol, today time.Time) (from, to string) {
	from, to = dates.ToCompact(cfg.AsOfFrom), dates.ToCompact(cfg.AsOfTo)
	if from != "" || to != "" {
		return from, to
	}

	todayYMD := dates.FormatCompact(today)
	if cfg.LookbackDays > 0 {
		return dates.FormatCompact(today.AddDate(0, 0, -cfg.LookbackDays)), todayYMD
	}
	if days := cfg.PricesWindow.Days(); days > 0 {
		return dates.FormatCompact(today.AddDate(0, 0, -days)), todayYMD
	}
	if cfg.PricesWindow == entity.WindowFull || cfg.Backfill {
		from = sym.ListedDate
		if !dates.IsCompact(from) {
			from = EpochFloor
		}
		return from, todayYMD
	}
	return "", ""
}
