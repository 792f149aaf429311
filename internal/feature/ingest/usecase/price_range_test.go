package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

func TestPriceRange(t *testing.T) {
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	listed := entity.Symbol{Code: "005930", ListedDate: "19750611"}
	unlisted := entity.Symbol{Code: "005930"}

	testCases := []struct {
		name     string
		mutate   func(c *entity.RunConfig)
		sym      entity.Symbol
		wantFrom string
		wantTo   string
	}{
		{
			name: "explicit bounds win over everything",
			mutate: func(c *entity.RunConfig) {
				c.AsOfFrom = "2024-01-02"
				c.LookbackDays = 5
				c.PricesWindow = entity.WindowFull
			},
			sym: listed, wantFrom: "20240102", wantTo: "",
		},
		{
			name:   "explicit upper bound only",
			mutate: func(c *entity.RunConfig) { c.AsOfTo = "2024/01/31" },
			sym:    listed, wantFrom: "", wantTo: "20240131",
		},
		{
			name:   "lookback days",
			mutate: func(c *entity.RunConfig) { c.LookbackDays = 10 },
			sym:    listed, wantFrom: "20240122", wantTo: "20240201",
		},
		{
			name:   "fast window",
			mutate: func(c *entity.RunConfig) {},
			sym:    listed, wantFrom: "20240125", wantTo: "20240201",
		},
		{
			name:   "normal window",
			mutate: func(c *entity.RunConfig) { c.PricesWindow = entity.WindowNormal },
			sym:    listed, wantFrom: "20240102", wantTo: "20240201",
		},
		{
			name:   "full window uses listing date",
			mutate: func(c *entity.RunConfig) { c.PricesWindow = entity.WindowFull },
			sym:    listed, wantFrom: "19750611", wantTo: "20240201",
		},
		{
			name: "backfill without listing date uses epoch floor",
			mutate: func(c *entity.RunConfig) {
				c.PricesWindow = ""
				c.Backfill = true
			},
			sym: unlisted, wantFrom: EpochFloor, wantTo: "20240201",
		},
		{
			name:   "no policy",
			mutate: func(c *entity.RunConfig) { c.PricesWindow = "" },
			sym:    listed, wantFrom: "", wantTo: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := entity.DefaultRunConfig()
			tc.mutate(&cfg)

			from, to := PriceRange(cfg, tc.sym, today)

			assert.Equal(t, tc.wantFrom, from)
			assert.Equal(t, tc.wantTo, to)
		})
	}
}
