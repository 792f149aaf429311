package kis

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/platform/externalapi/kis/dto"
	"stock_ingest/internal/shared/dates"
	"stock_ingest/internal/shared/numeric"
)

var marketNames = map[string]string{
	"STK": "KOSPI",
	"KSQ": "KOSDAQ",
}

// FetchStockInfo looks up the market, listing date and short name of code.
// Unknown markets and malformed dates are left empty.
func (c *Client) FetchStockInfo(ctx context.Context, code string) (entity.StockInfo, error) {
	params := url.Values{}
	params.Set("PRDT_TYPE_CD", "300")
	params.Set("PDNO", code)

	res, err := c.get(ctx, "/uapi/domestic-stock/v1/quotations/search-stock-info", "CTPF1002R", params)
	if err != nil {
		return entity.StockInfo{}, err
	}

	var out dto.StockInfo
	if !objectOutput(res.Output, &out) {
		return entity.StockInfo{}, nil
	}
	info := entity.StockInfo{
		Market: marketNames[strings.ToUpper(strings.TrimSpace(out.MarketID))],
		Name:   strings.TrimSpace(out.ShortName),
	}
	if listed := strings.TrimSpace(out.ListedDate); dates.IsCompact(listed) {
		info.ListedDate = listed
	}
	return info, nil
}

// FetchPricePage requests candles of code in [from, to] (YYYYMMDD). A
// non-success status yields a page with OK false; rows without a usable date
// are dropped.
func (c *Client) FetchPricePage(ctx context.Context, code, timeframe, from, to string) (entity.PricePage, error) {
	timeframe = entity.NormalizeTimeframe(timeframe)
	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", code)
	params.Set("FID_INPUT_DATE_1", from)
	params.Set("FID_INPUT_DATE_2", to)
	params.Set("FID_PERIOD_DIV_CODE", timeframe)
	params.Set("FID_ORG_ADJ_PRC", "0")

	res, err := c.get(ctx, "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice", "FHKST03010100", params)
	if err != nil {
		return entity.PricePage{}, err
	}
	if !res.OK() {
		return entity.PricePage{}, nil
	}

	rows := listOutput(res.Output2)
	if len(rows) == 0 {
		rows = listOutput(res.Output)
	}

	page := entity.PricePage{OK: true, Candles: make([]entity.Candle, 0, len(rows))}
	for _, raw := range rows {
		var row dto.DailyCandle
		if !objectOutput(raw, &row) {
			continue
		}
		day, ok := parseDay(row.Date)
		if !ok {
			continue
		}
		page.Candles = append(page.Candles, entity.Candle{
			Code:      code,
			Timeframe: timeframe,
			Date:      day,
			Open:      numeric.FloatOrZero(row.Open),
			High:      numeric.FloatOrZero(row.High),
			Low:       numeric.FloatOrZero(row.Low),
			Close:     numeric.FloatOrZero(row.Close),
			Volume:    numeric.FloatOrZero(row.Volume),
			Provider:  ProviderName,
			Raw:       json.RawMessage(raw),
		})
	}
	return page, nil
}

func parseDay(value string) (time.Time, bool) {
	ymd := dates.ToCompact(value)
	if ymd == "" {
		return time.Time{}, false
	}
	t, err := dates.ParseCompact(ymd)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
