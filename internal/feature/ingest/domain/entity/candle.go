package entity

import (
	"encoding/json"
	"time"
)

// Candle is one OHLCV observation for an instrument on a timeframe.
type Candle struct {
	Code      string
	Timeframe string    // D, W, M or Y
	Date      time.Time // candle day at UTC midnight
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Provider  string
	AsOf      string // YYYY-MM-DD, empty when not requested
	Raw       json.RawMessage
}

// Timeframes accepted by the quote provider.
var Timeframes = []string{"D", "W", "M", "Y"}

// NormalizeTimeframe falls back to daily candles for unknown values.
func NormalizeTimeframe(tf string) string {
	for _, v := range Timeframes {
		if tf == v {
			return tf
		}
	}
	return "D"
}

// PricePage is one response of a date-bounded candle request.
// OK is false when the provider reported a non-success status.
type PricePage struct {
	OK      bool
	Candles []Candle
}
