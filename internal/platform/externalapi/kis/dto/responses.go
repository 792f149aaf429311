// Package dto defines data transfer objects for the KIS open API responses.
package dto

import (
	"bytes"
	"encoding/json"
)

// ResultCode is rt_cd, which KIS sends as a string but tolerates as a number.
type ResultCode string

// UnmarshalJSON accepts both "0" and 0.
func (c *ResultCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ResultCode(s)
		return nil
	}
	*c = ResultCode(bytes.TrimSpace(b))
	return nil
}

// Envelope is the status header shared by every KIS response.
type Envelope struct {
	RtCd  ResultCode `json:"rt_cd"`
	MsgCd string     `json:"msg_cd"`
	Msg1  string     `json:"msg1"`
}

// OK reports a successful call.
func (e Envelope) OK() bool { return e.RtCd == "0" }

// TokenResponse is the body of POST /oauth2/tokenP.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Response carries the envelope and the raw output blocks; their shape varies
// between an object and an array depending on the endpoint and outcome.
type Response struct {
	Envelope
	Output  json.RawMessage `json:"output"`
	Output2 json.RawMessage `json:"output2"`
}

// StockInfo is the output of search-stock-info (CTPF1002R).
type StockInfo struct {
	MarketID   string `json:"mket_id_cd"`
	ListedDate string `json:"scts_mket_lstg_dt"`
	ShortName  string `json:"prdt_abrv_name"`
}

// DailyCandle is one output2 row of inquire-daily-itemchartprice (FHKST03010100).
type DailyCandle struct {
	Date   string `json:"stck_bsop_date"`
	Open   string `json:"stck_oprc"`
	High   string `json:"stck_hgpr"`
	Low    string `json:"stck_lwpr"`
	Close  string `json:"stck_clpr"`
	Volume string `json:"acml_vol"`
}

// IntegratedMargin is the output of intgr-margin (TTTC0869R).
type IntegratedMargin struct {
	MarginRate string `json:"acmga_rt"`
}
