// Package dto defines data transfer objects for the DART open API.
package dto

import "encoding/json"

// CorpCodeFile is the XML document inside the corpCode.xml archive.
type CorpCodeFile struct {
	List []CorpCode `xml:"list"`
}

// CorpCode is one registered corporation.
type CorpCode struct {
	CorpCode   string `xml:"corp_code"`
	CorpName   string `xml:"corp_name"`
	StockCode  string `xml:"stock_code"`
	ModifyDate string `xml:"modify_date"`
}

// DisclosureList is the body of list.json. Status "000" means success.
type DisclosureList struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	List    []json.RawMessage `json:"list"`
}

// Disclosure is one filing of list.json.
type Disclosure struct {
	CorpCode   string `json:"corp_code"`
	CorpName   string `json:"corp_name"`
	StockCode  string `json:"stock_code"`
	ReportName string `json:"report_nm"`
	ReceiptNo  string `json:"rcept_no"`
	FilerName  string `json:"flr_nm"`
	ReceiptDt  string `json:"rcept_dt"`
}
