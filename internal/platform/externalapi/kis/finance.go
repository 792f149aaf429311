package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/shared/numeric"
)

type financeEndpoint struct {
	path string
	trID string
}

var financeEndpoints = map[entity.ReportType]financeEndpoint{
	entity.ReportRatio:   {"/uapi/domestic-stock/v1/finance/financial-ratio", "FHKST66430100"},
	entity.ReportBalance: {"/uapi/domestic-stock/v1/finance/balance-sheet", "FHKST66430200"},
	entity.ReportIncome:  {"/uapi/domestic-stock/v1/finance/profit-ratio", "FHKST66430300"},
	entity.ReportGrowth:  {"/uapi/domestic-stock/v1/finance/growth-ratio", "FHKST66430400"},
	entity.ReportOther:   {"/uapi/domestic-stock/v1/finance/other-major-ratios", "FHKST66430500"},
}

var termCodes = map[entity.Term]string{
	entity.TermAnnual:    "0",
	entity.TermQuarterly: "1",
}

const periodField = "stac_yymm"

// skipFields are response fields that are not statement line items.
var skipFields = map[string]struct{}{
	periodField:    {},
	"acml_tr_pbmn": {},
	"acml_ntin":    {},
	"flet_riml_rt": {},
	"self_cptl_rt": {},
}

var periodRe = regexp.MustCompile(`^\d{6}$`)

// FetchStatement fetches one sub-report of code for term. Every numeric field
// of every period becomes one item; a non-success response yields no items.
func (c *Client) FetchStatement(ctx context.Context, code string, report entity.ReportType, term entity.Term) ([]entity.StatementItem, error) {
	ep, ok := financeEndpoints[report]
	if !ok {
		return nil, fmt.Errorf("kis: unknown report type %q", report)
	}
	params := url.Values{}
	params.Set("FID_DIV_CLS_CODE", termCodes[term])
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", code)

	res, err := c.get(ctx, ep.path, ep.trID, params)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, nil
	}

	var items []entity.StatementItem
	for _, raw := range listOutput(res.Output) {
		fields, ok := decodeFields(raw)
		if !ok {
			continue
		}
		period := strings.TrimSpace(fields[periodField])
		if !periodRe.MatchString(period) {
			continue
		}

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if _, skip := skipFields[key]; skip {
				continue
			}
			value, ok := numeric.ParseFloat(fields[key])
			if !ok {
				continue
			}
			itemKey := strings.ToUpper(key)
			items = append(items, entity.StatementItem{
				Code:        code,
				ReportType:  report,
				Period:      period,
				Term:        term,
				ItemKey:     itemKey,
				ItemLabel:   itemKey,
				Value:       value,
				Currency:    "KRW",
				Provider:    ProviderName,
				ProviderKey: fmt.Sprintf("%s:%s:%s:%s:%s", code, report, period, term, key),
				Raw:         json.RawMessage(raw),
			})
		}
	}
	return items, nil
}

// decodeFields flattens a JSON object into string values. Nested values and
// booleans are dropped since they are never statement items.
func decodeFields(raw json.RawMessage) (map[string]string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		}
	}
	return out, true
}
