package kis

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"stock_ingest/internal/platform/externalapi/kis/dto"
	"stock_ingest/internal/shared/numeric"
)

// ErrAccountNotConfigured is returned by account-scoped calls when
// KIS_ACCOUNT_NO is shorter than ten digits.
var ErrAccountNotConfigured = errors.New("kis: account number must be at least 10 digits")

// HasAccount reports whether account-scoped calls can be made.
func (c *Client) HasAccount() bool {
	_, _, ok := c.cfg.account()
	return ok
}

// CheckOrderable runs the order-feasibility inquiry for code. ok is false
// with the provider message when KIS rejects the inquiry.
func (c *Client) CheckOrderable(ctx context.Context, code string) (bool, string, error) {
	cano, product, ok := c.cfg.account()
	if !ok {
		return false, "", ErrAccountNotConfigured
	}
	params := url.Values{}
	params.Set("CANO", cano)
	params.Set("ACNT_PRDT_CD", product)
	params.Set("PDNO", code)
	params.Set("ORD_UNPR", "0")
	params.Set("ORD_DVSN", "01")
	params.Set("CMA_EVLU_AMT_ICLD_YN", "Y")
	params.Set("OVRS_ICLD_YN", "N")

	res, err := c.get(ctx, "/uapi/domestic-stock/v1/trading/inquire-psbl-order", "TTTC8908R", params)
	if err != nil {
		return false, "", err
	}
	if !res.OK() {
		msg := strings.TrimSpace(res.Msg1)
		if msg == "" {
			msg = "order inquiry rejected"
		}
		return false, msg, nil
	}
	return true, "", nil
}

// FetchMarginRate returns the integrated margin rate of code in percent, or
// nil when KIS reports none.
func (c *Client) FetchMarginRate(ctx context.Context, code string) (*float64, error) {
	cano, product, ok := c.cfg.account()
	if !ok {
		return nil, ErrAccountNotConfigured
	}
	params := url.Values{}
	params.Set("CANO", cano)
	params.Set("ACNT_PRDT_CD", product)
	params.Set("PDNO", code)

	res, err := c.get(ctx, "/uapi/domestic-stock/v1/trading/intgr-margin", "TTTC0869R", params)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, nil
	}
	var out dto.IntegratedMargin
	if !objectOutput(res.Output, &out) {
		return nil, nil
	}
	return numeric.ParseFloatPtr(out.MarginRate), nil
}
