package kis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/platform/tokenstore"
)

// kisServer serves the token endpoint and delegates every other path to h.
func kisServer(t *testing.T, tokenCalls *int32, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/tokenP" {
			if tokenCalls != nil {
				atomic.AddInt32(tokenCalls, 1)
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode token body: %v", err)
			}
			if body["grant_type"] != "client_credentials" || body["appkey"] != "key" || body["appsecret"] != "secret" {
				t.Errorf("unexpected token body: %v", body)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":86400}`))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("appkey") != "key" || r.Header.Get("appsecret") != "secret" {
			t.Errorf("missing app credential headers")
		}
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server, account string) *Client {
	cfg := Config{
		AppKey:    "key",
		AppSecret: "secret",
		AccountNo: account,
		BaseURL:   server.URL + "/",
	}
	return NewClient(cfg, server.Client(), tokenstore.NewMemoryStore(), nil)
}

func TestClient_TokenIssuedOnce(t *testing.T) {
	t.Parallel()

	var tokenCalls int32
	server := kisServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rt_cd":"0","output":{}}`))
	})
	c := newTestClient(server, "")

	for i := 0; i < 3; i++ {
		_, err := c.FetchStockInfo(context.Background(), "005930")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestClient_TokenExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	var tokenCalls int32
	server := kisServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rt_cd":"0","output":{}}`))
	})
	store := tokenstore.NewMemoryStore()
	c := NewClient(Config{AppKey: "key", AppSecret: "secret", BaseURL: server.URL, TokenTTL: time.Nanosecond}, server.Client(), store, nil)

	_, err := c.FetchStockInfo(context.Background(), "005930")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.FetchStockInfo(context.Background(), "005930")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls))
}

func TestClient_TokenMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_description":"invalid appkey"}`))
	}))
	defer server.Close()
	c := newTestClient(server, "")

	_, err := c.FetchStockInfo(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestFetchStockInfo(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uapi/domestic-stock/v1/quotations/search-stock-info", r.URL.Path)
		assert.Equal(t, "CTPF1002R", r.Header.Get("tr_id"))
		assert.Equal(t, "300", r.URL.Query().Get("PRDT_TYPE_CD"))
		assert.Equal(t, "005930", r.URL.Query().Get("PDNO"))
		_, _ = w.Write([]byte(`{"rt_cd":"0","output":{"mket_id_cd":"STK","scts_mket_lstg_dt":"19750611","prdt_abrv_name":"Samsung Elec"}}`))
	})
	c := newTestClient(server, "")

	info, err := c.FetchStockInfo(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, entity.StockInfo{Name: "Samsung Elec", Market: "KOSPI", ListedDate: "19750611"}, info)
}

func TestFetchStockInfo_UnknownMarketAndBadDate(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rt_cd":"0","output":{"mket_id_cd":"KNX","scts_mket_lstg_dt":"1975-06","prdt_abrv_name":""}}`))
	})
	c := newTestClient(server, "")

	info, err := c.FetchStockInfo(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, entity.StockInfo{}, info)
}

func TestFetchPricePage(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "FHKST03010100", r.Header.Get("tr_id"))
		assert.Equal(t, "J", q.Get("FID_COND_MRKT_DIV_CODE"))
		assert.Equal(t, "20240101", q.Get("FID_INPUT_DATE_1"))
		assert.Equal(t, "20240131", q.Get("FID_INPUT_DATE_2"))
		assert.Equal(t, "W", q.Get("FID_PERIOD_DIV_CODE"))
		assert.Equal(t, "0", q.Get("FID_ORG_ADJ_PRC"))
		_, _ = w.Write([]byte(`{"rt_cd":"0","output2":[
			{"stck_bsop_date":"20240131","stck_oprc":"100","stck_hgpr":"110","stck_lwpr":"95","stck_clpr":"105","acml_vol":"1,000"},
			{"stck_bsop_date":"","stck_clpr":"1"},
			{"stck_bsop_date":"20240124","stck_oprc":"90","stck_hgpr":"101","stck_lwpr":"89","stck_clpr":"100","acml_vol":"x"}
		]}`))
	})
	c := newTestClient(server, "")

	page, err := c.FetchPricePage(context.Background(), "005930", "W", "20240101", "20240131")
	require.NoError(t, err)
	require.True(t, page.OK)
	require.Len(t, page.Candles, 2)

	first := page.Candles[0]
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "W", first.Timeframe)
	assert.Equal(t, 105.0, first.Close)
	assert.Equal(t, 1000.0, first.Volume)
	assert.Equal(t, ProviderName, first.Provider)
	assert.JSONEq(t, `{"stck_bsop_date":"20240131","stck_oprc":"100","stck_hgpr":"110","stck_lwpr":"95","stck_clpr":"105","acml_vol":"1,000"}`, string(first.Raw))
	assert.Equal(t, 0.0, page.Candles[1].Volume)
}

func TestFetchPricePage_FallsBackToOutput(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rt_cd":"0","output2":[],"output":[{"stck_bsop_date":"20240102","stck_clpr":"7"}]}`))
	})
	c := newTestClient(server, "")

	page, err := c.FetchPricePage(context.Background(), "005930", "D", "20240101", "20240131")
	require.NoError(t, err)
	require.Len(t, page.Candles, 1)
	assert.Equal(t, 7.0, page.Candles[0].Close)
}

func TestFetchPricePage_NonSuccess(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rt_cd":"1","msg1":"no data","output2":[{"stck_bsop_date":"20240102"}]}`))
	})
	c := newTestClient(server, "")

	page, err := c.FetchPricePage(context.Background(), "005930", "D", "20240101", "20240131")
	require.NoError(t, err)
	assert.False(t, page.OK)
	assert.Empty(t, page.Candles)
}

func TestFetchPricePage_HTTPError(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	})
	c := newTestClient(server, "")

	_, err := c.FetchPricePage(context.Background(), "005930", "D", "20240101", "20240131")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestFetchStatement(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uapi/domestic-stock/v1/finance/balance-sheet", r.URL.Path)
		assert.Equal(t, "FHKST66430200", r.Header.Get("tr_id"))
		assert.Equal(t, "1", r.URL.Query().Get("FID_DIV_CLS_CODE"))
		_, _ = w.Write([]byte(`{"rt_cd":"0","output":[
			{"stac_yymm":"202312","total_aset":"1,234.5","cras":12,"acml_ntin":"9","note":"n/a","flag":true},
			{"stac_yymm":"2023","total_aset":"1"}
		]}`))
	})
	c := newTestClient(server, "")

	items, err := c.FetchStatement(context.Background(), "005930", entity.ReportBalance, entity.TermQuarterly)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "CRAS", items[0].ItemKey)
	assert.Equal(t, 12.0, items[0].Value)
	assert.Equal(t, "TOTAL_ASET", items[1].ItemKey)
	assert.Equal(t, 1234.5, items[1].Value)
	assert.Equal(t, "202312", items[1].Period)
	assert.Equal(t, entity.TermQuarterly, items[1].Term)
	assert.Equal(t, "KRW", items[1].Currency)
	assert.Equal(t, "005930:BS:202312:quarterly:total_aset", items[1].ProviderKey)
}

func TestFetchStatement_NonSuccessOrNonList(t *testing.T) {
	t.Parallel()

	bodies := []string{
		`{"rt_cd":"7","output":[{"stac_yymm":"202312","x":"1"}]}`,
		`{"rt_cd":"0","output":{"stac_yymm":"202312","x":"1"}}`,
	}
	for _, body := range bodies {
		body := body
		server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		c := newTestClient(server, "")

		items, err := c.FetchStatement(context.Background(), "005930", entity.ReportRatio, entity.TermAnnual)
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func TestCheckOrderableAndMarginRate(t *testing.T) {
	t.Parallel()

	server := kisServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "12345678", q.Get("CANO"))
		assert.Equal(t, "01", q.Get("ACNT_PRDT_CD"))
		switch r.URL.Path {
		case "/uapi/domestic-stock/v1/trading/inquire-psbl-order":
			assert.Equal(t, "TTTC8908R", r.Header.Get("tr_id"))
			assert.Equal(t, "01", q.Get("ORD_DVSN"))
			if q.Get("PDNO") == "000001" {
				_, _ = w.Write([]byte(`{"rt_cd":"1","msg1":"not orderable"}`))
				return
			}
			_, _ = w.Write([]byte(`{"rt_cd":"0","output":{}}`))
		case "/uapi/domestic-stock/v1/trading/intgr-margin":
			assert.Equal(t, "TTTC0869R", r.Header.Get("tr_id"))
			_, _ = w.Write([]byte(`{"rt_cd":"0","output":{"acmga_rt":"40.00"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	c := newTestClient(server, "1234567801")
	require.True(t, c.HasAccount())

	ok, msg, err := c.CheckOrderable(context.Background(), "005930")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg, err = c.CheckOrderable(context.Background(), "000001")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "not orderable", msg)

	rate, err := c.FetchMarginRate(context.Background(), "005930")
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 40.0, *rate)
}

func TestAccountNotConfigured(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{AppKey: "key", AppSecret: "secret", AccountNo: "12345"}, http.DefaultClient, nil, nil)
	assert.False(t, c.HasAccount())

	_, _, err := c.CheckOrderable(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrAccountNotConfigured)
	_, err = c.FetchMarginRate(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrAccountNotConfigured)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("KIS_APP_KEY", " key ")
	t.Setenv("KIS_APP_SECRET", "secret")
	t.Setenv("KIS_ACCOUNT_NO", "1234567801")
	t.Setenv("KIS_BASE_URL", "")
	t.Setenv("KIS_TOKEN_TTL", "6h")

	cfg := LoadConfig()
	assert.Equal(t, "key", cfg.AppKey)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 6*time.Hour, cfg.TokenTTL)
}
