package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/platform/externalapi/dart/dto"
	apihttp "stock_ingest/internal/platform/http"
	"stock_ingest/internal/shared/dates"
	"stock_ingest/internal/shared/ratelimiter"
)

// ProviderName is stored as the source of every DART record.
const ProviderName = "dart"

const (
	eventType     = "dart_disclosure"
	eventSeverity = 3
	pageCount     = "100"
	statusOK      = "000"
)

// ErrCorpCodeArchive is returned when corpCode.xml is not a readable archive.
var ErrCorpCodeArchive = errors.New("dart: corpCode archive could not be parsed")

// Client is a DART open API client.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
	now     func() time.Time
}

// NewClient creates a Client.
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *Client {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(0, 0)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, client: client, limiter: limiter, now: time.Now}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params.Set("crtfc_key", c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	return apihttp.Do(c.client, req)
}

// ListCorporations downloads the corporation registry and returns every
// listed corporation, keyed by its normalized stock code.
func (c *Client) ListCorporations(ctx context.Context) ([]entity.Symbol, error) {
	body, err := c.get(ctx, "/corpCode.xml", url.Values{})
	if err != nil {
		return nil, err
	}
	doc, err := readCorpCodeArchive(body)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Symbol, 0, len(doc.List))
	for _, corp := range doc.List {
		code, ok := entity.NormalizeCode(corp.StockCode)
		if !ok {
			continue
		}
		out = append(out, entity.Symbol{
			Code:         code,
			Name:         strings.TrimSpace(corp.CorpName),
			DARTCorpCode: strings.TrimSpace(corp.CorpCode),
		})
	}
	return out, nil
}

func readCorpCodeArchive(body []byte) (*dto.CorpCodeFile, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil || len(zr.File) == 0 {
		return nil, ErrCorpCodeArchive
	}
	f, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpCodeArchive, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpCodeArchive, err)
	}
	var doc dto.CorpCodeFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dart: decode corpCode xml: %w", err)
	}
	return &doc, nil
}

// FetchEvents lists the filings of corpCode received in [begin, end]
// (YYYYMMDD). A non-success status yields no events. Returned events carry
// no instrument code; the caller assigns it.
func (c *Client) FetchEvents(ctx context.Context, corpCode, begin, end string) ([]entity.Event, error) {
	params := url.Values{}
	params.Set("corp_code", corpCode)
	params.Set("bgn_de", begin)
	params.Set("end_de", end)
	params.Set("page_count", pageCount)

	body, err := c.get(ctx, "/list.json", params)
	if err != nil {
		return nil, err
	}
	var res dto.DisclosureList
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("dart: decode list.json: %w", err)
	}
	if res.Status != statusOK {
		return nil, nil
	}

	events := make([]entity.Event, 0, len(res.List))
	for _, raw := range res.List {
		var d dto.Disclosure
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		id := strings.TrimSpace(d.ReceiptNo)
		if id == "" {
			continue
		}
		headline := strings.TrimSpace(d.ReportName)
		if headline == "" {
			headline = "DART disclosure"
		}
		events = append(events, entity.Event{
			Time:            c.receiptTime(d.ReceiptDt),
			Type:            eventType,
			Severity:        eventSeverity,
			Headline:        headline,
			Summary:         strings.TrimSpace(d.FilerName),
			Provider:        ProviderName,
			ProviderEventID: id,
			Raw:             raw,
		})
	}
	return events, nil
}

// receiptTime is the receipt day at UTC midnight, or now when unparsable.
func (c *Client) receiptTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if dates.IsCompact(value) {
		if t, err := dates.ParseCompact(value); err == nil {
			return t
		}
	}
	return c.now().UTC()
}
