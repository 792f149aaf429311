package kis

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"stock_ingest/internal/platform/externalapi/kis/dto"
	apihttp "stock_ingest/internal/platform/http"
	"stock_ingest/internal/platform/tokenstore"
	"stock_ingest/internal/shared/ratelimiter"
)

// ProviderName is stored as the source of every KIS record.
const ProviderName = "kis"

// ErrTokenMissing is returned when the token endpoint answers without a token.
var ErrTokenMissing = errors.New("kis: access_token not issued")

// Client is a KIS open API client. One access token is issued on first use
// and reused until Config.TokenTTL elapses.
type Client struct {
	cfg     Config
	client  *http.Client
	tokens  tokenstore.Store
	limiter ratelimiter.Limiter

	mu sync.Mutex // serializes token issuance
}

// NewClient creates a Client. A nil tokens store keeps tokens in memory.
func NewClient(cfg Config, client *http.Client, tokens tokenstore.Store, limiter ratelimiter.Limiter) *Client {
	if tokens == nil {
		tokens = tokenstore.NewMemoryStore()
	}
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(0, 0)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, client: client, tokens: tokens, limiter: limiter}
}

func (c *Client) tokenKey() string {
	sum := sha256.Sum256([]byte(c.cfg.BaseURL + "|" + c.cfg.AppKey))
	return hex.EncodeToString(sum[:8])
}

// token returns a cached access token or issues a new one.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.tokenKey()
	if tok, ok, err := c.tokens.Get(ctx, key); err != nil {
		return "", err
	} else if ok {
		return tok, nil
	}

	payload, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.cfg.AppKey,
		"appsecret":  c.cfg.AppSecret,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/oauth2/tokenP", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var body dto.TokenResponse
	if err := apihttp.DoJSON(c.client, req, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", ErrTokenMissing
	}
	if err := c.tokens.Set(ctx, key, body.AccessToken, c.cfg.TokenTTL); err != nil {
		return "", err
	}
	return body.AccessToken, nil
}

// get calls a KIS GET endpoint identified by path and transaction id.
func (c *Client) get(ctx context.Context, path, trID string, params url.Values) (dto.Response, error) {
	var body dto.Response
	if err := c.limiter.Wait(ctx); err != nil {
		return body, err
	}
	tok, err := c.token(ctx)
	if err != nil {
		return body, err
	}

	u := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return body, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("appkey", c.cfg.AppKey)
	req.Header.Set("appsecret", c.cfg.AppSecret)
	req.Header.Set("tr_id", trID)

	if err := apihttp.DoJSON(c.client, req, &body); err != nil {
		return body, err
	}
	return body, nil
}

// objectOutput decodes raw into out when raw is a JSON object.
func objectOutput(raw json.RawMessage, out any) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// listOutput splits raw into its elements when raw is a non-empty JSON array.
func listOutput(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
