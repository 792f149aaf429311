// Package kis provides a client for the KIS (Korea Investment & Securities)
// open API: quotations, financial statements and margin lookups.
package kis

import (
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is the production KIS open API endpoint.
const DefaultBaseURL = "https://openapi.koreainvestment.com:9443"

// Config holds configuration for the KIS API client.
type Config struct {
	AppKey    string        // KIS_APP_KEY
	AppSecret string        // KIS_APP_SECRET
	AccountNo string        // KIS_ACCOUNT_NO, 8-digit account + 2-digit product code
	BaseURL   string        // KIS_BASE_URL
	Timeout   time.Duration // per-request timeout
	// TokenTTL is how long an issued access token is assumed valid. Zero keeps
	// it for the lifetime of the client.
	TokenTTL time.Duration
	// RateLimit caps calls per second; zero disables pacing.
	RateLimit int
}

// LoadConfig loads KIS configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		AppKey:    strings.TrimSpace(os.Getenv("KIS_APP_KEY")),
		AppSecret: strings.TrimSpace(os.Getenv("KIS_APP_SECRET")),
		AccountNo: strings.TrimSpace(os.Getenv("KIS_ACCOUNT_NO")),
		BaseURL:   os.Getenv("KIS_BASE_URL"),
		Timeout:   20 * time.Second,
		RateLimit: 15,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if ttl, err := time.ParseDuration(os.Getenv("KIS_TOKEN_TTL")); err == nil && ttl > 0 {
		cfg.TokenTTL = ttl
	}
	return cfg
}

// HasCredentials reports whether both the app key and secret are set.
func (c Config) HasCredentials() bool {
	return c.AppKey != "" && c.AppSecret != ""
}

// account splits the account number into CANO and ACNT_PRDT_CD.
func (c Config) account() (cano, product string, ok bool) {
	if len(c.AccountNo) < 10 {
		return "", "", false
	}
	return c.AccountNo[:8], c.AccountNo[8:10], true
}
