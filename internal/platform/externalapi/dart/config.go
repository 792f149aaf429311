// Package dart provides a client for the DART (Data Analysis, Retrieval and
// Transfer) disclosure API.
package dart

import (
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is the production DART open API endpoint.
const DefaultBaseURL = "https://opendart.fss.or.kr/api"

// Config holds configuration for the DART API client.
type Config struct {
	APIKey    string        // DART_API_KEY
	BaseURL   string        // DART_BASE_URL
	Timeout   time.Duration // per-request timeout
	RateLimit int           // calls per second, zero disables pacing
}

// LoadConfig loads DART configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:    strings.TrimSpace(os.Getenv("DART_API_KEY")),
		BaseURL:   os.Getenv("DART_BASE_URL"),
		Timeout:   20 * time.Second,
		RateLimit: 10,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg
}
