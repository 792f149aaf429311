package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"unicode/utf8"
)

// MaxErrorBody is how much of a failed response body is kept in an HTTPError.
const MaxErrorBody = 300

// HTTPError is a provider response with a 4xx/5xx status.
type HTTPError struct {
	StatusCode int
	URL        string // scheme, host and path; the query may carry credentials
	Body       string // truncated to MaxErrorBody bytes
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.URL, e.Body)
}

// NewHTTPError builds an HTTPError from res, consuming at most MaxErrorBody
// bytes of its body.
func NewHTTPError(res *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, MaxErrorBody))
	return &HTTPError{
		StatusCode: res.StatusCode,
		URL:        redact(res.Request),
		Body:       truncate(body),
	}
}

// Do executes req and returns the response body of a successful call.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", redact(req), err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, NewHTTPError(res)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", redact(req), err)
	}
	return body, nil
}

// DoJSON executes req and decodes a successful JSON response into out.
func DoJSON(client *http.Client, req *http.Request, out any) error {
	body, err := Do(client, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", redact(req), err)
	}
	return nil
}

func redact(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := url.URL{Scheme: req.URL.Scheme, Host: req.URL.Host, Path: req.URL.Path}
	return u.String()
}

// truncate cuts b to MaxErrorBody bytes without splitting a UTF-8 sequence.
func truncate(b []byte) string {
	if len(b) > MaxErrorBody {
		b = b[:MaxErrorBody]
	}
	for len(b) > 0 && !utf8.Valid(b) {
		b = b[:len(b)-1]
	}
	return string(b)
}
