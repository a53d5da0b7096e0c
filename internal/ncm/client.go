// Package ncm is the HTTP client for the third-party cloud-music REST API.
// Every call is a GET with a millisecond timestamp parameter and the stored
// session cookie; responses are JSON envelopes with a numeric code field that
// callers inspect themselves.
package ncm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cloudtune/internal/core"
)

const (
	// StatusOK is the upstream success code.
	StatusOK = 200
	// statusAwaitingScan is returned while a login QR code waits to be
	// scanned; it is the one non-200 code that is not worth a warning.
	statusAwaitingScan = 801

	// maxResponseSize bounds how much of a response body we read.
	maxResponseSize = 4 << 20
)

type Client struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(config *core.APIConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		cookie:  CookieHeader(config.Cookie),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// SetCookie replaces the session cookie, e.g. after a QR login.
func (c *Client) SetCookie(raw string) {
	c.cookie = CookieHeader(raw)
}

// CookieHeader reduces a raw Set-Cookie style string to the name=value pairs
// worth sending back, dropping cookie attributes.
func CookieHeader(raw string) string {
	var pairs []string
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" || !strings.Contains(item, "=") {
			continue
		}
		if hasAttributePrefix(item) {
			continue
		}
		name, value, _ := strings.Cut(item, "=")
		if value == "" {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; ")
}

func hasAttributePrefix(item string) bool {
	for _, prefix := range []string{"Max-Age=", "Expires=", "Path=", "HTTPOnly", "Domain="} {
		if strings.HasPrefix(item, prefix) {
			return true
		}
	}
	return false
}

// envelope carries the numeric status code every upstream response starts
// with. Response structs embed it.
type envelope struct {
	Code int `json:"code"`
}

func (e envelope) status() int { return e.Code }

type response interface {
	status() int
}

// get issues one API call and decodes the JSON envelope into out. A non-200
// code is logged, not returned as an error: callers inspect the code.
// Transport and decode failures are returned to the caller.
func (c *Client) get(ctx context.Context, path string, params url.Values, out response) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	if code := out.status(); code != StatusOK && code != statusAwaitingScan {
		c.logger.Warn("API request returned non-success code",
			zap.String("endpoint", path),
			zap.Int("code", code))
	}
	return nil
}
