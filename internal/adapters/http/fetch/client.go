// Package fetch retrieves the rewards page, its script bundle and the JSON
// reward documents.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "rewardscan/1.0"
	defaultMaxBody   = 64 << 20
)

// Client performs the GET requests of a scan.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
	logger    logger.Logger
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	next := c.http.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = metricsTransport{next: next}
	c.http = &hc
	return c
}

// FetchText returns the body of url as text.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url, "text/html,application/javascript,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchEntries decodes url as a JSON array of objects. Numbers are kept as
// json.Number so large amounts survive without rounding.
func (c *Client) FetchEntries(ctx context.Context, url string) ([]model.Entry, error) {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, url, err)
	}

	entries := make([]model.Entry, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		entries = append(entries, model.Entry(m))
	}
	c.logger.Debug(ctx, "fetched entries", logger.String("url", url), logger.Int("entries", len(entries)))
	return entries, nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, c.maxBody)
	}
	return body, nil
}
