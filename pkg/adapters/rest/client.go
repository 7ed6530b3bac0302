package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/cirrus/pkg/core"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// ClientConfig holds the configuration for the HTTP remote.
type ClientConfig struct {
	BaseURL    string // collection URL, e.g. https://example.com/notes
	APIKey     string // sent as a bearer token when set
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements core.Remote over HTTP.
type Client struct {
	base    *url.URL
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.Code, http.StatusText(e.Code), e.Body)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
}

// NewClient creates a new HTTP remote.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", base.Scheme)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

// BaseURL returns the collection URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Ping implements core.Pinger.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, c.base.String(), nil, nil)
}

// FetchAll implements core.Remote.
func (c *Client) FetchAll(ctx context.Context) ([]core.Note, error) {
	var records []Record
	if err := c.do(ctx, http.MethodGet, c.base.String(), nil, &records); err != nil {
		return nil, err
	}
	notes := make([]core.Note, 0, len(records))
	for _, r := range records {
		notes = append(notes, r.note())
	}
	return notes, nil
}

// Create implements core.Remote.
func (c *Client) Create(ctx context.Context, n core.Note) (core.Note, error) {
	var out Record
	if err := c.do(ctx, http.MethodPost, c.base.String(), toRecord(n), &out); err != nil {
		return core.Note{}, err
	}
	return out.note(), nil
}

// Update implements core.Remote.
func (c *Client) Update(ctx context.Context, id string, n core.Note) (core.Note, error) {
	n.ID = id
	var out Record
	if err := c.do(ctx, http.MethodPut, c.noteURL(id), toRecord(n), &out); err != nil {
		return core.Note{}, err
	}
	return out.note(), nil
}

// Delete implements core.Remote. A note already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, c.noteURL(id), nil, nil)
	if isStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

// isStatus reports whether err carries a *StatusError with the given code.
func isStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func (c *Client) noteURL(id string) string {
	return c.base.JoinPath(url.PathEscape(id)).String()
}

func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(MutationHeader, uuid.NewString())
	}

	c.logger.Debug("remote request", "method", method, "url", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(msg)),
		}
	}

	if out == nil || method == http.MethodHead {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var _ core.Remote = (*Client)(nil)
var _ core.Pinger = (*Client)(nil)
