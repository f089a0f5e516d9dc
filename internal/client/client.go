// Package client talks to the dCache REST API (frontend, /api/v1).
//
// Every operation is a path template, a typed parameter struct that is
// encoded into the query string and one HTTP verb. Operations are grouped
// into services the same way the frontend groups its resources.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dcache-admin/internal/logger"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// ErrNoLocation is returned when a create call succeeds but the response
// does not say where the new resource lives.
var ErrNoLocation = errors.New("response carries no Location header")

// APIError is returned for every response outside the 2xx range.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := errors.AsType[*APIError](err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	base    string
	http    *http.Client
	stream  *http.Client
	watcher *certWatcher

	Alarms      *AlarmsService
	Billing     *BillingService
	Cells       *CellsService
	Events      *EventsService
	Identity    *IdentityService
	Namespace   *NamespaceService
	PoolManager *PoolManagerService
	Pools       *PoolsService
	QoS         *QoSService
	Space       *SpaceService
	Transfers   *TransfersService
}

type service struct {
	client *Client
}

// NewWithHTTPClient wraps an already configured http.Client. The same
// client is used for the event stream.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}

	c := &Client{
		base:   strings.TrimSuffix(baseURL, "/"),
		http:   hc,
		stream: hc,
	}
	c.init()
	return c
}

func (c *Client) init() {
	s := service{client: c}
	c.Alarms = &AlarmsService{s}
	c.Billing = &BillingService{s}
	c.Cells = &CellsService{s}
	c.Events = &EventsService{s}
	c.Identity = &IdentityService{s}
	c.Namespace = &NamespaceService{s}
	c.PoolManager = &PoolManagerService{s}
	c.Pools = &PoolsService{s}
	c.QoS = &QoSService{s}
	c.Space = &SpaceService{s}
	c.Transfers = &TransfersService{s}
}

// HTTPClient returns the authenticated client shared by every call. It is
// not modified after construction and is safe for concurrent use.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// BaseURL returns the service URL the client was created with.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) Close() {
	if c.watcher != nil {
		c.watcher.Close()
	}
	c.http.CloseIdleConnections()
	if c.stream != c.http {
		c.stream.CloseIdleConnections()
	}
}

func (c *Client) endpoint(p string, params any) (string, error) {
	u := c.base + apiPrefix + p

	if params == nil {
		return u, nil
	}

	v, err := query.Values(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	if len(v) > 0 {
		u += "?" + v.Encode()
	}

	return u, nil
}

// call performs one API operation. body is JSON encoded when not nil, out
// receives the decoded JSON response when not nil. The response headers are
// returned for create operations that report the new resource in Location.
func (c *Client) call(ctx context.Context, method, p string, params, body, out any) (http.Header, error) {
	u, err := c.endpoint(p, params)
	if err != nil {
		return nil, err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	logger.Log.Debug("api call",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.Header, &APIError{
			Method:     method,
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.Header, fmt.Errorf("failed to decode response of %s %s: %w", method, u, err)
		}
	}

	return resp.Header, nil
}

func (c *Client) get(ctx context.Context, p string, params, out any) error {
	_, err := c.call(ctx, http.MethodGet, p, params, nil, out)
	return err
}

// create posts body and returns the Location of the created resource.
func (c *Client) create(ctx context.Context, p string, body any) (string, error) {
	h, err := c.call(ctx, http.MethodPost, p, nil, body, nil)
	if err != nil {
		return "", err
	}

	loc := h.Get("Location")
	if loc == "" {
		return "", ErrNoLocation
	}

	return c.resolve(loc), nil
}

// resolve makes a Location header absolute against the service URL.
func (c *Client) resolve(loc string) string {
	base, err := url.Parse(c.base + "/")
	if err != nil {
		return loc
	}
	ref, err := url.Parse(loc)
	if err != nil {
		return loc
	}
	return base.ResolveReference(ref).String()
}

// seg escapes a single path segment.
func seg(s string) string {
	return url.PathEscape(s)
}

// escapePath escapes every segment of a namespace path, keeping the
// separators.
func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func (c *Client) getRaw(ctx context.Context, p string, params any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.get(ctx, p, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, method, p string, params, body any) (json.RawMessage, error) {
	var out json.RawMessage
	if _, err := c.call(ctx, method, p, params, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
