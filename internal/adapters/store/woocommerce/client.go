// Package woocommerce implements the order store over the WooCommerce
// REST API (wc/v3).
package woocommerce

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
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// APIPath is the REST namespace every endpoint lives under
const APIPath = "/wp-json/wc/v3"

// MaxPageSize is the largest per_page the API accepts
const MaxPageSize = 100

// RequestIDHeader carries the invocation's run id
const RequestIDHeader = "X-Request-ID"

// Config configures a Client
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	RetryMax       int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	PageSize       int
	Location       *time.Location
	RequestID      string
}

// APIError is a non-2xx response from the store
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("WooCommerce API error: %s (code: %s, status: %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("WooCommerce API returned status %d", e.StatusCode)
}

// Client is a store.Store backed by the REST API
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	cfg     Config
	loc     *time.Location
	logger  *slog.Logger
}

var _ store.Store = (*Client)(nil)

// NewClient creates a REST client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("woocommerce: base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("woocommerce: invalid base URL %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", "woocommerce")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		hc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		hc.RetryWaitMax = cfg.RetryWaitMax
	}
	hc.HTTPClient.Timeout = cfg.Timeout
	hc.Logger = logger
	// Hand the final response back so API errors can be decoded
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + APIPath,
		cfg:     cfg,
		loc:     loc,
		logger:  logger,
	}, nil
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id int64) (*store.Order, error) {
	var wire Order
	if _, err := c.do(ctx, http.MethodGet, orderPath(id), nil, nil, &wire); err != nil {
		return nil, err
	}
	return ToStore(wire, c.loc)
}

// UpdateOrderStatus transitions an order. WooCommerce records the order
// note and sends notifications.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, code string) error {
	var wire Order
	body := StatusUpdate{Status: status.Normalize(code)}
	if _, err := c.do(ctx, http.MethodPut, orderPath(id), nil, body, &wire); err != nil {
		return err
	}
	c.logger.Debug("Order status updated", "order_id", id, "status", wire.Status)
	return nil
}

// QueryOrders pages through /orders. Date bounds are widened to the
// API's exclusive after/before and then applied exactly in memory.
func (c *Client) QueryOrders(ctx context.Context, q store.Query) ([]*store.Order, error) {
	params := c.queryParams(q)
	limit := q.PerPage

	var out []*store.Order
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))

		var batch []Order
		header, err := c.do(ctx, http.MethodGet, "/orders", params, nil, &batch)
		if err != nil {
			return nil, err
		}

		for _, w := range batch {
			o, err := ToStore(w, c.loc)
			if err != nil {
				return nil, err
			}
			if !q.Matches(o) {
				continue
			}
			out = append(out, o)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}

		totalPages, _ := strconv.Atoi(header.Get("X-WP-TotalPages"))
		if len(batch) < c.cfg.PageSize || (totalPages > 0 && page >= totalPages) {
			break
		}
	}

	c.logger.Debug("Queried orders", "status", q.Status, "count", len(out))
	return out, nil
}

func (c *Client) queryParams(q store.Query) url.Values {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(c.cfg.PageSize))
	params.Set("orderby", "date")
	params.Set("order", "desc")
	if q.Status != "" {
		params.Set("status", status.Normalize(q.Status))
	} else {
		params.Set("status", "any")
	}

	for _, d := range q.Dates {
		t := d.Time(c.loc)
		switch d.Compare {
		case store.OnOrAfter:
			params.Set("after", t.Add(-time.Second).Format(DateLayout))
		case store.After:
			params.Set("after", t.Format(DateLayout))
		case store.OnOrBefore:
			params.Set("before", t.Add(time.Second).Format(DateLayout))
		case store.Before:
			params.Set("before", t.Format(DateLayout))
		}
	}
	return params
}

// OrderStatuses reads the registered statuses from the order totals report
func (c *Client) OrderStatuses(ctx context.Context) (status.Set, error) {
	var totals []StatusTotal
	if _, err := c.do(ctx, http.MethodGet, "/reports/orders/totals", nil, nil, &totals); err != nil {
		return status.Set{}, err
	}
	return StatusesToStore(totals), nil
}

// PaymentGateways lists every gateway, enabled or not
func (c *Client) PaymentGateways(ctx context.Context) (store.Gateways, error) {
	var gateways []PaymentGateway
	if _, err := c.do(ctx, http.MethodGet, "/payment_gateways", nil, nil, &gateways); err != nil {
		return nil, err
	}
	return GatewaysToStore(gateways), nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.http.HTTPClient.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.ConsumerKey != "" {
		req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	}
	if c.cfg.RequestID != "" {
		req.Header.Set(RequestIDHeader, c.cfg.RequestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.Header, nil
}

func decodeError(code int, raw []byte) error {
	apiErr := &APIError{StatusCode: code}
	var body ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	if code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", store.ErrNotFound, apiErr.Error())
	}
	return apiErr
}
