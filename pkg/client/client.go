// Package client is a typed HTTP client for the medstock API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000/api"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// statusSessionExpired is sent by some deployments instead of 401.
	statusSessionExpired = 419
	maxBodyBytes         = 8 << 20
)

// Client calls the medstock API on behalf of one user.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore sets where the bearer token is kept. Defaults to memory.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for session warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: &MemoryStore{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether a token is currently stored.
func (c *Client) Authenticated() bool {
	return c.tokens.Token() != ""
}

type envelope struct {
	Status  bool            `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Token   string          `json:"token"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// do sends a request and decodes the envelope. When out is non-nil the data
// member is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && path != "/login" {
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn("failed to clear token", "error", err)
		}
		return nil, ErrUnauthorized
	}
	if resp.StatusCode == statusSessionExpired {
		c.logger.Warn("session expired", "path", path)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var data struct {
		User      User   `json:"user"`
		ExpiresAt string `json:"expires_at"`
	}
	env, err := c.do(ctx, http.MethodPost, "/login", nil, map[string]string{
		"username": username,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	if env.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response carried no token"}
	}
	if err := c.tokens.Set(env.Token); err != nil {
		return nil, err
	}
	s := &Session{Token: env.Token, User: data.User}
	if t, err := time.Parse(time.RFC3339, data.ExpiresAt); err == nil {
		s.ExpiresAt = t
	}
	return s, nil
}

// Logout revokes the token server-side and forgets it locally. The local
// token is dropped even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if !c.Authenticated() {
		return ErrNotLoggedIn
	}
	_, err := c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
	if cerr := c.tokens.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if _, err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListMedicines returns the catalog. A non-empty query filters server-side.
func (c *Client) ListMedicines(ctx context.Context, query string) ([]Medicine, error) {
	var q url.Values
	if query != "" {
		q = url.Values{"q": {query}}
	}
	var items []Medicine
	if _, err := c.do(ctx, http.MethodGet, "/medicines", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetMedicine returns one medicine.
func (c *Client) GetMedicine(ctx context.Context, id string) (*Medicine, error) {
	var m Medicine
	if _, err := c.do(ctx, http.MethodGet, "/medicines/"+url.PathEscape(id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMedicine adds a medicine to the catalog.
func (c *Client) CreateMedicine(ctx context.Context, in MedicineInput) (*Medicine, error) {
	var m Medicine
	if _, err := c.do(ctx, http.MethodPost, "/medicines", nil, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMedicine applies a partial update.
func (c *Client) UpdateMedicine(ctx context.Context, id string, patch MedicinePatch) (*Medicine, error) {
	var m Medicine
	if _, err := c.do(ctx, http.MethodPut, "/medicines/"+url.PathEscape(id), nil, patch, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMedicine removes a medicine without transactions.
func (c *Client) DeleteMedicine(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/medicines/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// ListTransactions returns a page of the ledger, newest first.
func (c *Client) ListTransactions(ctx context.Context, f TransactionQuery) (*TransactionPage, error) {
	q := url.Values{}
	if f.MedicineID != "" {
		q.Set("medicine_id", f.MedicineID)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	var items []Transaction
	env, err := c.do(ctx, http.MethodGet, "/stock-transactions", q, nil, &items)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{Items: items, Total: env.Total, Limit: env.Limit, Offset: env.Offset}, nil
}

// CreateTransaction records a stock-in or dispense.
func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	var t Transaction
	if _, err := c.do(ctx, http.MethodPost, "/stock-transactions", nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransactionTypes returns the ledger enumeration.
func (c *Client) ListTransactionTypes(ctx context.Context) ([]TransactionType, error) {
	var types []TransactionType
	if _, err := c.do(ctx, http.MethodGet, "/transaction-types", nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// DailyReport returns the transactions of date (YYYY-MM-DD, empty for today).
func (c *Client) DailyReport(ctx context.Context, date string) (*DailyReport, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	var r DailyReport
	if _, err := c.do(ctx, http.MethodGet, "/reports/daily", q, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MonthlyReport returns one reconciliation row per medicine.
func (c *Client) MonthlyReport(ctx context.Context, year, month int) ([]MonthlyRow, error) {
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}}
	var rows []MonthlyRow
	if _, err := c.do(ctx, http.MethodGet, "/reports/monthly", q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CloseMonth finalizes a month and forwards positive closing stock.
func (c *Client) CloseMonth(ctx context.Context, year, month int) (*MonthCloseResult, error) {
	var res MonthCloseResult
	if _, err := c.do(ctx, http.MethodPost, "/reports/month-close", nil, map[string]int{
		"year":  year,
		"month": month,
	}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MonthCloses returns the close history, most recent first.
func (c *Client) MonthCloses(ctx context.Context) ([]MonthClose, error) {
	var items []MonthClose
	if _, err := c.do(ctx, http.MethodGet, "/reports/month-close", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ArchiveURL returns a short-lived download link for a closed month's CSV.
func (c *Client) ArchiveURL(ctx context.Context, year, month int) (string, error) {
	var data struct {
		URL string `json:"url"`
	}
	path := fmt.Sprintf("/reports/month-close/%d/%d/archive", year, month)
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return "", err
	}
	return data.URL, nil
}
