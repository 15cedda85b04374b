// Package client is a Go client for the inventory API. Client issues single
// requests with explicit credentials; Session keeps credentials and a cached
// inventory for one signed-in user.
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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kellerliste/domain/inventory"
)

// ErrNotSignedIn is returned by calls that need credentials when none are held
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx response. Body is the server's error text.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the inventory API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client for the API rooted at baseURL, including any stage
// prefix such as https://id.execute-api.eu-central-1.amazonaws.com/prod
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExchangeCode trades the code from the hosted UI redirect for credentials
func (c *Client) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	var out tokenResponse
	path := "/auth?" + url.Values{"code": {code}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return Credentials{}, err
	}
	return out.credentials(c.now()), nil
}

// Refresh implements TokenRefresher against POST /auth/refresh
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	var out tokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, body, &out); err != nil {
		return Credentials{}, err
	}
	return out.credentials(c.now()), nil
}

// Inventory fetches the caller's full inventory
func (c *Client) Inventory(ctx context.Context, creds Credentials) (inventory.Inventory, error) {
	var out struct {
		Inventory inventory.Inventory `json:"inventory"`
	}
	if err := c.do(ctx, http.MethodGet, "/items", &creds, nil, &out); err != nil {
		return nil, err
	}
	return out.Inventory, nil
}

// Item fetches one item and the category it was found in
func (c *Client) Item(ctx context.Context, creds Credentials, id string) (inventory.Category, inventory.Item, error) {
	var out struct {
		Category inventory.Category `json:"category"`
		Item     inventory.Item     `json:"item"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(id), &creds, nil, &out); err != nil {
		return "", inventory.Item{}, err
	}
	return out.Category, out.Item, nil
}

// AddItem appends item to category and returns it with its final id
func (c *Client) AddItem(ctx context.Context, creds Credentials, category inventory.Category, item inventory.Item) (inventory.Item, error) {
	body := struct {
		Category inventory.Category `json:"category"`
		Item     inventory.Item     `json:"item"`
	}{category, item}

	var out struct {
		Item inventory.Item `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/items", &creds, body, &out); err != nil {
		return inventory.Item{}, err
	}
	return out.Item, nil
}

// UpdateItem replaces the item with id
func (c *Client) UpdateItem(ctx context.Context, creds Credentials, id string, item inventory.Item) (inventory.Item, error) {
	body := struct {
		Item inventory.Item `json:"item"`
	}{item}

	var out struct {
		Item inventory.Item `json:"item"`
	}
	if err := c.do(ctx, http.MethodPatch, itemPath(id), &creds, body, &out); err != nil {
		return inventory.Item{}, err
	}
	return out.Item, nil
}

// RemoveItem deletes the item with id
func (c *Client) RemoveItem(ctx context.Context, creds Credentials, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), &creds, nil, nil)
}

func itemPath(id string) string {
	return "/items/" + url.PathEscape(id)
}

// do sends one request. creds is nil for the unauthenticated auth routes.
func (c *Client) do(ctx context.Context, method, path string, creds *Credentials, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		if !creds.Valid() {
			return ErrNotSignedIn
		}
		// the Cognito authorizer expects the raw ID token
		req.Header.Set("Authorization", creds.IDToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Body == "" {
		apiErr.Body = strings.TrimSpace(string(raw))
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
