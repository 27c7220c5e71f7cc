// Package storefront implements the cart HTTP boundary: a fixed third-party
// contract for fetching and mutating the server-side cart.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cartdrawer/internal/cart"
	"cartdrawer/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// Endpoint paths of the cart contract. They are owned by the platform, not by
// this client.
const (
	cartPath   = "/cart.js"
	addPath    = "/cart/add.js"
	changePath = "/cart/change.js"
)

// Config holds client settings.
type Config struct {
	// BaseURL is the storefront origin, e.g. "https://shop.example.com".
	BaseURL string
	// Timeout bounds each request when the caller's context carries no
	// deadline.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns sensible defaults for a storefront origin.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Timeout:   30 * time.Second,
		UserAgent: "cartdrawer/1.0",
	}
}

// Client talks to the cart endpoints. It implements cart.API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	flight     singleflight.Group
}

// New creates a client with default configuration.
func New(baseURL string) *Client {
	return NewWithConfig(DefaultConfig(baseURL))
}

// NewWithConfig creates a client with custom configuration.
func NewWithConfig(config Config) *Client {
	return &Client{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetCart fetches the current cart. Concurrent fetches are deduplicated into
// a single request; every caller receives the same response.
func (c *Client) GetCart(ctx context.Context) (*cart.Cart, error) {
	v, err, _ := c.flight.Do("cart", func() (interface{}, error) {
		return c.fetchCart(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Cart), nil
}

func (c *Client) fetchCart(ctx context.Context) (*cart.Cart, error) {
	body, err := c.do(ctx, http.MethodGet, cartPath, nil)
	if err != nil {
		return nil, err
	}

	var crt cart.Cart
	if err := json.Unmarshal(body, &crt); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &crt, nil
}

// addRequest is the body of POST /cart/add.js.
type addRequest struct {
	ID         int64             `json:"id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties"`
}

// AddItem adds quantity of a variant to the cart. The response body (the
// added item) is ignored; callers re-fetch the cart for authoritative state.
func (c *Client) AddItem(ctx context.Context, variantID int64, quantity int, properties map[string]string) error {
	if properties == nil {
		properties = map[string]string{}
	}
	_, err := c.do(ctx, http.MethodPost, addPath, addRequest{
		ID:         variantID,
		Quantity:   quantity,
		Properties: properties,
	})
	return err
}

// changeRequest is the body of POST /cart/change.js. ID is the line key.
type changeRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// ChangeItem sets the quantity of the line identified by key and returns the
// resulting cart. Quantity 0 removes the line.
func (c *Client) ChangeItem(ctx context.Context, key string, quantity int) (*cart.Cart, error) {
	body, err := c.do(ctx, http.MethodPost, changePath, changeRequest{ID: key, Quantity: quantity})
	if err != nil {
		return nil, err
	}

	var crt cart.Cart
	if err := json.Unmarshal(body, &crt); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &crt, nil
}

// do issues one request and returns the response body. Non-2xx statuses are
// reported as *cart.BoundaryError carrying the body's description.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	timer := logging.StartTimer(logging.CategoryAPI, method+" "+path)
	defer timer.Stop()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.APIDebug("[%s] %s %s", requestID, method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIError("[%s] request failed: %v", requestID, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.APIError("[%s] %s %s -> %d", requestID, method, path, resp.StatusCode)
		return nil, &cart.BoundaryError{
			StatusCode:  resp.StatusCode,
			Description: errorDescription(body),
		}
	}

	return body, nil
}

// errorBody is the platform's error response shape. Description is the
// human-readable field; some deployments use message instead.
type errorBody struct {
	Description string `json:"description"`
	Message     string `json:"message"`
}

// errorDescription extracts a human-readable description from an error
// response body. Descriptions sometimes carry HTML markup, which is flattened
// to plain text for the toast. Returns "" when nothing usable is present.
func errorDescription(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	desc := eb.Description
	if desc == "" {
		desc = eb.Message
	}
	return strings.TrimSpace(flattenHTML(desc))
}

// flattenHTML strips markup from s, keeping the text content. Plain strings
// pass through unchanged.
func flattenHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
