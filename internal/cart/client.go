package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the storefront API over HTTP. It implements Backend for
// cart reconciliation and OrderBackend for checkout.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a Client for the given API base URL. The token is
// sent as a bearer credential on order placement; cart endpoints do not
// require it.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type cartResponse struct {
	UserID string `json:"user_id"`
	Items  []Line `json:"items"`
}

// Fetch reads the stored cart for the user.
func (c *Client) Fetch(ctx context.Context, userID string) ([]Line, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cart/"+userID, nil)
	if err != nil {
		return nil, err
	}

	var resp cartResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

type pushRequest struct {
	Items []Line `json:"items"`
}

// Push replaces the stored cart with the given lines.
func (c *Client) Push(ctx context.Context, userID string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}

	body, err := json.Marshal(pushRequest{Items: lines})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/cart/"+userID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

type placeOrderResponse struct {
	Data OrderConfirmation `json:"data"`
}

// PlaceOrder submits the checkout payload and returns the server's
// confirmation with the authoritative total.
func (c *Client) PlaceOrder(ctx context.Context, order OrderRequest) (OrderConfirmation, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return OrderConfirmation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return OrderConfirmation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var resp placeOrderResponse
	if err := c.do(req, &resp); err != nil {
		return OrderConfirmation{}, err
	}
	return resp.Data, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
