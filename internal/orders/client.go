package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/openmerce/storefront/pkg/errors"
	"github.com/openmerce/storefront/pkg/httpclient"
	"github.com/openmerce/storefront/pkg/tracing"
	"github.com/openmerce/storefront/pkg/validator"
)

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CredentialSource yields the session's bearer token.
type CredentialSource interface {
	Get(ctx context.Context) (string, error)
}

// Client talks to the order backend. Every call authenticates with the
// session credential; a missing token or a 401 response surfaces as an
// error matching apperrors.ErrUnauthorized so callers run the
// session-expiry recovery instead of showing a generic failure.
//
// Listing scope (the caller's own orders vs. every order) is decided
// server-side from the token's role; there is a single endpoint.
type Client struct {
	http    HTTPDoer
	baseURL string
	creds   CredentialSource
	logger  *slog.Logger
}

// NewClient creates an order backend client.
func NewClient(doer HTTPDoer, baseURL string, creds CredentialSource, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: baseURL,
		creds:   creds,
		logger:  logger,
	}
}

// List fetches the order collection visible to the current credential.
func (c *Client) List(ctx context.Context) ([]Order, error) {
	ctx, span := tracing.Tracer("storefront/orders").Start(ctx, "orders.list")
	defer span.End()

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call order backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "orders")
	}

	var result []Order
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}

	c.logger.DebugContext(ctx, "orders fetched",
		slog.Int("count", len(result)),
	)

	return result, nil
}

// Create submits an order-creation request and returns the created order
// snapshot. Backends that respond with only an identifier still yield a
// usable result.
func (c *Client) Create(ctx context.Context, request Request) (*Order, error) {
	ctx, span := tracing.Tracer("storefront/orders").Start(ctx, "orders.create")
	defer span.End()

	if err := validator.Validate(request); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call order backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "orders")
	}

	var created Order
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode created order: %w", err)
	}

	c.logger.InfoContext(ctx, "order created",
		slog.String("order_id", created.OrderID),
	)

	return &created, nil
}

// UpdateStatus asks the backend to move an order to the given lifecycle
// status (administrator operation). The status string is passed through
// unmodified; the backend owns the permitted vocabulary.
func (c *Client) UpdateStatus(ctx context.Context, orderID, status string) error {
	ctx, span := tracing.Tracer("storefront/orders").Start(ctx, "orders.update_status")
	defer span.End()

	if orderID == "" {
		return apperrors.InvalidInput("order id is required")
	}
	if status == "" {
		return apperrors.InvalidInput("status is required")
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("marshal status request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/orders/"+orderID+"/status", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call order backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, "orders")
	}

	c.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("status", status),
	)

	return nil
}

// token returns the stored credential or an unauthorized error, so the
// absence of a token short-circuits before any network call.
func (c *Client) token(ctx context.Context) (string, error) {
	token, err := c.creds.Get(ctx)
	if err != nil || token == "" {
		return "", apperrors.Unauthorized("login required")
	}
	return token, nil
}
