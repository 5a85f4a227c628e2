// Package holded is the HTTP client for the Holded invoicing API, the only
// write target of the sync engine. All request/response shapes live in
// types.go; the client itself stays mechanical and returns the ledger's raw
// error payload wrapped in sentinel errors so callers can log it.
package holded

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client errors
var (
	ErrUnavailable     = errors.New("holded: api unavailable")
	ErrRequestFailed   = errors.New("holded: request failed")
	ErrInvalidResponse = errors.New("holded: invalid response")
	ErrRejected        = errors.New("holded: operation rejected")
	ErrInvalidDocType  = errors.New("holded: invalid document type")
)

// Client is an HTTP client bound to one Holded account
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new client for the given account configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// ListProducts returns one page of the account's products. Pages are
// 1-indexed; a page shorter than limit is the last one.
func (c *Client) ListProducts(ctx context.Context, page, limit int) ([]Product, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(limit))

	var products []Product
	if err := c.doRequest(ctx, http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product and returns its ledger id
func (c *Client) CreateProduct(ctx context.Context, payload ProductPayload) (string, error) {
	return c.doMutation(ctx, http.MethodPost, "/products", payload)
}

// UpdateProduct updates an existing product
func (c *Client) UpdateProduct(ctx context.Context, id string, payload ProductPayload) error {
	_, err := c.doMutation(ctx, http.MethodPut, "/products/"+url.PathEscape(id), payload)
	return err
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

// ListContacts returns one page of the account's contacts
func (c *Client) ListContacts(ctx context.Context, page, limit int) ([]Contact, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(limit))

	var contacts []Contact
	if err := c.doRequest(ctx, http.MethodGet, "/contacts", query, nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// SearchContacts returns the contacts matching the given query parameters
// (e.g. email, code, vatnumber)
func (c *Client) SearchContacts(ctx context.Context, query url.Values) ([]Contact, error) {
	var contacts []Contact
	if err := c.doRequest(ctx, http.MethodGet, "/contacts", query, nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateContact creates a contact and returns its ledger id
func (c *Client) CreateContact(ctx context.Context, payload ContactPayload) (string, error) {
	return c.doMutation(ctx, http.MethodPost, "/contacts", payload)
}

// ---------------------------------------------------------------------------
// Reference entities
// ---------------------------------------------------------------------------

// ListSalesChannels returns all sales channels of the account
func (c *Client) ListSalesChannels(ctx context.Context) ([]NamedRef, error) {
	return c.listNamedRefs(ctx, "/saleschannels")
}

// ListWarehouses returns all warehouses of the account
func (c *Client) ListWarehouses(ctx context.Context) ([]NamedRef, error) {
	return c.listNamedRefs(ctx, "/warehouses")
}

// ListPaymentMethods returns all payment methods of the account
func (c *Client) ListPaymentMethods(ctx context.Context) ([]NamedRef, error) {
	return c.listNamedRefs(ctx, "/paymentmethods")
}

func (c *Client) listNamedRefs(ctx context.Context, path string) ([]NamedRef, error) {
	var refs []NamedRef
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// CreateDocument creates a sales document of the given type and returns its id
func (c *Client) CreateDocument(ctx context.Context, docType DocType, payload DocumentPayload) (string, error) {
	if !docType.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocType, docType)
	}
	return c.doMutation(ctx, http.MethodPost, "/documents/"+docType.String(), payload)
}

// PayDocument registers a payment against an existing document
func (c *Client) PayDocument(ctx context.Context, docType DocType, id string, payload PaymentPayload) error {
	if !docType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDocType, docType)
	}
	path := "/documents/" + docType.String() + "/" + url.PathEscape(id) + "/pay"
	_, err := c.doMutation(ctx, http.MethodPost, path, payload)
	return err
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doMutation performs a write call and unwraps the ledger's status envelope
func (c *Client) doMutation(ctx context.Context, method, path string, payload interface{}) (string, error) {
	var resp apiResponse
	if err := c.doRequest(ctx, method, path, nil, payload, &resp); err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: %s", ErrRejected, resp.Info)
	}
	return resp.ID, nil
}

// doRequest performs an HTTP request against the invoicing API
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	endpoint := c.config.APIBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("holded: failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("holded: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("key", c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("holded: failed to read response: %w", err)
	}

	// The raw payload is kept in the error so item-level failures can be
	// logged with the ledger's own message.
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
