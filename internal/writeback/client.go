package writeback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/logger"
)

// maxResponseBytes caps how much of the endpoint's answer is kept.
const maxResponseBytes = 1 << 20

// markPaidRequest is the body the write endpoint expects for "mark as paid".
type markPaidRequest struct {
	InvoiceNumber string `json:"nroFactura"`
}

// Client talks to the write endpoint over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ Writer = (*Client)(nil)

// NewClient creates a write-back client. A nil httpClient gets a client with
// a 30 second timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		log:        logger.WithComponent("writeback"),
	}
}

// MarkPaid posts {"nroFactura": invoiceNumber} to the write endpoint.
func (c *Client) MarkPaid(ctx context.Context, invoiceNumber string) (string, error) {
	const op = "MarkPaid"

	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMissingInvoiceNumber)
	}

	resp, err := c.post(ctx, markPaidRequest{InvoiceNumber: invoiceNumber})
	if err != nil {
		c.log.Error().
			Err(err).
			Str("invoice_number", invoiceNumber).
			Msg("Failed to mark invoice as paid")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info().
		Str("invoice_number", invoiceNumber).
		Str("response", resp).
		Msg("Invoice marked as paid")

	return resp, nil
}

// Create posts the row as a JSON object to the write endpoint.
func (c *Client) Create(ctx context.Context, row factura.RawRow) (string, error) {
	const op = "Create"

	if len(row) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyRow)
	}

	resp, err := c.post(ctx, row)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.log.Debug().
		Interface("factura", row[factura.ColFactura]).
		Str("response", resp).
		Msg("Row created")

	return resp, nil
}

func (c *Client) post(ctx context.Context, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// The endpoint answers free text; whatever comes back counts as done.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Int("upstream_status", resp.StatusCode).
			Str("response", strings.TrimSpace(string(text))).
			Msg("Write endpoint answered with an error status")
	}

	return string(text), nil
}
