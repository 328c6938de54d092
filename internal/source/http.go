package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/logger"
)

const maxBodyBytes = 32 << 20

// HTTPSource reads rows from the Apps Script JSON endpoint.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ RowSource = (*HTTPSource)(nil)

// NewHTTPSource creates a source for the given read URL. A nil httpClient
// gets a client with a 30 second timeout.
func NewHTTPSource(url string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{
		url:        url,
		httpClient: httpClient,
		log:        logger.WithComponent("source"),
	}
}

// Fetch performs the GET and returns the raw body once the status and JSON
// shape have been checked.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	const op = "Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrUpstreamStatus, resp.StatusCode)
	}

	if _, err := decodeRows(body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug().
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched facturas from read endpoint")

	return body, nil
}

// FetchRows implements RowSource.
func (s *HTTPSource) FetchRows(ctx context.Context) ([]factura.RawRow, error) {
	const op = "FetchRows"

	body, err := s.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// decodeRows parses a JSON array of objects. Numbers stay json.Number so
// serial dates and amounts keep their exact text.
func decodeRows(body []byte) ([]factura.RawRow, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rows []factura.RawRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if rows == nil {
		return nil, fmt.Errorf("%w: expected an array", ErrInvalidPayload)
	}
	return rows, nil
}
