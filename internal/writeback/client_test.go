package writeback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadocuenta/internal/factura"
)

func TestMarkPaidPostsInvoiceNumber(t *testing.T) {
	var got map[string]string
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "Factura A1 marcada como pagada")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	resp, err := c.MarkPaid(context.Background(), " A1 ")

	require.NoError(t, err)
	assert.Equal(t, "Factura A1 marcada como pagada", resp)
	assert.Equal(t, map[string]string{"nroFactura": "A1"}, got)
	assert.Equal(t, "application/json", contentType)
}

func TestMarkPaidRejectsEmptyNumber(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.MarkPaid(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrMissingInvoiceNumber)
	assert.Zero(t, calls)
}

func TestMarkPaidErrorStatusStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "Factura actualizada")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	resp, err := c.MarkPaid(context.Background(), "A1")

	require.NoError(t, err)
	assert.Equal(t, "Factura actualizada", resp)
}

func TestMarkPaidTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, &http.Client{Timeout: time.Second})
	_, err := c.MarkPaid(context.Background(), "A1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingInvoiceNumber)
}

func TestCreatePostsRow(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	resp, err := c.Create(context.Background(), factura.RawRow{
		factura.ColFactura: "Z9",
		factura.ColCliente: "Zeta",
		factura.ColDebe:    "SI",
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "Z9", got["FACTURA"])
	assert.Equal(t, "Zeta", got["CLIENTE"])

	_, err = c.Create(context.Background(), factura.RawRow{})
	assert.ErrorIs(t, err, ErrEmptyRow)
}

func TestDispatchWait(t *testing.T) {
	task := Dispatch(context.Background(), func(ctx context.Context) (string, error) {
		return "hecho", nil
	})

	res := task.Wait()
	assert.NoError(t, res.Err)
	assert.Equal(t, "hecho", res.Response)

	select {
	case <-task.Done():
	default:
		t.Fatal("Done should be closed after Wait returns")
	}
}

func TestDispatchCancel(t *testing.T) {
	started := make(chan struct{})
	task := Dispatch(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})

	<-started
	task.Cancel()
	task.Cancel()

	res := task.Wait()
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestDispatchCancelsInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, srv.Client())
	task := Dispatch(context.Background(), func(ctx context.Context) (string, error) {
		return c.MarkPaid(ctx, "A1")
	})
	task.Cancel()

	res := task.Wait()
	assert.ErrorIs(t, res.Err, context.Canceled)
}
