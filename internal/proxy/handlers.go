package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/filter"
	"estadocuenta/internal/logger"
	"estadocuenta/internal/writeback"
)

const maxRequestBytes = 1 << 20

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

func (s *Server) handleFetchFacturas(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	body, err := s.reader.Fetch(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch facturas from read endpoint")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "Error interno",
			Error:   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleFetchNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Método no permitido"})
}

// handleMarcarPagada forwards the body verbatim and relays the upstream text
// with 200 whatever the upstream status was.
func (s *Server) handleMarcarPagada(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeText(w, http.StatusInternalServerError, "Error en proxy: "+err.Error())
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.writeURL, bytes.NewReader(body))
	if err != nil {
		writeText(w, http.StatusInternalServerError, "Error en proxy: "+err.Error())
		return
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Error en proxy")
		writeText(w, http.StatusInternalServerError, "Error en proxy: "+err.Error())
		return
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxRequestBytes))
	if err != nil {
		log.Error().Err(err).Msg("Error en proxy")
		writeText(w, http.StatusInternalServerError, "Error en proxy: "+err.Error())
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("upstream_status", resp.StatusCode).
			Msg("Write endpoint answered with an error status")
	}

	writeText(w, http.StatusOK, string(text))
}

func (s *Server) handleMarcarNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusMethodNotAllowed, "Solo se permiten POST requests")
}

// criteriaFromQuery reads cliente, tab, desde and hasta.
func criteriaFromQuery(r *http.Request) (filter.Criteria, error) {
	q := r.URL.Query()

	tab, err := filter.ParseTab(q.Get("tab"))
	if err != nil {
		return filter.Criteria{}, err
	}
	c := filter.Criteria{Client: q.Get("cliente"), Tab: tab}

	parse := func(key string) (*time.Time, error) {
		v := q.Get(key)
		if v == "" {
			return nil, nil
		}
		t, err := factura.ParseQueryDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", key, v)
		}
		return &t, nil
	}
	if c.From, err = parse("desde"); err != nil {
		return filter.Criteria{}, err
	}
	if c.To, err = parse("hasta"); err != nil {
		return filter.Criteria{}, err
	}
	return c, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Parámetros inválidos", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.session.View(c))
}

type markPaidResponse struct {
	InvoiceNumber string `json:"nroFactura"`
	Response      string `json:"respuesta"`
	Updated       int    `json:"actualizadas"`
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	nro := strings.TrimSpace(mux.Vars(r)["nroFactura"])

	resp, changed, err := s.session.MarkPaid(r.Context(), nro)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, writeback.ErrMissingInvoiceNumber) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Message: "No se pudo marcar como pagada", Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, markPaidResponse{InvoiceNumber: nro, Response: resp, Updated: changed})
}

type reloadResponse struct {
	Count    int       `json:"cantidad"`
	LoadedAt time.Time `json:"cargado"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "Error al obtener datos", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Count:    len(s.session.State().Records),
		LoadedAt: s.session.LoadedAt(),
	})
}
