// Package proxy serves the dashboard's same-origin endpoints.
//
// Two routes relay to the spreadsheet endpoints so the browser never calls
// them cross-origin:
//   - /api/fetchFacturas: GET, relays the read endpoint's JSON
//   - /api/marcarPagada: POST, forwards the body to the write endpoint
//
// When a Session is configured, a small JSON API over the loaded records is
// served as well (filtered list with summary, mark as paid, reload).
package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"estadocuenta/internal/logger"
	"estadocuenta/internal/session"
	"estadocuenta/internal/source"
)

// Options configures a Server.
type Options struct {
	// ReadURL and WriteURL are the spreadsheet endpoints being proxied.
	ReadURL  string
	WriteURL string

	// HTTPClient is used for upstream calls. Defaults to a 30 second timeout.
	HTTPClient *http.Client

	// Session backs the /api/facturas routes. Optional.
	Session *session.Session
}

// Server routes the proxy and dashboard API.
type Server struct {
	router     *mux.Router
	reader     *source.HTTPSource
	writeURL   string
	httpClient *http.Client
	session    *session.Session
	log        zerolog.Logger
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	s := &Server{
		router:     mux.NewRouter(),
		reader:     source.NewHTTPSource(opts.ReadURL, opts.HTTPClient),
		writeURL:   opts.WriteURL,
		httpClient: opts.HTTPClient,
		session:    opts.Session,
		log:        logger.WithComponent("proxy"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(requestID)

	s.router.HandleFunc("/api/fetchFacturas", s.handleFetchFacturas).Methods(http.MethodGet)
	s.router.HandleFunc("/api/fetchFacturas", s.handleFetchNotAllowed)

	s.router.HandleFunc("/api/marcarPagada", s.handleMarcarPagada).Methods(http.MethodPost)
	s.router.HandleFunc("/api/marcarPagada", s.handleMarcarNotAllowed)

	if s.session == nil {
		return
	}
	api := s.router.PathPrefix("/api/facturas").Subrouter()
	api.HandleFunc("", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/recargar", s.handleReload).Methods(http.MethodPost)
	api.HandleFunc("/{nroFactura}/pagada", s.handleMarkPaid).Methods(http.MethodPost)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Proxy listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down proxy")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
