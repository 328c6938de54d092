package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"estadocuenta/internal/filter"
	"estadocuenta/internal/logger"
	"estadocuenta/internal/source"
	"estadocuenta/internal/writeback"
)

// Clock returns the current day used for aging.
type Clock func() time.Time

// Session shares the current State between goroutines.
type Session struct {
	mu     sync.RWMutex
	state  State
	loaded time.Time

	// loading counts reads in flight; paidDuringLoad holds the invoices
	// reconciled meanwhile, re-applied on top of the fresh records.
	loading        int
	paidDuringLoad map[string]struct{}

	source source.RowSource
	writer writeback.Writer
	clock  Clock
	log    zerolog.Logger
}

// NewSession creates a session with no records. A nil clock uses time.Now.
func NewSession(src source.RowSource, w writeback.Writer, clock Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		state:  New(clock()),
		source: src,
		writer: w,
		clock:  clock,
		log:    logger.WithComponent("session"),
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LoadedAt returns when the records were last loaded, zero if never.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Load replaces the records with a fresh read. On failure the error is
// logged and the previous records stay in place. Invoices marked paid while
// the read is in flight stay paid in the new records.
func (s *Session) Load(ctx context.Context) error {
	const op = "Session.Load"

	s.beginLoad()

	today := s.clock()
	records, err := source.Load(ctx, s.source, today)
	if err != nil {
		s.endLoad()
		s.log.Error().Err(err).Msg("Failed to load facturas, keeping previous records")
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	reapplied := 0
	for invoiceNumber := range s.paidDuringLoad {
		var n int
		records, n = MarkPaid(records, invoiceNumber)
		reapplied += n
	}
	s.state = s.state.WithRecords(records)
	s.state.Today = today
	s.loaded = time.Now()
	s.finishLoadLocked()
	s.mu.Unlock()

	s.log.Info().
		Int("records", len(records)).
		Int("reapplied_paid", reapplied).
		Time("today", today).
		Msg("Facturas loaded")

	return nil
}

func (s *Session) beginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading == 0 {
		s.paidDuringLoad = make(map[string]struct{})
	}
	s.loading++
}

func (s *Session) endLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLoadLocked()
}

func (s *Session) finishLoadLocked() {
	s.loading--
	if s.loading == 0 {
		s.paidDuringLoad = nil
	}
}

// SetCriteria replaces the active filters.
func (s *Session) SetCriteria(c filter.Criteria) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithCriteria(c)
	return s.state
}

// View renders the current records under the given filters without changing
// the session's own criteria.
func (s *Session) View(c filter.Criteria) View {
	return s.State().WithCriteria(c).View()
}

// MarkPaid sends the write-back and, only if it succeeds, flips the matching
// local records to PAGADO. The invoice number is trimmed first. Returns the endpoint response and the number of
// local records changed.
func (s *Session) MarkPaid(ctx context.Context, invoiceNumber string) (string, int, error) {
	const op = "Session.MarkPaid"

	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return "", 0, fmt.Errorf("%s: %w", op, writeback.ErrMissingInvoiceNumber)
	}

	log := logger.WithInvoice("session", invoiceNumber)

	resp, err := s.writer.MarkPaid(ctx, invoiceNumber)
	if err != nil {
		log.Error().Err(err).Msg("Write-back failed, local state unchanged")
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	changed := s.reconcilePaid(invoiceNumber)

	log.Info().
		Int("records_changed", changed).
		Msg("Factura reconciled as paid")

	return resp, changed, nil
}

// DispatchMarkPaid runs MarkPaid in the background. The returned task can be
// awaited, cancelled or ignored.
func (s *Session) DispatchMarkPaid(ctx context.Context, invoiceNumber string) *writeback.Task {
	return writeback.Dispatch(ctx, func(ctx context.Context) (string, error) {
		resp, _, err := s.MarkPaid(ctx, invoiceNumber)
		return resp, err
	})
}

func (s *Session) reconcilePaid(invoiceNumber string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading > 0 {
		s.paidDuringLoad[invoiceNumber] = struct{}{}
	}
	next, changed := s.state.WithPaid(invoiceNumber)
	s.state = next
	return changed
}
