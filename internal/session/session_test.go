package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/filter"
	"estadocuenta/internal/writeback"
)

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

type fakeSource struct {
	rows []factura.RawRow
	err  error
}

func (f *fakeSource) FetchRows(ctx context.Context) ([]factura.RawRow, error) {
	return f.rows, f.err
}

type fakeWriter struct {
	mu     sync.Mutex
	err    error
	marked []string
}

func (f *fakeWriter) MarkPaid(ctx context.Context, invoiceNumber string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.marked = append(f.marked, invoiceNumber)
	return "ok", nil
}

func (f *fakeWriter) Create(ctx context.Context, row factura.RawRow) (string, error) {
	return "ok", f.err
}

func rows() []factura.RawRow {
	return []factura.RawRow{
		{"FECHA": "2024-01-15", "FACTURA": "A1", "IMPORTE": "$1,234.50", "CLIENTE": "Acme", "DEBE": "SI"},
		{"FECHA": "2024-02-29", "FACTURA": "B7", "IMPORTE": "80", "CLIENTE": "Beta", "DEBE": "NO"},
		{"FECHA": "2024-03-01", "FACTURA": "C3", "IMPORTE": "50", "CLIENTE": "Acme", "DEBE": ""},
		{"FECHA": "2024-01-20", "FACTURA": "A1", "IMPORTE": "10", "CLIENTE": "Acme", "DEBE": "SI"},
	}
}

func loaded(t *testing.T, w *fakeWriter) *Session {
	t.Helper()
	s := NewSession(&fakeSource{rows: rows()}, w, clock)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestStateMarkPaid(t *testing.T) {
	records := factura.Build(rows(), today)

	out, changed := MarkPaid(records, "A1")

	assert.Equal(t, 2, changed)
	assert.Equal(t, factura.StatePaid, out[0].PaymentState)
	assert.Equal(t, "", out[0].OwedFlag)
	assert.Equal(t, factura.StatePaid, out[3].PaymentState)
	assert.Equal(t, out[1], records[1], "other records are untouched")

	assert.Equal(t, factura.StateUnpaid, records[0].PaymentState, "input is not modified")
	assert.Equal(t, "SI", records[0].OwedFlag)

	_, changed = MarkPaid(records, "ZZ")
	assert.Zero(t, changed)
}

func TestStateWithersDoNotShareSlices(t *testing.T) {
	base := New(today).WithRecords(factura.Build(rows(), today))

	paid, _ := base.WithPaid("B7")
	filtered := base.WithClient("beta").WithTab(filter.TabOwed)

	assert.Equal(t, factura.StatePending, base.Records[1].PaymentState)
	assert.Equal(t, factura.StatePaid, paid.Records[1].PaymentState)
	assert.Equal(t, "", base.Criteria.Client)
	assert.Equal(t, "beta", filtered.Criteria.Client)
	assert.Len(t, filtered.View().Records, 1)
}

func TestStateView(t *testing.T) {
	st := New(today).WithRecords(factura.Build(rows(), today))

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	v := st.WithRange(&from, nil).View()

	require.Len(t, v.Records, 2)
	assert.Equal(t, 2, v.Report.Summary.Count)
	assert.Len(t, v.Report.ByClient, 2, "client breakdown covers every record")
	assert.Equal(t, 2024, v.Report.Year)
}

func TestSessionLoad(t *testing.T) {
	s := loaded(t, &fakeWriter{})

	st := s.State()
	require.Len(t, st.Records, 4)
	assert.Equal(t, today, st.Today)
	assert.False(t, s.LoadedAt().IsZero())
}

func TestSessionLoadFailureKeepsRecords(t *testing.T) {
	src := &fakeSource{rows: rows()}
	s := NewSession(src, &fakeWriter{}, clock)
	require.NoError(t, s.Load(context.Background()))

	src.err = errors.New("read endpoint down")
	err := s.Load(context.Background())

	assert.Error(t, err)
	assert.Len(t, s.State().Records, 4)
}

func TestSessionMarkPaid(t *testing.T) {
	w := &fakeWriter{}
	s := loaded(t, w)

	before := s.View(filter.Criteria{Tab: filter.TabOwed})
	require.Len(t, before.Records, 3)

	resp, changed, err := s.MarkPaid(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, 2, changed)
	assert.Equal(t, []string{"A1"}, w.marked)

	after := s.View(filter.Criteria{Tab: filter.TabPaid})
	assert.Len(t, after.Records, 3)

	owed := s.View(filter.Criteria{Tab: filter.TabOwed})
	require.Len(t, owed.Records, 1)
	assert.Equal(t, "B7", owed.Records[0].InvoiceNumber)
}

func TestSessionMarkPaidReconcilesOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "Factura actualizada")
	}))
	defer srv.Close()

	s := NewSession(&fakeSource{rows: rows()}, writeback.NewClient(srv.URL, srv.Client()), clock)
	require.NoError(t, s.Load(context.Background()))

	resp, changed, err := s.MarkPaid(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "Factura actualizada", resp)
	assert.Equal(t, 2, changed)
	assert.Len(t, s.View(filter.Criteria{Tab: filter.TabPaid}).Records, 3)
}

func TestSessionMarkPaidTrimsInvoiceNumber(t *testing.T) {
	w := &fakeWriter{}
	s := loaded(t, w)

	_, changed, err := s.MarkPaid(context.Background(), " A1 ")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, []string{"A1"}, w.marked)

	owed := s.View(filter.Criteria{Tab: filter.TabOwed})
	require.Len(t, owed.Records, 1)
	assert.Equal(t, "B7", owed.Records[0].InvoiceNumber)
}

func TestSessionMarkPaidRejectsBlankNumber(t *testing.T) {
	w := &fakeWriter{}
	s := loaded(t, w)

	_, changed, err := s.MarkPaid(context.Background(), "   ")
	assert.ErrorIs(t, err, writeback.ErrMissingInvoiceNumber)
	assert.Zero(t, changed)
	assert.Empty(t, w.marked)
}

func TestSessionMarkPaidFailureLeavesStateUnchanged(t *testing.T) {
	w := &fakeWriter{err: errors.New("write endpoint unreachable")}
	s := loaded(t, w)

	_, _, err := s.MarkPaid(context.Background(), "A1")
	require.Error(t, err)
	assert.Equal(t, "Session.MarkPaid: write endpoint unreachable", err.Error())

	st := s.State()
	assert.Equal(t, factura.StateUnpaid, st.Records[0].PaymentState)
	assert.Equal(t, "SI", st.Records[0].OwedFlag)
}

func TestSessionDispatchMarkPaid(t *testing.T) {
	s := loaded(t, &fakeWriter{})

	res := s.DispatchMarkPaid(context.Background(), "B7").Wait()
	require.NoError(t, res.Err)

	assert.Equal(t, factura.StatePaid, s.State().Records[1].PaymentState)
}

// A record issued 60 days ago with DEBE=SI shows up under "> 30 días" and
// "Adeudadas", and moves to "Pagadas" once marked.
func TestSessionAgingScenario(t *testing.T) {
	s := loaded(t, &fakeWriter{})

	over := s.View(filter.Criteria{Tab: filter.TabOver30})
	require.Len(t, over.Records, 2)
	a1 := over.Records[0]
	assert.Equal(t, "A1", a1.InvoiceNumber)
	assert.Equal(t, 60, a1.DaysOutstanding)
	assert.Equal(t, factura.StateUnpaid, a1.PaymentState)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(a1.Amount))

	_, _, err := s.MarkPaid(context.Background(), "A1")
	require.NoError(t, err)

	assert.Empty(t, s.View(filter.Criteria{Tab: filter.TabOver30}).Records)
	paid := s.View(filter.Criteria{Tab: filter.TabPaid, Client: "acme"})
	assert.Len(t, paid.Records, 3)
}

func TestSetCriteria(t *testing.T) {
	s := loaded(t, &fakeWriter{})

	st := s.SetCriteria(filter.Criteria{Client: "beta"})
	assert.Equal(t, "beta", st.Criteria.Client)
	assert.Len(t, s.State().View().Records, 1)
}

// gatedSource blocks FetchRows until release is closed.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedSource) FetchRows(ctx context.Context) ([]factura.RawRow, error) {
	close(g.started)
	<-g.release
	return rows(), nil
}

func TestSessionLoadKeepsPaidMarkedDuringRead(t *testing.T) {
	s := loaded(t, &fakeWriter{})

	gate := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	s.source = gate

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	<-gate.started
	_, changed, err := s.MarkPaid(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	// The read was taken before the write-back, so it still says DEBE=SI.
	close(gate.release)
	require.NoError(t, <-done)

	owed := s.View(filter.Criteria{Tab: filter.TabOwed})
	require.Len(t, owed.Records, 1)
	assert.Equal(t, "B7", owed.Records[0].InvoiceNumber)

	// Later loads trust the source again.
	s.source = &fakeSource{rows: rows()}
	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.View(filter.Criteria{Tab: filter.TabOwed}).Records, 3)
}
