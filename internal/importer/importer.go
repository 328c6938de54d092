// Package importer loads facturas from spreadsheet or CSV files and creates
// them remotely, one write-back per row, on a bounded worker pool.
package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/logger"
	"estadocuenta/internal/writeback"
)

// Result is the outcome of importing one row.
type Result struct {
	// Index is the row position in the input, zero-based.
	Index    int
	Row      factura.RawRow
	Response string
	Err      error
}

// OK reports whether the row was created.
func (r Result) OK() bool {
	return r.Err == nil
}

type job struct {
	index int
	row   factura.RawRow
}

// Importer creates rows through a Writer.
type Importer struct {
	writer  writeback.Writer
	workers int
	log     zerolog.Logger
}

// New creates an importer with the given number of parallel workers.
func New(w writeback.Writer, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		writer:  w,
		workers: workers,
		log:     logger.WithComponent("importer"),
	}
}

// Run sends every row and returns the results in input order. A failing row
// never stops the batch. onResult, if set, is called once per row as results
// come in; calls are serialized.
func (im *Importer) Run(ctx context.Context, rows []factura.RawRow, onResult func(Result)) []Result {
	jobs := make(chan job, len(rows))
	results := make([]Result, len(rows))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < im.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := range jobs {
				im.log.Debug().
					Int("worker", workerID).
					Int("row", j.index+1).
					Msg("Worker importing row")

				res := im.importRow(ctx, j)
				results[j.index] = res

				if onResult != nil {
					mu.Lock()
					onResult(res)
					mu.Unlock()
				}
			}
		}(w)
	}

	for i, row := range rows {
		jobs <- job{index: i, row: row}
	}
	close(jobs)

	wg.Wait()

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	im.log.Info().
		Int("total", len(rows)).
		Int("created", len(rows)-failed).
		Int("failed", failed).
		Msg("Import finished")

	return results
}

func (im *Importer) importRow(ctx context.Context, j job) Result {
	res := Result{Index: j.index, Row: j.row}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if nro, ok := j.row[factura.ColFactura]; !ok || nro == nil || strings.TrimSpace(fmt.Sprint(nro)) == "" {
		res.Err = ErrMissingInvoiceNumber
		return res
	}

	resp, err := im.writer.Create(ctx, j.row)
	if err != nil {
		im.log.Warn().
			Err(err).
			Int("row", j.index+1).
			Interface("factura", j.row[factura.ColFactura]).
			Msg("Failed to create row")
		res.Err = err
		return res
	}
	res.Response = resp
	return res
}
