// Package jobs runs price scraping jobs: code fan-out across workers, merge
// of per-worker results, workbook generation, and delivery.
package jobs

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/models"
	"github.com/akashstwt/scraper-backend/internal/scrape"
)

// AdapterFactory builds a fresh adapter set for one worker. Each worker owns
// its adapters so session-bound sources never share browser state.
type AdapterFactory func() []scrape.SourceAdapter

// worker processes one chunk of codes against its own adapter instances
type worker struct {
	index    int
	adapters []scrape.SourceAdapter
	logger   arbor.ILogger
}

// run looks up every code in the chunk against every adapter, producing
// exactly one record per (code, adapter) pair in chunk order. onCode fires
// once per completed code regardless of how many sources were queried.
// Adapters are always closed, even when a lookup panics.
func (w *worker) run(ctx context.Context, codes []string, onCode func()) []models.ResultRecord {
	defer w.closeAdapters()

	records := make([]models.ResultRecord, 0, len(codes)*len(w.adapters))
	for _, code := range codes {
		for _, adapter := range w.adapters {
			records = append(records, w.lookup(ctx, adapter, code))
		}
		onCode()
	}
	return records
}

// lookup shields the worker from a panicking adapter: the fault becomes an
// error record for that pair and the batch continues.
func (w *worker) lookup(ctx context.Context, adapter scrape.SourceAdapter, code string) (record models.ResultRecord) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker", w.index).
				Str("code", code).
				Str("source", string(adapter.Source())).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Adapter panicked during lookup")
			record = models.ErrorRecord(code, adapter.Source(), "")
		}
	}()
	return adapter.Lookup(ctx, code)
}

func (w *worker) closeAdapters() {
	for _, adapter := range w.adapters {
		if err := adapter.Close(); err != nil {
			w.logger.Warn().
				Int("worker", w.index).
				Str("source", string(adapter.Source())).
				Err(err).
				Msg("Adapter close failed")
		}
	}
}

// chunkCodes splits codes into n contiguous chunks. Every chunk gets
// len/n codes and the remainder is folded into the last chunk, so the
// concatenation of all chunks reproduces the input exactly.
func chunkCodes(codes []string, n int) [][]string {
	if n > len(codes) {
		n = len(codes)
	}
	if n <= 0 {
		return nil
	}

	size := len(codes) / n
	chunks := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if i == n-1 {
			end = len(codes)
		}
		chunks = append(chunks, codes[start:end])
	}
	return chunks
}

// dedupeCodes drops repeated codes keeping first occurrence order. Matching
// is exact, codes that differ only in case are distinct products.
func dedupeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
