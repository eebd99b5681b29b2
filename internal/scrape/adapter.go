// Package scrape contains the per-site source adapters and the shared HTML
// extraction cascade. Adapters fail soft: any transport, parse, or timeout
// fault becomes a ResultRecord with sentinel values, never an error to the
// caller. Site markup is an uncontrolled external contract; when it changes,
// lookups degrade to Not Found rather than crashing the pipeline.
package scrape

import (
	"context"

	"github.com/akashstwt/scraper-backend/internal/models"
)

// SourceAdapter is the contract every retail site lookup implements.
type SourceAdapter interface {
	// Source identifies the site this adapter scrapes
	Source() models.Source

	// Lookup fetches price and availability for one OEM code. It always
	// returns exactly one record; faults are absorbed into sentinel values.
	Lookup(ctx context.Context, code string) models.ResultRecord

	// Close releases any resources held by the adapter. Safe to call more
	// than once; only the first call has effect.
	Close() error
}
