package ingest

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sheetmetrics/internal/aggregate"
)

// Policy decides what a structural error in one section does to the batch.
type Policy string

const (
	// PolicyAbort discards every row of the upload when any section fails
	// its required-column check.
	PolicyAbort Policy = "abort"
	// PolicySkipSection drops only the failing section.
	PolicySkipSection Policy = "skip_section"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyAbort, PolicySkipSection:
		return p, nil
	default:
		return "", eris.Errorf("ingest: unknown policy %q (want abort or skip_section)", s)
	}
}

// DomainOptions configures ingestion of one domain.
type DomainOptions struct {
	Policy Policy
	// Sections names the sheets to read. Empty means the first sheet for
	// the budget domain and every default area for instruments.
	Sections []string
	// AliasFile optionally extends the built-in header aliases.
	AliasFile string
	// Date1904 forces the 1904 epoch for serial dates even when the
	// workbook does not declare it.
	Date1904 bool
}

// DefaultAreas are the instrument sheets, one per plant area.
var DefaultAreas = []string{"Ammonia", "Utility", "Urea", "System", "Turbomachinery"}

// Options configures an Ingestor.
type Options struct {
	Budget     DomainOptions
	Instrument DomainOptions
	Thresholds aggregate.Thresholds
	// Now supplies the fallback date for unparseable notification dates.
	Now func() time.Time
}

// DefaultOptions returns the policies of the two dashboards: budget uploads
// skip a malformed section, instrument uploads abort.
func DefaultOptions() Options {
	return Options{
		Budget:     DomainOptions{Policy: PolicySkipSection},
		Instrument: DomainOptions{Policy: PolicyAbort, Sections: DefaultAreas},
		Thresholds: aggregate.DefaultThresholds,
		Now:        time.Now,
	}
}
