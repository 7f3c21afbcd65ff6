package summary

import (
	"fmt"
	"math"
	"strings"

	"github.com/vk/topoconst/internal/result"
)

// Bucket thresholds over |relative_error|.
const (
	tightBound = 0.005
	looseBound = 0.05
)

// Report is the bucketed accuracy summary of one executor pass.
type Report struct {
	Total int

	// WithinHalfPercent counts records with |relative_error| ≤ 0.5%.
	WithinHalfPercent int
	// HalfToFivePercent counts records with 0.5% < |relative_error| ≤ 5%.
	HalfToFivePercent int
	// BeyondFivePercent counts records with |relative_error| > 5%.
	BeyondFivePercent int
	// Errors counts records whose execution failed.
	Errors int
	// Unassessed counts successful computations with no relative error,
	// i.e. definitions without an experimental reference.
	Unassessed int
}

// Aggregate buckets every record by the magnitude of its relative error.
func Aggregate(records []result.Record) Report {
	var r Report
	for _, rec := range records {
		r.Total++
		if rec.Status == result.StatusError {
			r.Errors++
			continue
		}
		if rec.RelativeError == nil {
			r.Unassessed++
			continue
		}
		switch abs := math.Abs(*rec.RelativeError); {
		case abs <= tightBound:
			r.WithinHalfPercent++
		case abs <= looseBound:
			r.HalfToFivePercent++
		default:
			r.BeyondFivePercent++
		}
	}
	return r
}

// String renders the report for terminal output.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy summary (%d constants)\n", r.Total)
	fmt.Fprintf(&b, "  ≤0.5%%    %d\n", r.WithinHalfPercent)
	fmt.Fprintf(&b, "  0.5–5%%   %d\n", r.HalfToFivePercent)
	fmt.Fprintf(&b, "  >5%%      %d\n", r.BeyondFivePercent)
	fmt.Fprintf(&b, "  error    %d\n", r.Errors)
	if r.Unassessed > 0 {
		fmt.Fprintf(&b, "  no ref.  %d\n", r.Unassessed)
	}
	return b.String()
}
