package result

import (
	"time"

	"github.com/vk/topoconst/internal/definition"
	"github.com/vk/topoconst/internal/executor"
)

// Extractor validates raw execution results into Records for one executor
// pass. All records of a pass share its id; timestamps come from the
// injected clock so tests can pin them.
type Extractor struct {
	passID string
	now    func() time.Time
}

// NewExtractor returns an Extractor stamping records with the given pass id.
func NewExtractor(passID string) *Extractor {
	return &Extractor{passID: passID, now: time.Now}
}

// NewExtractorWithClock is NewExtractor with an explicit clock.
func NewExtractorWithClock(passID string, now func() time.Time) *Extractor {
	return &Extractor{passID: passID, now: now}
}

// Extract turns one raw execution result into a canonical record. A nil or
// mismatched result synthesizes an error record instead of leaving a gap.
func (x *Extractor) Extract(def *definition.Constant, res *executor.Result) Record {
	rec := Record{
		ConstantID:    def.ID,
		MeasuredValue: def.ExperimentalValue,
		Timestamp:     x.now().UTC(),
		PassID:        x.passID,
	}

	if res == nil {
		err := &MalformedResultError{ID: def.ID, Reason: "execution produced no structured output"}
		rec.Status = StatusError
		rec.Diagnostic = err.Error()
		return rec
	}
	if res.TargetID != def.ID {
		err := &MalformedResultError{ID: def.ID, Reason: "execution output addressed to " + res.TargetID}
		rec.Status = StatusError
		rec.Diagnostic = err.Error()
		return rec
	}

	rec.CorrectionFactorsApplied = res.Corrections
	rec.Diagnostic = res.Diagnostic

	switch res.Status {
	case executor.StatusSuccess:
		if res.Value == nil {
			err := &MalformedResultError{ID: def.ID, Reason: "success result without a value"}
			rec.Status = StatusError
			rec.Diagnostic = err.Error()
			return rec
		}
		rec.CalculatedValue = res.Value
		rec.RelativeError = res.RelativeError
		rec.AccuracyMet = res.AccuracyMet
		// Error status is reserved for execution failures; a computation
		// that merely missed its target is a warning.
		if res.AccuracyMet {
			rec.Status = StatusCompleted
		} else {
			rec.Status = StatusWarning
		}
	case executor.StatusTimeout, executor.StatusFailure:
		rec.Status = StatusError
	default:
		err := &MalformedResultError{ID: def.ID, Reason: "unknown execution status " + string(res.Status)}
		rec.Status = StatusError
		rec.Diagnostic = err.Error()
	}

	return rec
}

// SkippedRecord synthesizes the error record for a definition that never
// reached execution because its build phase failed.
func (x *Extractor) SkippedRecord(def *definition.Constant, buildErr error) Record {
	return Record{
		ConstantID:    def.ID,
		MeasuredValue: def.ExperimentalValue,
		Status:        StatusError,
		Timestamp:     x.now().UTC(),
		PassID:        x.passID,
		Diagnostic:    buildErr.Error(),
	}
}
