package result

import "time"

// Status classifies a validated result record.
type Status string

const (
	// StatusCompleted: computation succeeded and met its accuracy target.
	StatusCompleted Status = "completed"
	// StatusWarning: computation succeeded but missed its accuracy target.
	StatusWarning Status = "warning"
	// StatusError: the computation itself failed or timed out.
	StatusError Status = "error"
)

// Record is the persisted outcome of executing one constant's artifact.
type Record struct {
	ConstantID               string    `json:"constant_id"`
	CalculatedValue          *float64  `json:"calculated_value"`
	MeasuredValue            float64   `json:"measured_value"`
	RelativeError            *float64  `json:"relative_error"`
	AccuracyMet              bool      `json:"accuracy_met"`
	Status                   Status    `json:"status"`
	Timestamp                time.Time `json:"timestamp"`
	PassID                   string    `json:"pass_id"`
	CorrectionFactorsApplied []string  `json:"correction_factors_applied"`
	Diagnostic               string    `json:"diagnostic,omitempty"`
}
