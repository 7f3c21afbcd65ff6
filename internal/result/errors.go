package result

import "fmt"

// MalformedResultError reports an artifact execution that produced no
// structured output, or output that fails validation.
type MalformedResultError struct {
	ID     string
	Reason string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed result for constant %q: %s", e.ID, e.Reason)
}
