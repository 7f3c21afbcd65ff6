package executor

import (
	"fmt"
	"time"
)

// ArtifactTimeoutError reports an artifact that did not finish within its
// per-artifact timeout.
type ArtifactTimeoutError struct {
	ID      string
	Timeout time.Duration
}

func (e *ArtifactTimeoutError) Error() string {
	return fmt.Sprintf("artifact %q timed out after %s", e.ID, e.Timeout)
}

// ArtifactRuntimeError reports a fault inside a running artifact: an
// evaluation error, a non-numeric result, or a recovered panic.
type ArtifactRuntimeError struct {
	ID     string
	Detail string
}

func (e *ArtifactRuntimeError) Error() string {
	return fmt.Sprintf("artifact %q failed: %s", e.ID, e.Detail)
}
