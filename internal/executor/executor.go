package executor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/topoconst/internal/artifact"
	"github.com/vk/topoconst/internal/ctxlog"
	"github.com/vk/topoconst/internal/registry"
)

// DefaultTimeout bounds a single artifact's execution.
const DefaultTimeout = 120 * time.Second

// DefaultWorkers is the executor's default concurrency.
const DefaultWorkers = 8

// Status classifies a raw execution outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusTimeout Status = "timeout"
)

// Result is the raw per-artifact outcome, before validation turns it into a
// persisted record.
type Result struct {
	TargetID string
	Status   Status

	// Value is the computed final value; nil unless Status is success.
	Value *float64
	// RelativeError is the signed deviation from the experimental
	// reference; nil when no reference exists or execution failed.
	RelativeError *float64
	// AccuracyMet reports whether |RelativeError| is within the
	// definition's accuracy target.
	AccuracyMet bool

	Corrections []string
	Diagnostic  string
}

// Executor runs artifacts under a bounded worker pool.
type Executor struct {
	reg     *registry.Registry
	workers int
	timeout time.Duration
}

// New returns an Executor. Zero workers or timeout select the defaults.
func New(reg *registry.Registry, workers int, timeout time.Duration) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{reg: reg, workers: workers, timeout: timeout}
}

// ExecuteAll runs every artifact and returns one result per artifact, in
// input order. Inter-artifact execution order carries no meaning; a failing
// or hanging artifact never stops the rest of the batch.
func (e *Executor) ExecuteAll(ctx context.Context, artifacts []*artifact.Artifact) []Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting concurrent execution.", "artifacts", len(artifacts), "workers", e.workers)

	results := make([]Result, len(artifacts))

	var group errgroup.Group
	group.SetLimit(e.workers)
	for i, art := range artifacts {
		i, art := i, art
		group.Go(func() error {
			results[i] = e.executeOne(ctx, art)
			return nil
		})
	}
	// Workers never return errors; failures are captured per result.
	_ = group.Wait()

	logger.Info("Execution finished.", "artifacts", len(artifacts))
	return results
}

// executeOne runs a single artifact under its timeout. On timeout the
// evaluation goroutine is abandoned and its partial state discarded.
func (e *Executor) executeOne(ctx context.Context, art *artifact.Artifact) Result {
	logger := ctxlog.FromContext(ctx).With("constant", art.TargetID)
	logger.Debug("Worker picked up artifact.")

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- e.runArtifact(runCtx, art)
	}()

	select {
	case res := <-done:
		logger.Debug("Artifact finished.", "status", res.Status)
		return res
	case <-runCtx.Done():
		err := &ArtifactTimeoutError{ID: art.TargetID, Timeout: e.timeout}
		logger.Warn("Artifact timed out.", "timeout", e.timeout)
		return Result{
			TargetID:    art.TargetID,
			Status:      StatusTimeout,
			Corrections: art.Corrections(),
			Diagnostic:  err.Error(),
		}
	}
}
