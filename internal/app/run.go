package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/topoconst/internal/artifact"
	"github.com/vk/topoconst/internal/compiler"
	"github.com/vk/topoconst/internal/ctxlog"
	"github.com/vk/topoconst/internal/executor"
	"github.com/vk/topoconst/internal/graph"
	"github.com/vk/topoconst/internal/result"
	"github.com/vk/topoconst/internal/summary"
)

// Run executes one full pass: graph build, artifact generation, concurrent
// execution, validation/persistence, and the accuracy summary.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	g, err := graph.Build(ctx, a.store)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", g.Len())

	gen := artifact.NewGenerator(a.store, g, compiler.New(a.reg))

	var artifacts []*artifact.Artifact
	var skipped []artifact.Skipped
	if a.config.Target != "" {
		art, err := gen.Generate(ctx, a.config.Target)
		if err != nil {
			skipped = append(skipped, artifact.Skipped{ID: a.config.Target, Err: err})
		} else {
			artifacts = append(artifacts, art)
		}
	} else {
		artifacts, skipped = gen.GenerateAll(ctx)
	}

	exec := executor.New(a.reg, a.config.Workers, a.config.Timeout)
	results := exec.ExecuteAll(ctx, artifacts)

	store, err := result.NewFileStore(a.config.ResultsPath)
	if err != nil {
		return err
	}

	records, err := a.persist(ctx, store, artifacts, results, skipped)
	if err != nil {
		return err
	}

	a.report(records)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// persist validates every execution result into a record and writes it,
// including synthesized error records for definitions skipped at build time.
func (a *App) persist(ctx context.Context, store result.Store, artifacts []*artifact.Artifact, results []executor.Result, skipped []artifact.Skipped) ([]result.Record, error) {
	logger := ctxlog.FromContext(ctx)

	passID := uuid.NewString()
	x := result.NewExtractor(passID)
	logger.Debug("Persisting results.", "pass_id", passID)

	byID := make(map[string]*executor.Result, len(results))
	for i := range results {
		byID[results[i].TargetID] = &results[i]
	}

	var records []result.Record
	for _, art := range artifacts {
		def, ok := a.store.ByID(art.TargetID)
		if !ok {
			continue
		}
		rec := x.Extract(def, byID[art.TargetID])
		if err := store.Put(rec); err != nil {
			return nil, fmt.Errorf("persisting record for %q: %w", rec.ConstantID, err)
		}
		records = append(records, rec)
	}

	for _, sk := range skipped {
		def, ok := a.store.ByID(sk.ID)
		if !ok {
			continue
		}
		rec := x.SkippedRecord(def, sk.Err)
		if err := store.Put(rec); err != nil {
			return nil, fmt.Errorf("persisting record for %q: %w", rec.ConstantID, err)
		}
		records = append(records, rec)
	}

	logger.Info("Results persisted.", "records", len(records))
	return records, nil
}

// report prints the operator-facing pass summary: blocking errors with their
// diagnostics, accuracy misses, and the bucketed totals. Definitions skipped
// at build time already surface here as error records.
func (a *App) report(records []result.Record) {
	var warnings, errored []result.Record
	for _, rec := range records {
		switch rec.Status {
		case result.StatusWarning:
			warnings = append(warnings, rec)
		case result.StatusError:
			errored = append(errored, rec)
		}
	}

	if len(errored) > 0 {
		fmt.Fprintf(a.outW, "failed (%d):\n", len(errored))
		for _, rec := range errored {
			fmt.Fprintf(a.outW, "  %-24s %s\n", rec.ConstantID, rec.Diagnostic)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintf(a.outW, "missed accuracy target (%d):\n", len(warnings))
		for _, rec := range warnings {
			if rec.RelativeError != nil {
				fmt.Fprintf(a.outW, "  %-24s off by %+.4f%%\n", rec.ConstantID, *rec.RelativeError*100)
			} else {
				fmt.Fprintf(a.outW, "  %-24s\n", rec.ConstantID)
			}
		}
	}
	fmt.Fprint(a.outW, summary.Aggregate(records).String())
}
