package usecase

import (
	"context"
	"time"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// StageStatus is the outcome of one category pipeline.
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// StageResult is what a pipeline reports back to the runner.
type StageResult struct {
	Category  entity.Category
	Status    StageStatus
	Rows      int
	Processed int      // symbols fully processed, counted by the prices stage
	Notes     []string // diagnostics, including the skip reason
	Err       error    // set when Status is StageFailed
}

func succeeded(c entity.Category, rows int, notes ...string) StageResult {
	return StageResult{Category: c, Status: StageSucceeded, Rows: rows, Notes: notes}
}

func skipped(c entity.Category, reason string) StageResult {
	return StageResult{Category: c, Status: StageSkipped, Notes: []string{reason}}
}

func failed(c entity.Category, err error, notes ...string) StageResult {
	return StageResult{Category: c, Status: StageFailed, Err: err, Notes: notes}
}

// runContext is the state shared by the pipelines of one run.
type runContext struct {
	runID   string
	cfg     entity.RunConfig
	symbols []entity.Symbol
	today   time.Time
	workers int
}

// pipeline is one category's fetch-and-reconcile step. isolatePerSymbol
// decides whether one symbol's failure aborts the stage.
type pipeline struct {
	category         entity.Category
	isolatePerSymbol bool
	run              func(ctx context.Context, rc *runContext, isolate bool) StageResult
}
