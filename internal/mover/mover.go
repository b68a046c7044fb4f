// Package mover drives the accept_children calls that actually reposition
// objects, either one at a time or as a rate-limited batched bulk run.
// Per-item failures become failed outcomes and never abort the run.
package mover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/archival-ops/aspace-reorder/internal/domain"
)

// ErrNoSession is returned when a run is attempted without authentication
var ErrNoSession = errors.New("move execution requires an authenticated session")

// API is the client surface the executor needs; satisfied by *aspace.Client
type API interface {
	Session() string
	MoveObject(ctx context.Context, parent domain.Parent, objectID, position int) (json.RawMessage, error)
}

// Options tunes bulk-mode batching and pacing. The delays exist because
// ArchivesSpace enforces per-second request ceilings; batches bound memory
// and give the operator periodic progress on runs of thousands of records.
type Options struct {
	BatchSize    int
	RequestDelay time.Duration
	BatchDelay   time.Duration
}

// DefaultOptions returns the production pacing settings
func DefaultOptions() Options {
	return Options{
		BatchSize:    50,
		RequestDelay: 100 * time.Millisecond,
		BatchDelay:   time.Second,
	}
}

// Validate checks option sanity
func (o Options) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.RequestDelay < 0 || o.BatchDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// BatchProgress reports the state of a bulk run after each batch
type BatchProgress struct {
	Batch        int
	TotalBatches int
	BatchSuccess int
	BatchErrors  int
	Completed    int
	Total        int
	Percent      float64
}

// ProgressFunc receives batch completion reports during a bulk run
type ProgressFunc func(BatchProgress)

// ItemFunc receives each outcome as it happens during an individual run
type ItemFunc func(domain.MoveOutcome)

// Mover executes move operations against the API
type Mover struct {
	api    API
	logger *slog.Logger
}

// New creates a Mover
func New(api API, logger *slog.Logger) *Mover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mover{api: api, logger: logger}
}

// MoveOne moves a single object; an API failure becomes a failed outcome
func (m *Mover) MoveOne(ctx context.Context, parent domain.Parent, rec domain.MoveRecord) domain.MoveOutcome {
	return m.moveOne(ctx, parent, rec, true)
}

func (m *Mover) moveOne(ctx context.Context, parent domain.Parent, rec domain.MoveRecord, logIndividual bool) domain.MoveOutcome {
	raw, err := m.api.MoveObject(ctx, parent, rec.ID, rec.Position)
	if err != nil {
		m.logger.Error("failed to move object", "id", rec.ID, "position", rec.Position, "row", rec.SourceRow, "error", err)
		return domain.MoveOutcome{ObjectID: rec.ID, Position: rec.Position, Status: domain.MoveFailed, Detail: err.Error()}
	}
	if logIndividual {
		m.logger.Info("moved object", "id", rec.ID, "position", rec.Position)
	}
	return domain.MoveOutcome{ObjectID: rec.ID, Position: rec.Position, Status: domain.MoveSuccess, Detail: string(raw)}
}

// Individual moves every record with one call each, in position order,
// continuing past failures. Returns the partial result with ctx.Err() if
// the context is cancelled between calls.
func (m *Mover) Individual(ctx context.Context, parent domain.Parent, records []domain.MoveRecord, onItem ItemFunc) (*domain.BulkResult, error) {
	if m.api.Session() == "" {
		return nil, ErrNoSession
	}

	result := &domain.BulkResult{Total: len(records)}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome := m.moveOne(ctx, parent, rec, true)
		result.Add(outcome)
		if onItem != nil {
			onItem(outcome)
		}
	}

	m.logger.Info("individual move run completed", "success", result.SuccessCount, "failed", result.ErrorCount)
	return result, nil
}

// Bulk moves records in fixed-size batches with a fixed delay between
// requests and a larger one between batches (skipped after the last).
// One failing item never prevents later items from being attempted.
func (m *Mover) Bulk(ctx context.Context, parent domain.Parent, records []domain.MoveRecord, opts Options, onBatch ProgressFunc) (*domain.BulkResult, error) {
	if m.api.Session() == "" {
		return nil, ErrNoSession
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	total := len(records)
	totalBatches := (total + opts.BatchSize - 1) / opts.BatchSize
	result := &domain.BulkResult{Total: total}

	m.logger.Info("starting bulk move", "total", total, "batches", totalBatches, "batch_size", opts.BatchSize)

	for i := 0; i < total; i += opts.BatchSize {
		end := i + opts.BatchSize
		if end > total {
			end = total
		}
		batch := records[i:end]
		batchNum := i/opts.BatchSize + 1

		var batchSuccess, batchErrors int
		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			outcome := m.moveOne(ctx, parent, rec, false)
			result.Add(outcome)
			if outcome.Status == domain.MoveSuccess {
				batchSuccess++
			} else {
				batchErrors++
			}
			if err := pause(ctx, opts.RequestDelay); err != nil {
				return result, err
			}
		}

		progress := BatchProgress{
			Batch:        batchNum,
			TotalBatches: totalBatches,
			BatchSuccess: batchSuccess,
			BatchErrors:  batchErrors,
			Completed:    end,
			Total:        total,
			Percent:      float64(end) / float64(total) * 100,
		}
		m.logger.Info("batch complete",
			"batch", batchNum, "of", totalBatches,
			"success", batchSuccess, "failed", batchErrors,
			"progress", fmt.Sprintf("%.1f%%", progress.Percent))
		if onBatch != nil {
			onBatch(progress)
		}

		if end < total {
			if err := pause(ctx, opts.BatchDelay); err != nil {
				return result, err
			}
		}
	}

	m.logger.Info("bulk move completed", "success", result.SuccessCount, "failed", result.ErrorCount)
	return result, nil
}

// pause sleeps for d unless the context is cancelled first
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
