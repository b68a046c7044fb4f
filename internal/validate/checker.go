// Package validate cross-checks the planned move against live API state
// before anything is committed: the parent must exist, and a sample of the
// children must already belong to the expected resource tree.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/archival-ops/aspace-reorder/internal/aspace"
	"github.com/archival-ops/aspace-reorder/internal/domain"
)

// DefaultSampleSize bounds how many children are checked against the API.
// The sample is a cost tradeoff, not a guarantee over the full list.
const DefaultSampleSize = 10

// ResourceUnknown marks an indeterminate resource id; resource linkage
// checks are skipped and a warning recorded instead of failing the sample.
const ResourceUnknown = 0

// Fetcher retrieves single records; satisfied by *aspace.Client
type Fetcher interface {
	GetRecord(ctx context.Context, recordType domain.RecordType, id int) (*aspace.Record, error)
}

// Checker validates parent and child records for one run
type Checker struct {
	fetcher    Fetcher
	repository int
	logger     *slog.Logger
}

// New creates a Checker scoped to one repository
func New(fetcher Fetcher, repository int, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{fetcher: fetcher, repository: repository, logger: logger}
}

// Parent checks that the target parent exists. Retrieval failures of any
// kind become Exists=false with the error message; nothing propagates.
func (c *Checker) Parent(ctx context.Context, parent domain.Parent) domain.ParentValidation {
	rec, err := c.fetcher.GetRecord(ctx, parent.Type, parent.ID)
	if err != nil {
		c.logger.Error("parent record validation failed", "parent", parent.String(), "error", err)
		return domain.ParentValidation{Exists: false, Err: err.Error()}
	}

	title := rec.DisplayTitle()
	c.logger.Info("parent record validated", "parent", parent.String(), "title", title)
	return domain.ParentValidation{Exists: true, Title: title}
}

// ResourceID derives the resource that should root every child's hierarchy.
// A resource parent is its own resource; an archival-object parent points at
// one via resource.ref. Returns ResourceUnknown with ok=false when the ref
// is absent or malformed.
func (c *Checker) ResourceID(ctx context.Context, parent domain.Parent) (int, bool) {
	if parent.Type == domain.TypeResource {
		return parent.ID, true
	}

	rec, err := c.fetcher.GetRecord(ctx, parent.Type, parent.ID)
	if err != nil {
		c.logger.Warn("could not fetch parent to derive resource id", "parent", parent.String(), "error", err)
		return ResourceUnknown, false
	}
	if !rec.HasResource() {
		c.logger.Warn("parent record has no resource ref", "parent", parent.String())
		return ResourceUnknown, false
	}
	id, ok := rec.Resource.TailID()
	if !ok {
		c.logger.Warn("parent resource ref is malformed", "parent", parent.String(), "ref", rec.Resource.Ref)
		return ResourceUnknown, false
	}
	return id, true
}

// Children validates up to sampleSize of the given object ids against the
// intended parent and resource. Pass resourceID=ResourceUnknown to skip the
// resource linkage comparison (degraded mode). Fetch failures and missing
// fields count as invalid items, never as run-level errors.
func (c *Checker) Children(ctx context.Context, ids []int, parent domain.Parent, resourceID, sampleSize int) domain.ChildSummary {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if len(ids) > sampleSize {
		ids = ids[:sampleSize]
	}

	summary := domain.ChildSummary{CurrentParents: make(map[int]int)}
	expectedResource := fmt.Sprintf("/repositories/%d/resources/%d", c.repository, resourceID)
	if resourceID == ResourceUnknown {
		summary.Warnings = append(summary.Warnings,
			"resource id could not be determined from the parent; resource linkage checks skipped")
	}

	for _, id := range ids {
		summary.TotalChecked++

		rec, err := c.fetcher.GetRecord(ctx, domain.TypeArchivalObject, id)
		if err != nil {
			summary.InvalidCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("record %d: %v", id, err))
			c.logger.Error("child record validation failed", "id", id, "error", err)
			continue
		}
		if !rec.HasAncestors() || !rec.HasResource() {
			summary.InvalidCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("record %d: missing ancestors or resource field", id))
			continue
		}

		parentFound, currentParent := scanAncestors(rec.Ancestors, parent.ID)

		resourceMatches := true
		if resourceID != ResourceUnknown {
			resourceMatches = rec.Resource.Ref == expectedResource
		}

		if !parentFound && currentParent != 0 && currentParent != parent.ID {
			summary.ReparentingDetected = true
			summary.CurrentParents[id] = currentParent
		}

		if parentFound && resourceMatches {
			summary.ValidCount++
			c.logger.Debug("child record valid", "id", id)
			continue
		}

		summary.InvalidCount++
		if !parentFound {
			summary.Errors = append(summary.Errors, fmt.Sprintf("record %d: parent %d not found in ancestors", id, parent.ID))
		}
		if !resourceMatches {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("record %d: resource %d mismatch (found: %s)", id, resourceID, rec.Resource.Ref))
		}
	}

	return summary
}

// scanAncestors walks the ancestor chain looking for the target parent id
// as a path segment. While scanning it tracks the last archival-object
// ancestor seen before the parent turns up (or the list ends); that ref is
// reported as the current parent for reparenting detection. On deep
// hierarchies with several archival-object ancestors this names the last
// one iterated, not necessarily the immediate parent.
func scanAncestors(ancestors []aspace.Ref, parentID int) (found bool, currentParent int) {
	target := strconv.Itoa(parentID)
	for _, anc := range ancestors {
		if hasSegment(anc.Ref, target) {
			return true, currentParent
		}
		if strings.Contains(anc.Ref, string(domain.TypeArchivalObject)) {
			if id, ok := anc.TailID(); ok {
				currentParent = id
			}
		}
	}
	return false, currentParent
}

func hasSegment(ref, segment string) bool {
	for _, part := range strings.Split(ref, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
