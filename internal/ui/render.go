// Package ui renders previews, validation results, and progress to the
// terminal and collects the operator's confirmations.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/archival-ops/aspace-reorder/internal/domain"
	"github.com/archival-ops/aspace-reorder/internal/mover"
	"github.com/archival-ops/aspace-reorder/internal/spreadsheet"
)

// Title renders the tool banner
func Title(s string) string {
	return titleStyle.Render(s)
}

// RenderPreview summarizes a spreadsheet preview
func RenderPreview(path string, p *spreadsheet.Preview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("File:"), path)
	fmt.Fprintf(&b, "%s %s rows, %d columns\n", labelStyle.Render("Structure:"),
		humanize.Comma(int64(p.TotalRows)), p.TotalColumns)

	if p.Err != nil {
		fmt.Fprintf(&b, "%s %v\n", errStyle.Render("Problem:"), p.Err)
		return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
	}

	fmt.Fprintf(&b, "%s %d rows removed, %s records ready\n", labelStyle.Render("Cleaning:"),
		p.RowsRemoved, humanize.Comma(int64(p.RecordCount)))
	fmt.Fprintf(&b, "%s %q (matched by %s)\n", labelStyle.Render("ID column:"), p.IDColumn, p.Strategy)

	if len(p.Essential) > 0 {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Columns:"), strings.Join(p.Essential, ", "))
	}
	if len(p.SampleIDs) > 0 {
		ids := make([]string, len(p.SampleIDs))
		for i, id := range p.SampleIDs {
			ids[i] = fmt.Sprintf("%d", id)
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Sample IDs:"), strings.Join(ids, ", "))
	}
	if title, ok := p.SampleRow["Title"]; ok && title != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("First row:"), truncate(title, 50))
	}
	if p.DuplicateIDs > 0 {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(
			fmt.Sprintf("%d duplicate IDs in the input; each occurrence will be moved separately", p.DuplicateIDs)))
	}

	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderParentValidation formats the parent check result
func RenderParentValidation(parent domain.Parent, v domain.ParentValidation) string {
	if v.Exists {
		return fmt.Sprintf("%s %s: %s",
			okStyle.Render("✓ parent record found"), parent.String(), v.Title)
	}
	return fmt.Sprintf("%s %s: %s",
		errStyle.Render("✗ parent record validation failed"), parent.String(), v.Err)
}

// RenderChildSummary formats the sampled child validation, including the
// reparenting warning table when objects sit under a different ancestor
func RenderChildSummary(parent domain.Parent, s domain.ChildSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s checked %d, valid %d, invalid %d\n",
		labelStyle.Render("Child records:"), s.TotalChecked, s.ValidCount, s.InvalidCount)

	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render("⚠ "+w))
	}
	for _, e := range s.Errors {
		fmt.Fprintf(&b, "%s\n", errStyle.Render("✗ "+e))
	}

	if s.ReparentingDetected {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render("⚠ reparenting detected: these objects currently sit under a different ancestor"))
		ids := make([]int, 0, len(s.CurrentParents))
		for id := range s.CurrentParents {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "  object %d: %d → %d\n", id, s.CurrentParents[id], parent.ID)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderRunSummary formats the pre-confirmation summary
func RenderRunSummary(parent domain.Parent, v domain.ParentValidation, s domain.ChildSummary, total int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Operation:"), strings.ToUpper(s.OperationType()))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Parent:"), v.Title)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Objects:"), humanize.Comma(int64(total)))
	if s.OK() {
		fmt.Fprintf(&b, "%s", okStyle.Render("All validations passed."))
	} else {
		fmt.Fprintf(&b, "%s", errStyle.Render("Validation failed; the run is blocked."))
	}

	return sectionStyle.Render(b.String())
}

// RenderBatchProgress formats one bulk-mode batch report
func RenderBatchProgress(p mover.BatchProgress) string {
	line := fmt.Sprintf("batch %d/%d complete: %d successful, %d failed (%.1f%%)",
		p.Batch, p.TotalBatches, p.BatchSuccess, p.BatchErrors, p.Percent)
	if p.BatchErrors > 0 {
		return warnStyle.Render(line)
	}
	return okStyle.Render(line)
}

// RenderItemOutcome formats one individual-mode move report
func RenderItemOutcome(o domain.MoveOutcome) string {
	if o.Status == domain.MoveSuccess {
		return okStyle.Render(fmt.Sprintf("✓ moved object %d to position %d", o.ObjectID, o.Position))
	}
	return errStyle.Render(fmt.Sprintf("✗ failed to move object %d: %s", o.ObjectID, truncate(o.Detail, 120)))
}

// RenderResult formats the final run summary
func RenderResult(r *domain.BulkResult, logFile string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", labelStyle.Render("Run complete"))
	fmt.Fprintf(&b, "  total: %s\n", humanize.Comma(int64(r.Total)))
	fmt.Fprintf(&b, "  %s\n", okStyle.Render(fmt.Sprintf("successful: %d", r.SuccessCount)))
	if r.ErrorCount > 0 {
		fmt.Fprintf(&b, "  %s\n", errStyle.Render(fmt.Sprintf("failed: %d", r.ErrorCount)))
		fmt.Fprintf(&b, "  %s", dimStyle.Render("see "+logFile+" for per-object details"))
	} else {
		fmt.Fprintf(&b, "  %s", dimStyle.Render("no failures"))
	}

	return sectionStyle.Render(b.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
