package generation

import (
	"context"
	"log/slog"

	"perftrack/internal/domain/record"
)

// Summary reports the outcome of a commit. Partial success is the normal
// failure mode: rows that failed stay uncommitted while the rest land.
type Summary struct {
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	FailedNames  []string `json:"failedNames,omitempty"`
	SampleError  string   `json:"sampleError,omitempty"`
}

// Orchestrator turns a session's selected rows into persisted performance
// records.
type Orchestrator struct {
	records record.StoreAPI
}

func NewOrchestrator(records record.StoreAPI) *Orchestrator {
	return &Orchestrator{records: records}
}

// Commit upserts one performance record per selected row, keyed on
// (employee, period) so re-running a commit replaces rather than duplicates.
// Branch and group come from the session's chosen scope, not from each
// employee's current profile, so records stay attributed to the group the run
// was made for even if someone is moved later. Each row is written
// independently; one failure never rolls back the others.
func (o *Orchestrator) Commit(ctx context.Context, sess *Session) (Summary, error) {
	if sess.GroupID == "" || sess.Period == "" {
		return Summary{}, ErrScopeNotChosen
	}
	selected := sess.selectedRows()
	if len(selected) == 0 {
		return Summary{}, ErrNothingSelected
	}

	var summary Summary
	for _, row := range selected {
		rec := record.PerformanceRecord{
			EmployeeID:         row.EmployeeID,
			EmployeeName:       row.EmployeeName,
			BranchID:           sess.BranchID,
			GroupID:            sess.GroupID,
			Period:             sess.Period,
			ActualAttendance:   row.ActualAttendance,
			RequiredAttendance: row.RequiredAttendance,
			AnnotationScore:    row.AnnotationScore,
			OnsitePerformance:  row.OnsitePerformance,
			TotalInspected:     row.TotalInspected,
			TotalErrors:        row.TotalErrors,
			DeductionPoints:    row.DeductionPoints,
			DeductionReason:    row.DeductionReason,
			BonusPoints:        row.BonusPoints,
			BonusReason:        row.BonusReason,
			Weights:            sess.Weights,
		}
		if _, err := o.records.Upsert(ctx, rec); err != nil {
			slog.Warn("generation commit failed for employee", "employee", row.EmployeeName, "period", sess.Period, "err", err)
			summary.FailedCount++
			summary.FailedNames = append(summary.FailedNames, row.EmployeeName)
			if summary.SampleError == "" {
				summary.SampleError = err.Error()
			}
			continue
		}
		summary.SuccessCount++
	}
	return summary, nil
}
