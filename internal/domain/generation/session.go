package generation

import (
	"sort"

	"perftrack/internal/domain/inspection"
	"perftrack/internal/domain/org"
	"perftrack/internal/domain/scoring"
)

// Defaults seed every roster row when a group is loaded.
type Defaults struct {
	RequiredAttendance float64
	OnsitePerformance  float64
	AnnotationScore    float64
}

// Row is one employee's in-progress generation inputs. Selected ("include in
// this run") and BatchApplicable ("affected by bulk edits") are independent
// flags: deselecting an employee does not shield them from batch values and
// vice versa.
type Row struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`

	ActualAttendance   float64 `json:"actualAttendance"`
	RequiredAttendance float64 `json:"requiredAttendance"`
	AnnotationScore    float64 `json:"annotationScore"`
	OnsitePerformance  float64 `json:"onsitePerformance"`
	TotalInspected     int     `json:"totalInspected"`
	TotalErrors        int     `json:"totalErrors"`
	DeductionPoints    float64 `json:"deductionPoints"`
	DeductionReason    string  `json:"deductionReason,omitempty"`
	BonusPoints        float64 `json:"bonusPoints"`
	BonusReason        string  `json:"bonusReason,omitempty"`

	Selected        bool `json:"selected"`
	BatchApplicable bool `json:"batchApplicable"`

	// PreviewScore is advisory only; the authoritative score is recomputed by
	// the record store at commit.
	PreviewScore float64 `json:"previewScore"`
}

func (r Row) inputs() scoring.Inputs {
	return scoring.Inputs{
		ActualAttendance:   r.ActualAttendance,
		RequiredAttendance: r.RequiredAttendance,
		AnnotationScore:    r.AnnotationScore,
		OnsitePerformance:  r.OnsitePerformance,
		TotalInspected:     r.TotalInspected,
		TotalErrors:        r.TotalErrors,
		DeductionPoints:    r.DeductionPoints,
		BonusPoints:        r.BonusPoints,
	}
}

// Session is the mutable roster of one orchestration run. It is owned by a
// single operator and is not safe for concurrent use; the transport layer
// serializes access per session. Re-selecting a group replaces the roster
// wholesale, so nothing leaks between group selections.
type Session struct {
	ID      string
	OwnerID string

	BranchID string
	GroupID  string
	Period   string
	Weights  scoring.Weights

	rows  []*Row
	index map[string]*Row
}

func NewSession(id, ownerID string) *Session {
	return &Session{ID: id, OwnerID: ownerID, index: make(map[string]*Row)}
}

// LoadRoster materializes the roster for (group, period): one row per
// employee, seeded with defaults and the period's inspection totals, all rows
// selected and batch-applicable. Any previous roster is discarded.
func (s *Session) LoadRoster(branchID, groupID, period string, employees []org.Employee, totals map[string]inspection.Totals, defaults Defaults, weights scoring.Weights) {
	s.BranchID = branchID
	s.GroupID = groupID
	s.Period = period
	s.Weights = weights
	s.rows = make([]*Row, 0, len(employees))
	s.index = make(map[string]*Row, len(employees))

	for _, emp := range employees {
		t := totals[emp.ID]
		row := &Row{
			EmployeeID:         emp.ID,
			EmployeeName:       emp.Name,
			RequiredAttendance: defaults.RequiredAttendance,
			OnsitePerformance:  defaults.OnsitePerformance,
			AnnotationScore:    defaults.AnnotationScore,
			TotalInspected:     t.Inspected,
			TotalErrors:        t.Errors,
			Selected:           true,
			BatchApplicable:    true,
		}
		s.rows = append(s.rows, row)
		s.index[emp.ID] = row
	}
}

// Rows returns the roster in load order with preview scores filled in.
func (s *Session) Rows() []Row {
	out := make([]Row, 0, len(s.rows))
	for _, row := range s.rows {
		copied := *row
		copied.PreviewScore = scoring.Compute(row.inputs(), s.Weights)
		out = append(out, copied)
	}
	return out
}

// RowPatch carries per-row edits; nil fields are left untouched.
type RowPatch struct {
	ActualAttendance   *float64 `json:"actualAttendance"`
	RequiredAttendance *float64 `json:"requiredAttendance"`
	AnnotationScore    *float64 `json:"annotationScore"`
	OnsitePerformance  *float64 `json:"onsitePerformance"`
	DeductionPoints    *float64 `json:"deductionPoints"`
	DeductionReason    *string  `json:"deductionReason"`
	BonusPoints        *float64 `json:"bonusPoints"`
	BonusReason        *string  `json:"bonusReason"`
	Selected           *bool    `json:"selected"`
	BatchApplicable    *bool    `json:"batchApplicable"`
}

func (s *Session) EditRow(employeeID string, patch RowPatch) error {
	row, ok := s.index[employeeID]
	if !ok {
		return ErrRowNotFound
	}
	if patch.ActualAttendance != nil {
		row.ActualAttendance = *patch.ActualAttendance
	}
	if patch.RequiredAttendance != nil {
		row.RequiredAttendance = *patch.RequiredAttendance
	}
	if patch.AnnotationScore != nil {
		row.AnnotationScore = *patch.AnnotationScore
	}
	if patch.OnsitePerformance != nil {
		row.OnsitePerformance = *patch.OnsitePerformance
	}
	if patch.DeductionPoints != nil {
		row.DeductionPoints = *patch.DeductionPoints
	}
	if patch.DeductionReason != nil {
		row.DeductionReason = *patch.DeductionReason
	}
	if patch.BonusPoints != nil {
		row.BonusPoints = *patch.BonusPoints
	}
	if patch.BonusReason != nil {
		row.BonusReason = *patch.BonusReason
	}
	if patch.Selected != nil {
		row.Selected = *patch.Selected
	}
	if patch.BatchApplicable != nil {
		row.BatchApplicable = *patch.BatchApplicable
	}
	return nil
}

// BatchValues are applied to every row currently flagged batch-applicable.
type BatchValues struct {
	ActualAttendance   *float64 `json:"actualAttendance"`
	RequiredAttendance *float64 `json:"requiredAttendance"`
	AnnotationScore    *float64 `json:"annotationScore"`
	OnsitePerformance  *float64 `json:"onsitePerformance"`
	DeductionPoints    *float64 `json:"deductionPoints"`
	DeductionReason    *string  `json:"deductionReason"`
	BonusPoints        *float64 `json:"bonusPoints"`
	BonusReason        *string  `json:"bonusReason"`
}

// ApplyBatch returns the number of rows touched.
func (s *Session) ApplyBatch(values BatchValues) int {
	touched := 0
	for _, row := range s.rows {
		if !row.BatchApplicable {
			continue
		}
		if values.ActualAttendance != nil {
			row.ActualAttendance = *values.ActualAttendance
		}
		if values.RequiredAttendance != nil {
			row.RequiredAttendance = *values.RequiredAttendance
		}
		if values.AnnotationScore != nil {
			row.AnnotationScore = *values.AnnotationScore
		}
		if values.OnsitePerformance != nil {
			row.OnsitePerformance = *values.OnsitePerformance
		}
		if values.DeductionPoints != nil {
			row.DeductionPoints = *values.DeductionPoints
		}
		if values.DeductionReason != nil {
			row.DeductionReason = *values.DeductionReason
		}
		if values.BonusPoints != nil {
			row.BonusPoints = *values.BonusPoints
		}
		if values.BonusReason != nil {
			row.BonusReason = *values.BonusReason
		}
		touched++
	}
	return touched
}

// Preview returns the roster sorted by preview score, highest first. The sort
// uses the same formula as the record store, but only as an advisory ordering.
func (s *Session) Preview() []Row {
	rows := s.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PreviewScore > rows[j].PreviewScore
	})
	return rows
}

func (s *Session) selectedRows() []Row {
	var out []Row
	for _, row := range s.rows {
		if row.Selected {
			out = append(out, *row)
		}
	}
	return out
}
