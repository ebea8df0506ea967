package record

import (
	"time"

	"perftrack/internal/domain/scoring"
)

// PerformanceRecord is the one-row-per-(employee, period) result of batch
// generation or direct edits. The weight profile is stored per row so
// historical records keep the weights in effect when they were generated.
type PerformanceRecord struct {
	ID           string `json:"id,omitempty"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty"`
	BranchID     string `json:"branchId"`
	GroupID      string `json:"groupId,omitempty"`
	Period       string `json:"period"`

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

	Weights scoring.Weights `json:"weights"`

	FinalScore float64   `json:"finalScore"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// Inputs maps the stored fields onto the scoring engine's input set.
func (r PerformanceRecord) Inputs() scoring.Inputs {
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
