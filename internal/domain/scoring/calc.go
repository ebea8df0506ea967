package scoring

// Weights are the four percentage weights applied to the sub-scores. They are
// snapshotted onto every performance record so historical rows keep the
// profile they were generated with. They conventionally sum to 100 but that is
// not enforced.
type Weights struct {
	Attendance float64 `json:"weightAttendance"`
	Annotation float64 `json:"weightAnnotation"`
	Onsite     float64 `json:"weightOnsite"`
	Accuracy   float64 `json:"weightAccuracy"`
}

type Inputs struct {
	ActualAttendance   float64
	RequiredAttendance float64
	AnnotationScore    float64
	OnsitePerformance  float64
	TotalInspected     int
	TotalErrors        int
	DeductionPoints    float64
	BonusPoints        float64
}

// AttendanceScore degrades to a neutral 100 when no attendance is required,
// so employees without a requirement yet are not penalized.
func AttendanceScore(actual, required float64) float64 {
	if required <= 0 {
		return 100
	}
	return actual / required * 100
}

// OnsiteScore maps the 1-5 onsite rating onto a 0-100 scale.
func OnsiteScore(onsite float64) float64 {
	return onsite / 5 * 100
}

// AccuracyScore degrades to a neutral 100 when nothing was inspected.
func AccuracyScore(inspected, errors int) float64 {
	if inspected <= 0 {
		return 100
	}
	return (1 - float64(errors)/float64(inspected)) * 100
}

// Compute is the single source of truth for the composite score. Deduction and
// bonus apply after weighting and the result is deliberately unclamped: severe
// infractions may drive it negative and strong recognition may push it past
// 100. An earlier clamp to [0,100] was removed on purpose; do not reintroduce
// it.
func Compute(in Inputs, w Weights) float64 {
	base := in.AnnotationScore*w.Annotation/100 +
		AttendanceScore(in.ActualAttendance, in.RequiredAttendance)*w.Attendance/100 +
		OnsiteScore(in.OnsitePerformance)*w.Onsite/100 +
		AccuracyScore(in.TotalInspected, in.TotalErrors)*w.Accuracy/100
	return base - in.DeductionPoints + in.BonusPoints
}
