package inspection

import "time"

// Aggregate is the persisted unit of reconciliation: one row per
// (employee, date, batch) holding summed inspection counts.
type Aggregate struct {
	ID             string    `json:"id,omitempty"`
	EmployeeID     string    `json:"employeeId"`
	EmployeeName   string    `json:"employeeName,omitempty"`
	BranchID       string    `json:"branchId"`
	Date           time.Time `json:"date"`
	Topic          string    `json:"topic"`
	BatchName      string    `json:"batchName"`
	InspectedCount int       `json:"inspectedCount"`
	ErrorCount     int       `json:"errorCount"`

	// rows contributing to this aggregate within one import, used to report
	// per-row failure counts when the upsert itself fails.
	rowCount int
}

// Result summarizes one import: per-row successes and failures plus a sample
// of the first error messages. Failed rows never abort the batch.
type Result struct {
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors,omitempty"`
}

// Totals is the Period Aggregator output for one employee.
type Totals struct {
	Inspected int `json:"inspected"`
	Errors    int `json:"errors"`
}
