package inspection

import (
	"fmt"
	"strconv"
	"time"
)

const maxSampleErrors = 10

type mergeKey struct {
	employeeID string
	date       string
	batch      string
}

// reconcile normalizes raw cells into aggregates for one branch. Employee
// names resolve case-sensitively against the branch's own roster only; a name
// that exists in another branch is still an error here. Rows sharing
// (employee, date, batch) are summed before persistence. Failed rows are
// reported and skipped, never aborting the batch.
func reconcile(rows [][]string, names map[string]string, branchID string) ([]*Aggregate, []string, int) {
	merged := make(map[mergeKey]*Aggregate)
	var order []mergeKey
	var rowErrors []string
	failed := 0

	for i, cells := range rows {
		line := i + 1
		if len(cells) < submissionColumns {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: expected %d columns, got %d", line, submissionColumns, len(cells)))
			continue
		}

		date, err := ParseFlexibleDate(cells[0])
		if err != nil {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		name := cells[1]
		employeeID, ok := names[name]
		if !ok {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: employee not found: %s", line, name))
			continue
		}

		inspected, err := strconv.Atoi(cells[4])
		if err != nil {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid inspected count %q", line, cells[4]))
			continue
		}
		errCount, err := strconv.Atoi(cells[5])
		if err != nil {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid error count %q", line, cells[5]))
			continue
		}

		key := mergeKey{employeeID: employeeID, date: date.Format("2006-01-02"), batch: cells[3]}
		agg, exists := merged[key]
		if !exists {
			agg = &Aggregate{
				EmployeeID: employeeID,
				BranchID:   branchID,
				Date:       date,
				BatchName:  cells[3],
			}
			merged[key] = agg
			order = append(order, key)
		}
		if cells[2] != "" {
			agg.Topic = cells[2]
		}
		agg.InspectedCount += inspected
		agg.ErrorCount += errCount
		agg.rowCount++
	}

	out := make([]*Aggregate, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return out, rowErrors, failed
}

// PeriodRange expands a YYYY-MM period into its inclusive calendar month
// bounds, month lengths and leap years included.
func PeriodRange(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}
