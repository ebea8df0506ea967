package inspection

import (
	"context"
	"fmt"
	"time"

	"perftrack/internal/domain/scope"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Import reconciles raw cells against the target branch's employee index and
// persists the merged aggregates. Each upsert is independent: a store failure
// marks that aggregate's rows as failed and moves on.
func (s *Service) Import(ctx context.Context, branchID string, rows [][]string, names map[string]string) (Result, error) {
	rows = StripHeader(rows)
	if len(rows) == 0 {
		return Result{}, ErrEmptySubmission
	}

	aggregates, rowErrors, failed := reconcile(rows, names, branchID)

	result := Result{FailedCount: failed, Errors: rowErrors}
	for _, agg := range aggregates {
		if err := s.store.UpsertAggregate(ctx, *agg); err != nil {
			result.FailedCount += agg.rowCount
			result.Errors = append(result.Errors, fmt.Sprintf("persist %s %s/%s: %v",
				agg.Date.Format("2006-01-02"), agg.EmployeeID, agg.BatchName, err))
			continue
		}
		result.SuccessCount += agg.rowCount
	}
	if len(result.Errors) > maxSampleErrors {
		result.Errors = result.Errors[:maxSampleErrors]
	}
	return result, nil
}

// TotalsForPeriod is the Period Aggregator: it sums every aggregate of each
// employee inside the period's calendar month. Employees without aggregates
// yield zero totals. Read-only.
func (s *Service) TotalsForPeriod(ctx context.Context, employeeIDs []string, period string) (map[string]Totals, error) {
	start, end, err := PeriodRange(period)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.TotalsForRange(ctx, employeeIDs, start, end)
	if err != nil {
		return nil, err
	}
	for _, id := range employeeIDs {
		if _, ok := totals[id]; !ok {
			totals[id] = Totals{}
		}
	}
	return totals, nil
}

func (s *Service) List(ctx context.Context, sc scope.Scope, branchID string, start, end time.Time) ([]Aggregate, error) {
	return s.store.List(ctx, sc, branchID, start, end)
}
