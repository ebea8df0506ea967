package inspection

import (
	"context"
	"time"

	"perftrack/internal/domain/scope"
)

type StoreAPI interface {
	UpsertAggregate(ctx context.Context, agg Aggregate) error
	TotalsForRange(ctx context.Context, employeeIDs []string, start, end time.Time) (map[string]Totals, error)
	List(ctx context.Context, sc scope.Scope, branchID string, start, end time.Time) ([]Aggregate, error)
}
