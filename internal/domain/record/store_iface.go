package record

import (
	"context"

	"perftrack/internal/domain/scope"
)

type StoreAPI interface {
	Upsert(ctx context.Context, rec PerformanceRecord) (PerformanceRecord, error)
	Get(ctx context.Context, sc scope.Scope, recordID string) (*PerformanceRecord, error)
	List(ctx context.Context, sc scope.Scope, branchID, groupID, period string) ([]PerformanceRecord, error)
	Update(ctx context.Context, rec PerformanceRecord) (PerformanceRecord, error)
	Delete(ctx context.Context, recordID string) error
}
