package inspection

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"perftrack/internal/domain/scope"
)

type fakeStore struct {
	aggregates map[string]Aggregate
	failKeys   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{aggregates: make(map[string]Aggregate), failKeys: make(map[string]bool)}
}

func aggKey(a Aggregate) string {
	return a.EmployeeID + "|" + a.Date.Format("2006-01-02") + "|" + a.BatchName
}

func (f *fakeStore) UpsertAggregate(_ context.Context, agg Aggregate) error {
	key := aggKey(agg)
	if f.failKeys[key] {
		return errors.New("connection refused")
	}
	f.aggregates[key] = agg
	return nil
}

func (f *fakeStore) TotalsForRange(_ context.Context, employeeIDs []string, start, end time.Time) (map[string]Totals, error) {
	totals := make(map[string]Totals)
	for _, agg := range f.aggregates {
		if agg.Date.Before(start) || agg.Date.After(end) {
			continue
		}
		for _, id := range employeeIDs {
			if id == agg.EmployeeID {
				t := totals[id]
				t.Inspected += agg.InspectedCount
				t.Errors += agg.ErrorCount
				totals[id] = t
			}
		}
	}
	return totals, nil
}

func (f *fakeStore) List(_ context.Context, _ scope.Scope, _ string, _, _ time.Time) ([]Aggregate, error) {
	return nil, nil
}

var testNames = map[string]string{"Alice": "emp-1", "Bob": "emp-2", "王伟": "emp-3"}

func TestImportMergesRowsWithinBatch(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	rows := SplitText(strings.Join([]string{
		"2024-03-05,Alice,labels,b1,100,2",
		"2024-03-05,Alice,labels,b1,50,1",
		"2024-03-05,Bob,labels,b1,80,0",
	}, "\n"))

	result, err := svc.Import(context.Background(), "branch-1", rows, testNames)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.SuccessCount != 3 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	merged := store.aggregates["emp-1|2024-03-05|b1"]
	if merged.InspectedCount != 150 || merged.ErrorCount != 3 {
		t.Fatalf("expected summed counts 150/3, got %d/%d", merged.InspectedCount, merged.ErrorCount)
	}
}

func TestImportUnmatchedNameIsPerRowError(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	rows := SplitText(strings.Join([]string{
		"2024-03-05,Alice,labels,b1,100,2",
		"2024-03-05,佚名,labels,b1,10,0",
		"2024-03-05,Bob,labels,b1,80,0",
	}, "\n"))

	result, err := svc.Import(context.Background(), "branch-1", rows, testNames)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("expected 2 ok / 1 failed, got %+v", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "employee not found: 佚名") {
		t.Fatalf("expected named per-row error, got %v", result.Errors)
	}
}

func TestImportNameMatchIsCaseSensitiveAndBranchLocal(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	rows := SplitText("2024-03-05,alice,labels,b1,100,2")
	result, err := svc.Import(context.Background(), "branch-1", rows, testNames)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.FailedCount != 1 || result.SuccessCount != 0 {
		t.Fatalf("lowercase name must not match: %+v", result)
	}
}

func TestImportBadDateDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	rows := SplitText(strings.Join([]string{
		"2024-03-05,Bob,labels,b1,80,1",
		"2024-13-40,Alice,labels,b1,100,2",
	}, "\n"))

	result, err := svc.Import(context.Background(), "branch-1", rows, testNames)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.SuccessCount != 1 || result.FailedCount != 1 {
		t.Fatalf("expected 1 ok / 1 failed, got %+v", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "line 2") {
		t.Fatalf("expected a line 2 date error, got %v", result.Errors)
	}
	if _, ok := store.aggregates["emp-2|2024-03-05|b1"]; !ok {
		t.Fatalf("valid row should have persisted despite sibling failure")
	}
}

func TestImportOrderInsensitiveMerge(t *testing.T) {
	lines := []string{
		"2024-03-05,Alice,labels,b1,10,1",
		"2024-03-05,Alice,labels,b1,20,0",
		"2024-03-05,Alice,labels,b1,30,2",
		"2024-03-05,Alice,labels,b1,40,1",
	}

	first := newFakeStore()
	if _, err := NewService(first).Import(context.Background(), "b", SplitText(strings.Join(lines, "\n")), testNames); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	reversed := []string{lines[3], lines[2], lines[1], lines[0]}
	second := newFakeStore()
	if _, err := NewService(second).Import(context.Background(), "b", SplitText(strings.Join(reversed, "\n")), testNames); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	a := first.aggregates["emp-1|2024-03-05|b1"]
	b := second.aggregates["emp-1|2024-03-05|b1"]
	if a.InspectedCount != b.InspectedCount || a.ErrorCount != b.ErrorCount {
		t.Fatalf("merge must be order-insensitive: %+v vs %+v", a, b)
	}
	if a.InspectedCount != 100 || a.ErrorCount != 4 {
		t.Fatalf("expected 100/4, got %d/%d", a.InspectedCount, a.ErrorCount)
	}
}

func TestImportReplacesStoredAggregate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	if _, err := svc.Import(context.Background(), "b", SplitText("2024-03-05,Alice,labels,b1,100,9"), testNames); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if _, err := svc.Import(context.Background(), "b", SplitText("2024-03-05,Alice,labels,b1,40,1"), testNames); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	agg := store.aggregates["emp-1|2024-03-05|b1"]
	if agg.InspectedCount != 40 || agg.ErrorCount != 1 {
		t.Fatalf("re-import must replace, not add: got %d/%d", agg.InspectedCount, agg.ErrorCount)
	}
}

func TestImportPersistFailureIsPerItem(t *testing.T) {
	store := newFakeStore()
	store.failKeys["emp-1|2024-03-05|b1"] = true
	svc := NewService(store)

	rows := SplitText(strings.Join([]string{
		"2024-03-05,Alice,labels,b1,100,2",
		"2024-03-05,Bob,labels,b1,80,0",
	}, "\n"))

	result, err := svc.Import(context.Background(), "b", rows, testNames)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.SuccessCount != 1 || result.FailedCount != 1 {
		t.Fatalf("expected partial success, got %+v", result)
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "connection refused") {
		t.Fatalf("expected persistence error reported, got %v", result.Errors)
	}
}

func TestImportEmptySubmission(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Import(context.Background(), "b", nil, testNames); err != ErrEmptySubmission {
		t.Fatalf("expected ErrEmptySubmission, got %v", err)
	}
}
