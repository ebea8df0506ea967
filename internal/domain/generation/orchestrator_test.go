package generation

import (
	"context"
	"errors"
	"testing"

	"perftrack/internal/domain/record"
	"perftrack/internal/domain/scope"
)

type fakeRecordStore struct {
	records map[string]record.PerformanceRecord // employeeID|period
	failIDs map[string]bool
	upserts int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		records: make(map[string]record.PerformanceRecord),
		failIDs: make(map[string]bool),
	}
}

func (f *fakeRecordStore) Upsert(_ context.Context, rec record.PerformanceRecord) (record.PerformanceRecord, error) {
	f.upserts++
	if f.failIDs[rec.EmployeeID] {
		return record.PerformanceRecord{}, errors.New("connection reset")
	}
	f.records[rec.EmployeeID+"|"+rec.Period] = rec
	return rec, nil
}

func (f *fakeRecordStore) Get(context.Context, scope.Scope, string) (*record.PerformanceRecord, error) {
	return nil, record.ErrRecordNotFound
}

func (f *fakeRecordStore) List(context.Context, scope.Scope, string, string, string) ([]record.PerformanceRecord, error) {
	return nil, nil
}

func (f *fakeRecordStore) Update(_ context.Context, rec record.PerformanceRecord) (record.PerformanceRecord, error) {
	return rec, nil
}

func (f *fakeRecordStore) Delete(context.Context, string) error { return nil }

func TestCommitWritesOneRecordPerSelectedRow(t *testing.T) {
	store := newFakeRecordStore()
	sess := loadTestRoster(t)
	off := false
	if err := sess.EditRow("emp-3", RowPatch{Selected: &off}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	summary, err := NewOrchestrator(store).Commit(context.Background(), sess)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if summary.SuccessCount != 2 || summary.FailedCount != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(store.records) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(store.records))
	}
	if _, ok := store.records["emp-3|2024-03"]; ok {
		t.Fatal("deselected employee must not be committed")
	}
}

func TestCommitUsesSessionScopeNotEmployeeProfile(t *testing.T) {
	store := newFakeRecordStore()
	sess := loadTestRoster(t)

	if _, err := NewOrchestrator(store).Commit(context.Background(), sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	rec := store.records["emp-1|2024-03"]
	if rec.BranchID != "branch-1" || rec.GroupID != "group-1" {
		t.Fatalf("record should carry the session's branch and group, got %+v", rec)
	}
	if rec.Weights != testWeights {
		t.Fatalf("record should carry the session's weights, got %+v", rec.Weights)
	}
}

func TestCommitRejectsEmptySelectionBeforeAnyWrite(t *testing.T) {
	store := newFakeRecordStore()
	sess := loadTestRoster(t)
	off := false
	for _, id := range []string{"emp-1", "emp-2", "emp-3"} {
		if err := sess.EditRow(id, RowPatch{Selected: &off}); err != nil {
			t.Fatalf("edit: %v", err)
		}
	}

	_, err := NewOrchestrator(store).Commit(context.Background(), sess)
	if !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
	if store.upserts != 0 {
		t.Fatalf("no store call should be made, got %d", store.upserts)
	}
}

func TestCommitRejectsSessionWithoutScope(t *testing.T) {
	store := newFakeRecordStore()
	sess := NewSession("sess-1", "mgr-1")

	_, err := NewOrchestrator(store).Commit(context.Background(), sess)
	if !errors.Is(err, ErrScopeNotChosen) {
		t.Fatalf("expected ErrScopeNotChosen, got %v", err)
	}
}

func TestCommitContinuesPastRowFailures(t *testing.T) {
	store := newFakeRecordStore()
	store.failIDs["emp-2"] = true
	sess := loadTestRoster(t)

	summary, err := NewOrchestrator(store).Commit(context.Background(), sess)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if summary.SuccessCount != 2 || summary.FailedCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.FailedNames) != 1 || summary.FailedNames[0] != "李四" {
		t.Fatalf("expected failed name 李四, got %v", summary.FailedNames)
	}
	if summary.SampleError == "" {
		t.Fatal("expected a sample error for the failed row")
	}
	if _, ok := store.records["emp-1|2024-03"]; !ok {
		t.Fatal("successful rows must still be committed")
	}
}

func TestCommitIsIdempotentPerEmployeePeriod(t *testing.T) {
	store := newFakeRecordStore()
	sess := loadTestRoster(t)
	orch := NewOrchestrator(store)

	if _, err := orch.Commit(context.Background(), sess); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	att := 15.0
	if err := sess.EditRow("emp-1", RowPatch{ActualAttendance: &att}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := orch.Commit(context.Background(), sess); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	if len(store.records) != 3 {
		t.Fatalf("re-commit must replace, not duplicate: %d records", len(store.records))
	}
	if got := store.records["emp-1|2024-03"].ActualAttendance; got != 15 {
		t.Fatalf("second commit's values should win, got attendance %v", got)
	}
}
