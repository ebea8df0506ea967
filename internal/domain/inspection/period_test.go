package inspection

import (
	"context"
	"strings"
	"testing"
)

func TestPeriodRangeMonthLengths(t *testing.T) {
	cases := map[string][2]string{
		"2024-02": {"2024-02-01", "2024-02-29"}, // leap year
		"2023-02": {"2023-02-01", "2023-02-28"},
		"2024-04": {"2024-04-01", "2024-04-30"},
		"2024-12": {"2024-12-01", "2024-12-31"},
	}
	for period, want := range cases {
		start, end, err := PeriodRange(period)
		if err != nil {
			t.Fatalf("range for %s: %v", period, err)
		}
		if got := start.Format("2006-01-02"); got != want[0] {
			t.Fatalf("%s start: expected %s, got %s", period, want[0], got)
		}
		if got := end.Format("2006-01-02"); got != want[1] {
			t.Fatalf("%s end: expected %s, got %s", period, want[1], got)
		}
	}
}

func TestPeriodRangeRejectsMalformed(t *testing.T) {
	for _, period := range []string{"", "2024", "2024-13", "03-2024", "2024/03"} {
		if _, _, err := PeriodRange(period); err != ErrInvalidPeriod {
			t.Fatalf("expected ErrInvalidPeriod for %q, got %v", period, err)
		}
	}
}

func TestTotalsForPeriodSumsWithinMonthOnly(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	lines := strings.Join([]string{
		"2024-02-01,Alice,labels,b1,100,2",
		"2024-02-29,Alice,labels,b2,50,1",
		"2024-03-01,Alice,labels,b3,999,9", // outside the period
		"2024-02-10,Bob,labels,b1,80,0",
	}, "\n")
	if _, err := svc.Import(context.Background(), "b", SplitText(lines), testNames); err != nil {
		t.Fatalf("seed import failed: %v", err)
	}

	totals, err := svc.TotalsForPeriod(context.Background(), []string{"emp-1", "emp-2", "emp-3"}, "2024-02")
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}

	if got := totals["emp-1"]; got.Inspected != 150 || got.Errors != 3 {
		t.Fatalf("expected Alice 150/3 within February, got %+v", got)
	}
	if got := totals["emp-2"]; got.Inspected != 80 || got.Errors != 0 {
		t.Fatalf("expected Bob 80/0, got %+v", got)
	}
	if got, ok := totals["emp-3"]; !ok || got.Inspected != 0 || got.Errors != 0 {
		t.Fatalf("expected zero totals for employee with no aggregates, got %+v (present=%v)", got, ok)
	}
}
