package inspection

import (
	"testing"
	"time"
)

func TestParseFlexibleDateFormats(t *testing.T) {
	cases := map[string]string{
		"2024-03-05": "2024-03-05",
		"2024/3/5":   "2024-03-05",
		"2024.3.5":   "2024-03-05",
		"2024/12/31": "2024-12-31",
	}
	for input, want := range cases {
		parsed, err := ParseFlexibleDate(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got := parsed.Format("2006-01-02"); got != want {
			t.Fatalf("parse %q: expected %s, got %s", input, want, got)
		}
	}
}

func TestParseFlexibleDateSerialFallback(t *testing.T) {
	// 45357 days past 1899-12-30 is 2024-03-06.
	parsed, err := ParseFlexibleDate("45357")
	if err != nil {
		t.Fatalf("serial parse failed: %v", err)
	}
	want := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format("2006-01-02"), parsed.Format("2006-01-02"))
	}
}

func TestParseFlexibleDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "yesterday", "03-2024", "99999999"} {
		if _, err := ParseFlexibleDate(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestSplitTextDelimiters(t *testing.T) {
	tabbed := "2024-03-05\tAlice\tlabels\tbatch-1\t100\t2"
	rows := SplitText(tabbed)
	if len(rows) != 1 || len(rows[0]) != 6 {
		t.Fatalf("tab split failed: %+v", rows)
	}

	comma := "2024-03-05,Alice,labels,batch-1,100,2"
	rows = SplitText(comma)
	if len(rows) != 1 || rows[0][1] != "Alice" {
		t.Fatalf("comma split failed: %+v", rows)
	}

	spaced := "2024-03-05  Alice  labels  batch-1  100  2"
	rows = SplitText(spaced)
	if len(rows) != 1 || len(rows[0]) != 6 || rows[0][3] != "batch-1" {
		t.Fatalf("multi-space split failed: %+v", rows)
	}
}

func TestSplitTextSkipsBlankLines(t *testing.T) {
	rows := SplitText("2024-03-05,A,t,b,1,0\n\n\n2024-03-06,B,t,b,2,1\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestStripHeaderDetection(t *testing.T) {
	withHeader := [][]string{
		{"Date", "Name", "Topic", "Batch", "Inspected", "Errors"},
		{"2024-03-05", "Alice", "labels", "b1", "10", "1"},
	}
	if rows := StripHeader(withHeader); len(rows) != 1 {
		t.Fatalf("expected header row stripped, got %d rows", len(rows))
	}

	labelled := [][]string{
		{"日期", "姓名", "主题", "批次", "质检数", "错误数"},
		{"2024-03-05", "王伟", "标注", "b1", "10", "1"},
	}
	if rows := StripHeader(labelled); len(rows) != 1 {
		t.Fatalf("expected localized header stripped, got %d rows", len(rows))
	}

	allData := [][]string{
		{"2024-03-05", "Alice", "labels", "b1", "10", "1"},
		{"2024-03-06", "Bob", "labels", "b1", "12", "0"},
	}
	if rows := StripHeader(allData); len(rows) != 2 {
		t.Fatalf("expected all rows kept, got %d", len(rows))
	}
}
