package inspection

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Submissions arrive with a fixed column order:
// date, employee name, topic, batch name, inspected count, error count.
const submissionColumns = 6

var dateLayouts = []string{"2006-01-02", "2006/1/2", "2006.1.2"}

// Spreadsheet serial day numbers count from this epoch (the usual 1900 date
// system, shifted two days for its leap-year bug).
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const maxSerialDay = 2958465 // 9999-12-31

var multiSpace = regexp.MustCompile(`\s{2,}`)

// ParseFlexibleDate accepts ISO, slash and dot separated dates plus a
// spreadsheet serial-day fallback for cells pasted out of Excel.
func ParseFlexibleDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, cell); err == nil {
			return parsed, nil
		}
	}
	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		day := int(serial)
		if day >= 1 && day <= maxSerialDay {
			return serialEpoch.AddDate(0, 0, day), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", cell)
}

// SplitText turns pasted free-form text into cells. Each line is split on
// tabs, commas, or runs of two or more spaces, in that order of preference.
func SplitText(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	return rows
}

func splitLine(line string) []string {
	var parts []string
	switch {
	case strings.Contains(line, "\t"):
		parts = strings.Split(line, "\t")
	case strings.Contains(line, ","):
		parts = strings.Split(line, ",")
	default:
		parts = multiSpace.Split(line, -1)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseWorkbook reads the first sheet of an xlsx upload into cells.
func ParseWorkbook(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySubmission
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	for i := range rows {
		for j := range rows[i] {
			rows[i][j] = strings.TrimSpace(rows[i][j])
		}
	}
	return rows, nil
}

// StripHeader drops the first row when it looks like a header: its first cell
// is neither a parseable date nor the literal date column label. Otherwise
// every row, the first included, is data.
func StripHeader(rows [][]string) [][]string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return rows
	}
	first := strings.TrimSpace(rows[0][0])
	if isHeaderLabel(first) {
		return rows[1:]
	}
	if _, err := ParseFlexibleDate(first); err != nil {
		return rows[1:]
	}
	return rows
}

func isHeaderLabel(cell string) bool {
	switch strings.ToLower(cell) {
	case "date", "日期":
		return true
	}
	return false
}
