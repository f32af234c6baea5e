// Package export renders date-bounded slices of the time-entry log for
// payroll and compliance: CSV, XLSX, iCalendar, and a printable HTML
// report.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/shiftworks/timeclock/timelog"
)

// Columns is the fixed export column set, shared by CSV and XLSX.
var Columns = []string{"Employee Name", "Date", "Clock In", "Clock Out", "Total Hours", "Device/Location"}

// stillWorking is the clock-out placeholder for open sessions.
const stillWorking = "Still Working"

// CSV renders the entries whose date falls in the inclusive range as
// comma-separated values with a header row. Fields are quoted per RFC
// 4180, so names containing commas round-trip. An empty or inverted
// range yields a header-only document.
func CSV(entries []timelog.Entry, startDate, endDate string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range FilterRange(entries, startDate, endDate) {
		if err := w.Write(row(e)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVFilename returns the download filename for a range export.
func CSVFilename(startDate, endDate string) string {
	return fmt.Sprintf("time-records-%s-to-%s.csv", startDate, endDate)
}

// FilterRange returns the entries whose date is within the inclusive
// range. Empty bounds leave that side open.
func FilterRange(entries []timelog.Entry, startDate, endDate string) []timelog.Entry {
	var out []timelog.Entry
	for _, e := range entries {
		if startDate != "" && e.Date < startDate {
			continue
		}
		if endDate != "" && e.Date > endDate {
			continue
		}
		out = append(out, e)
	}
	return out
}

// row renders one entry in the shared column order.
func row(e timelog.Entry) []string {
	return []string{
		e.EmployeeName,
		e.Date,
		clockTime(e.ClockIn),
		clockOutField(e),
		hoursField(e),
		e.Location,
	}
}

func clockOutField(e timelog.Entry) string {
	if e.ClockOut == nil {
		return stillWorking
	}
	return clockTime(*e.ClockOut)
}

// hoursField renders recorded hours with two decimals; open sessions
// have no total yet and render as "0".
func hoursField(e timelog.Entry) string {
	if e.TotalHours == nil {
		return "0"
	}
	return strconv.FormatFloat(*e.TotalHours, 'f', 2, 64)
}
