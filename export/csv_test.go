package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftworks/timeclock/export"
	"github.com/shiftworks/timeclock/timelog"
)

func closedEntry(id, name, date string, in, out time.Time, hours float64) timelog.Entry {
	return timelog.Entry{
		ID:           id,
		EmployeeID:   "emp-" + id,
		EmployeeName: name,
		ClockIn:      in,
		ClockOut:     &out,
		Date:         date,
		TotalHours:   &hours,
		Status:       timelog.StatusClockedOut,
		Location:     "Manual",
	}
}

func openEntry(id, name, date string, in time.Time) timelog.Entry {
	return timelog.Entry{
		ID:           id,
		EmployeeID:   "emp-" + id,
		EmployeeName: name,
		ClockIn:      in,
		Date:         date,
		Status:       timelog.StatusClockedIn,
		Location:     "Device FP001",
	}
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVHeaderAndRows(t *testing.T) {
	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)
	entries := []timelog.Entry{
		closedEntry("e1", "Jane Doe", "2024-01-15", in, out, 8.5),
		openEntry("e2", "John Roe", "2024-01-15", in),
	}

	data, err := export.CSV(entries, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	records := parseCSV(t, data)
	require.Len(t, records, 3)
	assert.Equal(t, export.Columns, records[0])
	assert.Equal(t, []string{"Jane Doe", "2024-01-15", "09:00", "17:30", "8.50", "Manual"}, records[1])
	assert.Equal(t, []string{"John Roe", "2024-01-15", "09:00", "Still Working", "0", "Device FP001"}, records[2])
}

func TestCSVQuotesCommasInNames(t *testing.T) {
	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	entries := []timelog.Entry{
		closedEntry("e1", "Doe, Jane", "2024-01-15", in, out, 8),
	}

	data, err := export.CSV(entries, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	// The embedded comma must not shift columns.
	records := parseCSV(t, data)
	require.Len(t, records, 2)
	require.Len(t, records[1], len(export.Columns))
	assert.Equal(t, "Doe, Jane", records[1][0])
	assert.Contains(t, string(data), `"Doe, Jane"`)
}

func TestCSVEmptyRange(t *testing.T) {
	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	entries := []timelog.Entry{openEntry("e1", "Jane Doe", "2024-01-15", in)}

	// No entries in range.
	data, err := export.CSV(entries, "2024-02-01", "2024-02-28")
	require.NoError(t, err)
	assert.Len(t, parseCSV(t, data), 1)

	// Inverted range.
	data, err = export.CSV(entries, "2024-01-31", "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, parseCSV(t, data), 1)
}

func TestCSVTimesRenderedInUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	in := time.Date(2024, 1, 15, 4, 0, 0, 0, est) // 09:00 UTC
	out := in.Add(8 * time.Hour)
	entries := []timelog.Entry{closedEntry("e1", "Jane Doe", "2024-01-15", in, out, 8)}

	data, err := export.CSV(entries, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	records := parseCSV(t, data)
	assert.Equal(t, "09:00", records[1][2])
	assert.Equal(t, "17:00", records[1][3])
}

func TestFilterRange(t *testing.T) {
	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	entries := []timelog.Entry{
		openEntry("e1", "A", "2024-01-10", in),
		openEntry("e2", "B", "2024-01-15", in),
		openEntry("e3", "C", "2024-01-20", in),
	}

	// Bounds are inclusive.
	got := export.FilterRange(entries, "2024-01-10", "2024-01-15")
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)

	assert.Len(t, export.FilterRange(entries, "", ""), 3)
	assert.Len(t, export.FilterRange(entries, "2024-01-16", ""), 1)
	assert.Len(t, export.FilterRange(entries, "", "2024-01-14"), 1)
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "time-records-2024-01-01-to-2024-01-31.csv",
		export.CSVFilename("2024-01-01", "2024-01-31"))
}
