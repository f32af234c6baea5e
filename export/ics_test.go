package export_test

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftworks/timeclock/export"
	"github.com/shiftworks/timeclock/timelog"
)

func TestICSClosedSessionsOnly(t *testing.T) {
	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC)
	entries := []timelog.Entry{
		closedEntry("e1", "Jane Doe", "2024-01-15", in, out, 8),
		openEntry("e2", "John Roe", "2024-01-15", in),
	}

	data, err := export.ICS(entries, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(data)))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].Id())

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(in))

	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(out))

	assert.Contains(t, string(data), "Jane Doe (Manual)")
}

func TestICSEmptyRange(t *testing.T) {
	data, err := export.ICS(nil, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
}

func TestICSFilename(t *testing.T) {
	assert.Equal(t, "time-records-2024-01-01-to-2024-01-31.ics",
		export.ICSFilename("2024-01-01", "2024-01-31"))
}
