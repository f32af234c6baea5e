package export

import (
	"fmt"

	ics "github.com/arran4/golang-ical"

	"github.com/shiftworks/timeclock/timelog"
)

// ICS renders the closed sessions in the inclusive date range as an
// iCalendar document, one event per session. Open sessions have no end
// instant and are skipped.
func ICS(entries []timelog.Entry, startDate, endDate string) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shiftworks//timeclock//EN")

	for _, e := range FilterRange(entries, startDate, endDate) {
		if e.ClockOut == nil {
			continue
		}
		ev := cal.AddEvent(e.ID)
		ev.SetStartAt(e.ClockIn.UTC())
		ev.SetEndAt(e.ClockOut.UTC())
		ev.SetSummary(fmt.Sprintf("%s (%s)", e.EmployeeName, e.Location))
		ev.SetDescription(fmt.Sprintf("Work session, %s hours", hoursField(e)))
	}

	return []byte(cal.Serialize()), nil
}

// ICSFilename returns the download filename for a range export.
func ICSFilename(startDate, endDate string) string {
	return fmt.Sprintf("time-records-%s-to-%s.ics", startDate, endDate)
}
