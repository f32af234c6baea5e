package timelog

import "time"

// Aggregation queries are pure reads over the current log, recomputed on
// every call. Date comparisons use the redundant Date field, so the
// boundary semantics are exactly those of DateOf.

// ActiveEmployees returns the open entries dated today (UTC). An open
// entry whose date is not today, such as a session that crossed midnight
// without clocking out, is deliberately excluded.
func (s *Store) ActiveEmployees() []Entry {
	return s.ActiveEmployeesOn(DateOf(time.Now()))
}

// ActiveEmployeesOn returns the open entries dated date.
func (s *Store) ActiveEmployeesOn(date string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for i := range s.entries {
		if s.entries[i].Status == StatusClockedIn && s.entries[i].Date == date {
			out = append(out, s.entries[i])
		}
	}
	return out
}

// TodayEntries returns all entries, open or closed, dated today (UTC).
func (s *Store) TodayEntries() []Entry {
	return s.EntriesOn(DateOf(time.Now()))
}

// EntriesOn returns all entries dated date.
func (s *Store) EntriesOn(date string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for i := range s.entries {
		if s.entries[i].Date == date {
			out = append(out, s.entries[i])
		}
	}
	return out
}

// WeeklyHours sums the recorded hours for an employee in the current
// week. Open sessions have no TotalHours yet and contribute zero.
func (s *Store) WeeklyHours(employeeID string) float64 {
	return s.WeeklyHoursAsOf(employeeID, time.Now())
}

// WeeklyHoursAsOf sums recorded hours for entries dated on or after the
// week start containing now.
func (s *Store) WeeklyHoursAsOf(employeeID string, now time.Time) float64 {
	weekStart := WeekStart(now)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for i := range s.entries {
		e := &s.entries[i]
		if e.EmployeeID != employeeID || e.Date < weekStart || e.TotalHours == nil {
			continue
		}
		total += *e.TotalHours
	}
	return total
}

// EntriesFor returns an employee's entries filtered by an inclusive date
// range. Empty bounds leave that side of the range open.
func (s *Store) EntriesFor(employeeID, startDate, endDate string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for i := range s.entries {
		e := &s.entries[i]
		if e.EmployeeID != employeeID {
			continue
		}
		if startDate != "" && e.Date < startDate {
			continue
		}
		if endDate != "" && e.Date > endDate {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// WeekStart returns the ISO date of the most recent Sunday on or before
// t (UTC). Week boundaries are fixed, not configurable.
func WeekStart(t time.Time) string {
	u := t.UTC()
	return DateOf(u.AddDate(0, 0, -int(u.Weekday())))
}
