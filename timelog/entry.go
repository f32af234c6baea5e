// Package timelog holds the time-entry log: the record model, the
// mutex-guarded store with snapshot persistence, and the aggregation
// queries derived from it.
package timelog

import "time"

// Status is the lifecycle state of a time entry.
type Status string

const (
	// StatusClockedIn marks an open session with no clock-out yet.
	StatusClockedIn Status = "clocked-in"
	// StatusClockedOut marks a closed session.
	StatusClockedOut Status = "clocked-out"
	// StatusOnBreak is reserved in the record format; no transition
	// produces it yet.
	StatusOnBreak Status = "break"
)

// Entry is one clock-in/clock-out work session for one employee.
// Entries are append-mostly: once created, only the clock-out transition
// mutates them (ClockOut, TotalHours, Status).
type Entry struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	EmployeeName string     `json:"employeeName"`
	ClockIn      time.Time  `json:"clockIn"`
	ClockOut     *time.Time `json:"clockOut,omitempty"`
	// Date is the UTC calendar date of ClockIn, stored redundantly so
	// range queries compare strings instead of re-parsing timestamps.
	Date       string   `json:"date"`
	TotalHours *float64 `json:"totalHours,omitempty"`
	Status     Status   `json:"status"`
	DeviceID   string   `json:"deviceId,omitempty"`
	Location   string   `json:"location"`
}

// Open reports whether the entry is an open session.
func (e *Entry) Open() bool {
	return e.Status == StatusClockedIn && e.ClockOut == nil
}

// DateOf returns the UTC calendar date of t in ISO format (2006-01-02).
// All date-boundary semantics in the log use this derivation.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// LocationFor derives the human-readable origin label for an entry.
// Device-originated entries are labeled by their device ID; everything
// else is "Manual".
func LocationFor(deviceID string) string {
	if deviceID == "" {
		return "Manual"
	}
	return "Device " + deviceID
}
