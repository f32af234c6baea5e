// Package ingest normalizes clock assertions from both sources, direct
// UI calls and asynchronous hardware events, into clock engine calls.
package ingest

import (
	"fmt"
	"time"
)

// Action is a clock assertion verb.
type Action string

const (
	ActionClockIn  Action = "clock-in"
	ActionClockOut Action = "clock-out"
)

// HardwareEvent is the wire shape asserted by hardware time clocks
// (fingerprint, RFID, and facial scanners). Timestamp is optional
// ISO-8601; when absent the server receive time is used.
type HardwareEvent struct {
	DeviceID     string `json:"deviceId"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Action       Action `json:"action"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// ValidationError describes why an event was dropped at the boundary.
// Reason is a low-cardinality label suitable for counting.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hardware event (%s): %s", e.Reason, e.Detail)
}

// Drop reasons counted by the adapter.
const (
	ReasonMissingEmployee  = "missing_employee"
	ReasonUnknownAction    = "unknown_action"
	ReasonBadTimestamp     = "bad_timestamp"
	ReasonDeviceNotAllowed = "device_not_allowed"
	ReasonMalformedPayload = "malformed_payload"
)

// Validate checks the required fields. Malformed events never reach
// the clock engine.
func (ev HardwareEvent) Validate() error {
	if ev.EmployeeID == "" {
		return &ValidationError{Reason: ReasonMissingEmployee, Detail: "employeeId is required"}
	}
	switch ev.Action {
	case ActionClockIn, ActionClockOut:
	default:
		return &ValidationError{Reason: ReasonUnknownAction, Detail: fmt.Sprintf("unrecognized action %q", ev.Action)}
	}
	if ev.Action == ActionClockIn && ev.EmployeeName == "" {
		return &ValidationError{Reason: ReasonMissingEmployee, Detail: "employeeName is required for clock-in"}
	}
	if ev.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, ev.Timestamp); err != nil {
			return &ValidationError{Reason: ReasonBadTimestamp, Detail: err.Error()}
		}
	}
	return nil
}

// At returns the transition instant: the event timestamp when present,
// otherwise fallback. Validate must have accepted the event first.
func (ev HardwareEvent) At(fallback time.Time) time.Time {
	if ev.Timestamp == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, ev.Timestamp)
	if err != nil {
		return fallback
	}
	return t
}
