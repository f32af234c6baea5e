package clock

import "time"

// NotificationKind tags a transition notification.
type NotificationKind string

const (
	KindClockedIn  NotificationKind = "clocked-in"
	KindClockedOut NotificationKind = "clocked-out"
)

// Notification is the informational event emitted on every successful
// transition. It is not part of the durable state.
type Notification struct {
	Kind         NotificationKind `json:"kind"`
	EmployeeID   string           `json:"employeeId"`
	EmployeeName string           `json:"employeeName"`
	Time         time.Time        `json:"time"`
	// TotalHours is set for clock-out notifications only.
	TotalHours *float64 `json:"totalHours,omitempty"`
	DeviceID   string   `json:"deviceId,omitempty"`
}

// Notifier receives transition notifications. Implementations must not
// block the engine; delivery is best-effort.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }
