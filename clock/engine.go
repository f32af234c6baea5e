// Package clock enforces the per-employee clock-in/clock-out state
// machine over the time-entry log.
package clock

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiftworks/timeclock/timelog"
)

var (
	// ErrAlreadyClockedIn rejects a clock-in for an employee who
	// already has an open session. This keeps the at-most-one-open-
	// session invariant without silently discarding the prior entry.
	ErrAlreadyClockedIn = errors.New("employee already has an open session")

	// ErrNoOpenSession signals a clock-out with nothing to close.
	// Callers treat it as a no-op; the store is left unchanged.
	ErrNoOpenSession = errors.New("no open session for employee")

	// ErrOutOfOrder rejects a clock-out instant that is not strictly
	// after the session's clock-in.
	ErrOutOfOrder = errors.New("clock-out not after clock-in")
)

// Engine applies clock transitions to the store. Transitions are
// serialized behind a mutex so the open-session check and the mutation
// are atomic with respect to concurrent producers (HTTP handlers and
// the hardware event subscriber).
type Engine struct {
	mu       sync.Mutex
	store    *timelog.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the activity notifier for transition events.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over store.
func New(store *timelog.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClockIn opens a session for the employee at the current time.
func (e *Engine) ClockIn(employeeID, employeeName, deviceID string) (timelog.Entry, error) {
	return e.ClockInAt(employeeID, employeeName, deviceID, e.now())
}

// ClockInAt opens a session at the given instant. An employee with an
// open session is rejected with ErrAlreadyClockedIn.
func (e *Engine) ClockInAt(employeeID, employeeName, deviceID string, at time.Time) (timelog.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store.HasOpen(employeeID) {
		transitionsTotal.WithLabelValues("clock-in", "rejected").Inc()
		return timelog.Entry{}, ErrAlreadyClockedIn
	}

	entry := timelog.Entry{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		ClockIn:      at,
		Date:         timelog.DateOf(at),
		Status:       timelog.StatusClockedIn,
		DeviceID:     deviceID,
		Location:     timelog.LocationFor(deviceID),
	}

	if err := e.store.Append(entry); err != nil {
		// The entry is in memory; only the snapshot write failed.
		e.logger.Warn("Snapshot persist failed after clock-in",
			"employee_id", employeeID,
			"error", err)
	}

	transitionsTotal.WithLabelValues("clock-in", "applied").Inc()
	e.notify(Notification{
		Kind:         KindClockedIn,
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Time:         at,
		DeviceID:     deviceID,
	})

	e.logger.Info("Employee clocked in",
		"employee_id", employeeID,
		"employee_name", employeeName,
		"device_id", deviceID,
		"entry_id", entry.ID)
	return entry, nil
}

// ClockOut closes the employee's open session at the current time.
func (e *Engine) ClockOut(employeeID string) (timelog.Entry, error) {
	return e.ClockOutAt(employeeID, e.now())
}

// ClockOutAt closes the open session at the given instant, recording
// the elapsed hours rounded to two decimals. With no open session the
// store is untouched and ErrNoOpenSession is returned.
func (e *Engine) ClockOutAt(employeeID string, at time.Time) (timelog.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Peek before mutating so an out-of-order instant never reaches
	// the store.
	open, ok := e.findOpen(employeeID)
	if !ok {
		transitionsTotal.WithLabelValues("clock-out", "noop").Inc()
		return timelog.Entry{}, ErrNoOpenSession
	}
	if !at.After(open.ClockIn) {
		transitionsTotal.WithLabelValues("clock-out", "rejected").Inc()
		return timelog.Entry{}, ErrOutOfOrder
	}

	hours := round2(at.Sub(open.ClockIn).Hours())
	out := at

	updated, found, err := e.store.UpdateFirst(
		func(en *timelog.Entry) bool {
			return en.EmployeeID == employeeID && en.Open()
		},
		func(en *timelog.Entry) {
			en.ClockOut = &out
			en.TotalHours = &hours
			en.Status = timelog.StatusClockedOut
		},
	)
	if !found {
		transitionsTotal.WithLabelValues("clock-out", "noop").Inc()
		return timelog.Entry{}, ErrNoOpenSession
	}
	if err != nil {
		e.logger.Warn("Snapshot persist failed after clock-out",
			"employee_id", employeeID,
			"error", err)
	}

	transitionsTotal.WithLabelValues("clock-out", "applied").Inc()
	e.notify(Notification{
		Kind:         KindClockedOut,
		EmployeeID:   employeeID,
		EmployeeName: updated.EmployeeName,
		Time:         at,
		TotalHours:   &hours,
		DeviceID:     updated.DeviceID,
	})

	e.logger.Info("Employee clocked out",
		"employee_id", employeeID,
		"employee_name", updated.EmployeeName,
		"total_hours", hours,
		"entry_id", updated.ID)
	return updated, nil
}

// findOpen returns the employee's open entry, if any.
func (e *Engine) findOpen(employeeID string) (timelog.Entry, bool) {
	for _, en := range e.store.Entries() {
		if en.EmployeeID == employeeID && en.Open() {
			return en, true
		}
	}
	return timelog.Entry{}, false
}

// notify delivers a transition notification best-effort. Delivery is
// fire-and-forget: no retry, nothing persisted for absent subscribers.
func (e *Engine) notify(n Notification) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(n)
}

func round2(h float64) float64 {
	return math.Round(h*100) / 100
}
