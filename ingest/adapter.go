package ingest

import (
	"errors"
	"log/slog"
	"time"

	"github.com/shiftworks/timeclock/clock"
	"github.com/shiftworks/timeclock/devices"
	"github.com/shiftworks/timeclock/timelog"
)

// Adapter funnels both ingestion paths into the clock engine: direct
// calls carrying an authenticated identity, and hardware events that
// must be validated at the boundary first.
type Adapter struct {
	engine   *clock.Engine
	registry *devices.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdapter creates an adapter. The registry may be nil when no
// hardware path is configured.
func NewAdapter(engine *clock.Engine, registry *devices.Registry, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		engine:   engine,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// ClockIn handles a direct clock-in from the UI layer.
func (a *Adapter) ClockIn(employeeID, employeeName string) (timelog.Entry, error) {
	return a.engine.ClockIn(employeeID, employeeName, "")
}

// ClockOut handles a direct clock-out from the UI layer.
func (a *Adapter) ClockOut(employeeID string) (timelog.Entry, error) {
	return a.engine.ClockOut(employeeID)
}

// HandleHardware validates and applies one hardware event. Malformed
// events are dropped with a ValidationError; guard rejections from the
// engine (double clock-in, nothing to close) pass through unchanged so
// transports can report them without treating them as failures.
// Repeated identical events are deliberately not deduplicated; replays
// land on the engine's guards.
func (a *Adapter) HandleHardware(ev HardwareEvent) (timelog.Entry, error) {
	if err := ev.Validate(); err != nil {
		a.drop(ev, err)
		return timelog.Entry{}, err
	}

	if a.registry != nil && ev.DeviceID != "" && !a.registry.Allowed(ev.DeviceID) {
		err := &ValidationError{Reason: ReasonDeviceNotAllowed, Detail: "device " + ev.DeviceID + " not in allowlist"}
		a.drop(ev, err)
		return timelog.Entry{}, err
	}

	at := ev.At(a.now())
	if a.registry != nil {
		a.registry.Touch(ev.DeviceID, at)
	}

	var (
		entry timelog.Entry
		err   error
	)
	switch ev.Action {
	case ActionClockIn:
		entry, err = a.engine.ClockInAt(ev.EmployeeID, ev.EmployeeName, ev.DeviceID, at)
	case ActionClockOut:
		entry, err = a.engine.ClockOutAt(ev.EmployeeID, at)
	}

	switch {
	case err == nil:
		hardwareEventsTotal.WithLabelValues("applied").Inc()
	case errors.Is(err, clock.ErrAlreadyClockedIn),
		errors.Is(err, clock.ErrNoOpenSession),
		errors.Is(err, clock.ErrOutOfOrder):
		hardwareEventsTotal.WithLabelValues("rejected").Inc()
		a.logger.Info("Hardware event rejected by clock guard",
			"employee_id", ev.EmployeeID,
			"action", ev.Action,
			"device_id", ev.DeviceID,
			"reason", err)
	default:
		hardwareEventsTotal.WithLabelValues("error").Inc()
		a.logger.Error("Hardware event failed",
			"employee_id", ev.EmployeeID,
			"action", ev.Action,
			"error", err)
	}
	return entry, err
}

// drop logs and counts a malformed event. Never fatal.
func (a *Adapter) drop(ev HardwareEvent, err error) {
	hardwareEventsTotal.WithLabelValues("dropped").Inc()

	reason := ReasonMalformedPayload
	var verr *ValidationError
	if errors.As(err, &verr) {
		reason = verr.Reason
	}
	droppedEventsTotal.WithLabelValues(reason).Inc()

	a.logger.Warn("Dropped malformed hardware event",
		"device_id", ev.DeviceID,
		"employee_id", ev.EmployeeID,
		"action", ev.Action,
		"reason", reason,
		"error", err)
}
