package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shiftworks/timeclock/activity"
	"github.com/shiftworks/timeclock/clock"
	"github.com/shiftworks/timeclock/devices"
	"github.com/shiftworks/timeclock/export"
	"github.com/shiftworks/timeclock/timelog"
)

// maxEventBodySize limits clock request bodies.
const maxEventBodySize = 1 << 20 // 1 MB

// HTTPHandler exposes the time-clock API: hardware event ingestion,
// direct clock calls, aggregation queries, exports, and the live
// activity stream.
type HTTPHandler struct {
	adapter  *Adapter
	store    *timelog.Store
	feed     *activity.Feed
	registry *devices.Registry
	logger   *slog.Logger
}

// NewHTTPHandler creates the API handler. feed and registry may be nil;
// the corresponding endpoints then serve empty results.
func NewHTTPHandler(adapter *Adapter, store *timelog.Store, feed *activity.Feed, registry *devices.Registry, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		adapter:  adapter,
		store:    store,
		feed:     feed,
		registry: registry,
		logger:   logger,
	}
}

// RegisterHTTPHandlers registers the API endpoints under prefix,
// typically "/api/time-clock".
func (h *HTTPHandler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimSuffix(prefix, "/")

	mux.HandleFunc("POST "+prefix+"/event", h.handleEvent)
	mux.HandleFunc("POST "+prefix+"/clock-in", h.handleClockIn)
	mux.HandleFunc("POST "+prefix+"/clock-out", h.handleClockOut)

	mux.HandleFunc("GET "+prefix+"/active", h.handleActive)
	mux.HandleFunc("GET "+prefix+"/today", h.handleToday)
	mux.HandleFunc("GET "+prefix+"/employees/{id}/entries", h.handleEmployeeEntries)
	mux.HandleFunc("GET "+prefix+"/employees/{id}/weekly-hours", h.handleWeeklyHours)

	mux.HandleFunc("GET "+prefix+"/export", h.handleExport)
	mux.HandleFunc("GET "+prefix+"/report", h.handleReport)

	mux.HandleFunc("GET "+prefix+"/activity", h.handleActivity)
	mux.HandleFunc("GET "+prefix+"/activity/stream", h.handleActivityStream)
	mux.HandleFunc("GET "+prefix+"/devices", h.handleDevices)
}

// EventResponse reports the outcome of a hardware event ingestion.
type EventResponse struct {
	Result string         `json:"result"` // applied or ignored
	Reason string         `json:"reason,omitempty"`
	Entry  *timelog.Entry `json:"entry,omitempty"`
}

// handleEvent handles POST /event: the hardware ingestion contract.
// Malformed payloads get 4xx; guard rejections are ingested fine and
// reported as ignored.
func (h *HTTPHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodySize)

	var ev HardwareEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		hardwareEventsTotal.WithLabelValues("dropped").Inc()
		droppedEventsTotal.WithLabelValues(ReasonMalformedPayload).Inc()
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.adapter.HandleHardware(ev)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		if isGuardRejection(err) {
			h.writeJSON(w, http.StatusOK, EventResponse{Result: "ignored", Reason: err.Error()})
			return
		}
		h.logger.Error("Hardware event ingestion failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "event ingestion failed")
		return
	}

	h.writeJSON(w, http.StatusOK, EventResponse{Result: "applied", Entry: &entry})
}

// ClockRequest is the body for the direct clock endpoints. Identity
// comes from the authenticated caller; it is not validated here.
type ClockRequest struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty"`
}

func (h *HTTPHandler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	var req ClockRequest
	if !h.decodeClockRequest(w, r, &req) {
		return
	}
	if req.EmployeeName == "" {
		h.writeError(w, http.StatusBadRequest, "employeeName is required")
		return
	}

	entry, err := h.adapter.ClockIn(req.EmployeeID, req.EmployeeName)
	if err != nil {
		if errors.Is(err, clock.ErrAlreadyClockedIn) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Clock-in failed", "employee_id", req.EmployeeID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "clock-in failed")
		return
	}
	h.writeJSON(w, http.StatusCreated, entry)
}

func (h *HTTPHandler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	var req ClockRequest
	if !h.decodeClockRequest(w, r, &req) {
		return
	}

	entry, err := h.adapter.ClockOut(req.EmployeeID)
	if err != nil {
		if errors.Is(err, clock.ErrNoOpenSession) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Clock-out failed", "employee_id", req.EmployeeID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "clock-out failed")
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) decodeClockRequest(w http.ResponseWriter, r *http.Request, req *ClockRequest) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodySize)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if req.EmployeeID == "" {
		h.writeError(w, http.StatusBadRequest, "employeeId is required")
		return false
	}
	return true
}

// EntriesResponse wraps a list of entries.
type EntriesResponse struct {
	Entries []timelog.Entry `json:"entries"`
	Total   int             `json:"total"`
}

func (h *HTTPHandler) handleActive(w http.ResponseWriter, r *http.Request) {
	entries := h.store.ActiveEmployees()
	h.writeJSON(w, http.StatusOK, EntriesResponse{Entries: orEmpty(entries), Total: len(entries)})
}

// TodayResponse is the daily summary used by the admin monitor.
type TodayResponse struct {
	Date        string          `json:"date"`
	Entries     []timelog.Entry `json:"entries"`
	EntryCount  int             `json:"entryCount"`
	ActiveCount int             `json:"activeCount"`
	TotalHours  float64         `json:"totalHours"`
}

func (h *HTTPHandler) handleToday(w http.ResponseWriter, r *http.Request) {
	today := timelog.DateOf(time.Now())
	entries := h.store.EntriesOn(today)

	var total float64
	for _, e := range entries {
		if e.TotalHours != nil {
			total += *e.TotalHours
		}
	}

	h.writeJSON(w, http.StatusOK, TodayResponse{
		Date:        today,
		Entries:     orEmpty(entries),
		EntryCount:  len(entries),
		ActiveCount: len(h.store.ActiveEmployeesOn(today)),
		TotalHours:  total,
	})
}

func (h *HTTPHandler) handleEmployeeEntries(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "employee ID required")
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	entries := h.store.EntriesFor(id, start, end)
	h.writeJSON(w, http.StatusOK, EntriesResponse{Entries: orEmpty(entries), Total: len(entries)})
}

// WeeklyHoursResponse reports the hours an employee has recorded this
// week. Sessions still open contribute nothing until they close.
type WeeklyHoursResponse struct {
	EmployeeID string  `json:"employeeId"`
	WeekStart  string  `json:"weekStart"`
	Hours      float64 `json:"hours"`
}

func (h *HTTPHandler) handleWeeklyHours(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "employee ID required")
		return
	}

	now := time.Now()
	h.writeJSON(w, http.StatusOK, WeeklyHoursResponse{
		EmployeeID: id,
		WeekStart:  timelog.WeekStart(now),
		Hours:      h.store.WeeklyHoursAsOf(id, now),
	})
}

// handleExport serves GET /export?start=&end=&format=csv|xlsx|ics as a
// file download. An empty range produces a header-only document, not an
// error.
func (h *HTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		h.writeError(w, http.StatusBadRequest, "start and end query parameters are required (YYYY-MM-DD)")
		return
	}

	entries := h.store.Entries()

	var (
		data     []byte
		filename string
		mime     string
		err      error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		data, err = export.CSV(entries, start, end)
		filename = export.CSVFilename(start, end)
		mime = "text/csv"
	case "xlsx":
		data, err = export.XLSX(entries, start, end)
		filename = export.XLSXFilename(start, end)
		mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "ics":
		data, err = export.ICS(entries, start, end)
		filename = export.ICSFilename(start, end)
		mime = "text/calendar"
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q (csv, xlsx, ics)", format))
		return
	}
	if err != nil {
		h.logger.Error("Export failed", "start", start, "end", end, "error", err)
		h.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *HTTPHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	print := r.URL.Query().Get("print") == "1"

	data, err := export.Report(h.store.Entries(), time.Now(), print)
	if err != nil {
		h.logger.Error("Report rendering failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "report rendering failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ActivityResponse wraps the recent activity feed, newest first.
type ActivityResponse struct {
	Activities []clock.Notification `json:"activities"`
}

func (h *HTTPHandler) handleActivity(w http.ResponseWriter, r *http.Request) {
	var recent []clock.Notification
	if h.feed != nil {
		recent = h.feed.Recent()
	}
	if recent == nil {
		recent = []clock.Notification{}
	}
	h.writeJSON(w, http.StatusOK, ActivityResponse{Activities: recent})
}

// handleActivityStream serves the live activity feed as SSE events.
func (h *HTTPHandler) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		h.writeError(w, http.StatusNotFound, "activity feed not available")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	flusher.Flush()

	ch, cancel := h.feed.Subscribe()
	defer cancel()

	if err := h.sendSSEEvent(w, flusher, "connected", map[string]string{"status": "connected"}); err != nil {
		return
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-heartbeat.C:
			if err := h.sendSSEEvent(w, flusher, "heartbeat", map[string]any{}); err != nil {
				return
			}

		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := h.sendSSEEvent(w, flusher, string(n.Kind), n); err != nil {
				h.logger.Debug("Activity stream client disconnected", "error", err)
				return
			}
		}
	}
}

// DevicesResponse wraps the device registry contents.
type DevicesResponse struct {
	Devices []devices.Device `json:"devices"`
}

func (h *HTTPHandler) handleDevices(w http.ResponseWriter, r *http.Request) {
	var list []devices.Device
	if h.registry != nil {
		list = h.registry.List()
	}
	if list == nil {
		list = []devices.Device{}
	}
	h.writeJSON(w, http.StatusOK, DevicesResponse{Devices: list})
}

// sendSSEEvent writes one SSE event. An error means the client is gone.
func (h *HTTPHandler) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		h.logger.Warn("Failed to marshal SSE data", "error", err)
		return nil
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataBytes); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	flusher.Flush()
	return nil
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("Failed to write JSON response", "error", err)
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func isGuardRejection(err error) bool {
	return errors.Is(err, clock.ErrAlreadyClockedIn) ||
		errors.Is(err, clock.ErrNoOpenSession) ||
		errors.Is(err, clock.ErrOutOfOrder)
}

func orEmpty(entries []timelog.Entry) []timelog.Entry {
	if entries == nil {
		return []timelog.Entry{}
	}
	return entries
}
