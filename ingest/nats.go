package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Subscriber consumes hardware events from a NATS subject and feeds
// them through the adapter. Undecodable messages are dropped and
// counted, never allowed to crash the ingestion path.
type Subscriber struct {
	conn    *nats.Conn
	adapter *Adapter
	subject string
	logger  *slog.Logger
	sub     *nats.Subscription
}

// NewSubscriber creates a subscriber for the given subject.
func NewSubscriber(conn *nats.Conn, adapter *Adapter, subject string, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		conn:    conn,
		adapter: adapter,
		subject: subject,
		logger:  logger,
	}
}

// Start subscribes to the hardware event subject.
func (s *Subscriber) Start() error {
	sub, err := s.conn.Subscribe(s.subject, s.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.sub = sub

	s.logger.Info("Hardware event subscriber started", "subject", s.subject)
	return nil
}

// Stop drains the subscription.
func (s *Subscriber) Stop() {
	if s.sub != nil {
		_ = s.sub.Drain()
	}
}

func (s *Subscriber) handle(msg *nats.Msg) {
	var ev HardwareEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		hardwareEventsTotal.WithLabelValues("dropped").Inc()
		droppedEventsTotal.WithLabelValues(ReasonMalformedPayload).Inc()
		s.logger.Warn("Dropped undecodable hardware event",
			"subject", msg.Subject,
			"error", err)
		return
	}

	// Adapter logs and counts rejections; nothing to do here.
	_, _ = s.adapter.HandleHardware(ev)
}
