package activity

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/shiftworks/timeclock/clock"
)

// Publisher publishes transition notifications to NATS subjects of the
// form <prefix>.activity.<kind>. Publishing is best-effort: failures
// are logged and dropped, never retried.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewPublisher creates a NATS activity publisher.
func NewPublisher(conn *nats.Conn, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		logger: logger,
	}
}

// Notify publishes the notification as JSON.
func (p *Publisher) Notify(n clock.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		p.logger.Warn("Failed to marshal activity notification", "error", err)
		return
	}

	subject := p.prefix + ".activity." + string(n.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("Failed to publish activity notification",
			"subject", subject,
			"error", err)
	}
}
