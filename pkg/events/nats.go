package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Envelope wraps every published event.
type Envelope struct {
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NATSPublisher publishes domain events under a subject prefix.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

// Connect dials NATS with reconnect handling suited to a long-running API.
func Connect(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	log := logger.With().Str("component", "nats").Logger()
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

// NewNATSPublisher builds a publisher. A nil conn yields a publisher that drops events.
func NewNATSPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		prefix: strings.Trim(prefix, "."),
		logger: logger.With().Str("component", "event_publisher").Logger(),
		now:    time.Now,
	}
}

// Subject resolves the full subject for a relative event name.
func (p *NATSPublisher) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish encodes payload in an Envelope and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := p.encode(subject, payload)
	if err != nil {
		return err
	}

	if p.conn == nil {
		p.logger.Debug().Str("subject", p.Subject(subject)).Msg("event dropped, nats not configured")
		return nil
	}

	if err := p.conn.Publish(p.Subject(subject), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) encode(subject string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}

	data, err := json.Marshal(Envelope{
		Subject:    p.Subject(subject),
		OccurredAt: p.now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}
