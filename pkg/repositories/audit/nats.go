package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "tuco.blackjack.settlements"

// publisher is the part of *nats.Conn the sink needs
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes every settlement as JSON on a subject
type NATSPublisher struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	logger  *logging.Logger
}

// NewNATSPublisher connects to the server at url
func NewNATSPublisher(url, subject string, logger *logging.Logger) (*NATSPublisher, error) {
	logger = logging.OrDefault(logger).WithComponent("audit_nats")

	nc, err := nats.Connect(url,
		nats.Name("tucobot"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS: %w", err)
	}

	p := newNATSPublisher(nc, subject, logger)
	p.conn = nc
	return p, nil
}

func newNATSPublisher(pub publisher, subject string, logger *logging.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{
		pub:     pub,
		subject: subject,
		logger:  logging.OrDefault(logger),
	}
}

// Record implements Sink
func (p *NATSPublisher) Record(_ context.Context, event *entities.SettlementEvent) error {
	if err := validate(event); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling settlement: %w", err)
	}

	if err := p.pub.Publish(p.subject, data); err != nil {
		return fmt.Errorf("error publishing settlement: %w", err)
	}
	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
