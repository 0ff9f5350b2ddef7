// internal/adapters/queue/nats.go
package queue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

// NATSConfig holds broker connection settings
type NATSConfig struct {
	URL           string
	ClientName    string
	MaxReconnects int
	ReconnectWait time.Duration
}

// NewNATSPublisher dials core NATS (JetStream disabled) and wires the
// connection callbacks into state.
func NewNATSPublisher(cfg NATSConfig, state *ConnectionState, logger *slog.Logger) (message.Publisher, error) {
	logger = logger.With(slog.String("component", "nats"))

	natsOpts := []natsgo.Option{
		natsgo.Name(cfg.ClientName),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ConnectHandler(func(nc *natsgo.Conn) {
			state.MarkReady()
			logger.Info("NATS connected", slog.String("url", nc.ConnectedUrl()))
		}),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			state.MarkDown()
			if err != nil {
				logger.Error("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			state.MarkReady()
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		natsgo.ClosedHandler(func(nc *natsgo.Conn) {
			state.MarkDown()
			logger.Warn("NATS connection closed")
		}),
	}

	conn, err := natsgo.Connect(cfg.URL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	// with RetryOnFailedConnect the first dial may still be pending
	if conn.IsConnected() {
		state.MarkReady()
	}

	pub, err := wmNats.NewPublisherWithNatsConn(conn, wmNats.PublisherPublishConfig{
		Marshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled: true,
		},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	return pub, nil
}
