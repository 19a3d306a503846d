package natsevents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ConnConfig holds connection settings.
type ConnConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	Logger        *zap.Logger
}

// Connect dials NATS with reconnect handlers that log through zap.
func Connect(cfg ConnConfig) (*nats.Conn, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("placecache"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// ErrNotConnected is returned by Pinger when the connection is not usable.
var ErrNotConnected = errors.New("nats: not connected")

// Pinger adapts a connection to the health check interface.
type Pinger struct {
	Conn *nats.Conn
}

// Ping round-trips a PING to the server.
func (p Pinger) Ping(ctx context.Context) error {
	if !p.Conn.IsConnected() {
		return ErrNotConnected
	}
	if err := p.Conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}
