package natsevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/kailas-cloud/placecache/internal/domain/view"
)

// publisher is the subset of *nats.Conn the sink needs (ISP).
type publisher interface {
	PublishMsg(m *nats.Msg) error
}

// Sink publishes view events as JSON messages on a single subject.
// The event id travels in the Nats-Msg-Id header so a JetStream stream bound
// to the subject can de-duplicate redeliveries.
type Sink struct {
	pub     publisher
	subject string
}

// New creates a NATS view event sink.
func New(pub publisher, subject string) *Sink {
	return &Sink{pub: pub, subject: subject}
}

// Append publishes e. The publish itself is buffered by the connection.
func (s *Sink) Append(ctx context.Context, e view.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish view %s: %w", e.ID, err)
	}
	data, err := json.Marshal(e.Fields())
	if err != nil {
		return fmt.Errorf("marshal view %s: %w", e.ID, err)
	}
	msg := nats.NewMsg(s.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, e.ID)
	if err := s.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", s.subject, err)
	}
	return nil
}
