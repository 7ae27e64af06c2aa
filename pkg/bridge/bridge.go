// Package bridge adapts external NATS subjects as graph entry and
// terminal units. A SubjectSource pulls one JSON message per produce
// call and exposes its fields as output ports; a SubjectSink publishes
// the values it consumes as a JSON object.
//
// The graph itself stays in-process: bridge units are ordinary wrapped
// units handed to flow.NewSource and flow.NewSink, and the connection
// is established by the caller before the unit is constructed.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/flow"
)

// SubjectSource is a flow.Producer that pulls one JSON message from a
// subject per Produce call. The message must be a JSON object carrying
// a field for every declared output port.
type SubjectSource struct {
	subject  string
	provides []string
	sub      *nats.Subscription
	logger   *zap.Logger
}

// NewSubjectSource subscribes to subject on an established connection.
// The connection must already be connected before the unit is created.
func NewSubjectSource(conn *nats.Conn, subject string, provides []string, logger *zap.Logger) (*SubjectSource, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if subject == "" {
		return nil, errors.New("subject cannot be empty")
	}
	if len(provides) == 0 {
		return nil, errors.New("at least one output port is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sub, err := conn.SubscribeSync(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %q: %w", subject, err)
	}

	return &SubjectSource{
		subject:  subject,
		provides: provides,
		sub:      sub,
		logger:   logger,
	}, nil
}

// Provides returns the declared output port names.
func (s *SubjectSource) Provides() []string { return s.provides }

// Produce blocks for the next message on the subject and decodes it
// into named output values. The call respects ctx cancellation.
func (s *SubjectSource) Produce(ctx context.Context) (flow.Values, error) {
	msg, err := s.sub.NextMsgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to receive message on %q: %w", s.subject, err)
	}
	out, err := decodePayload(msg.Data, s.provides)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("message received",
		zap.String("subject", s.subject),
		zap.Int("bytes", len(msg.Data)))
	return out, nil
}

// Close cancels the subscription.
func (s *SubjectSource) Close() error {
	return s.sub.Unsubscribe()
}

// SubjectSink is a flow.Sink that publishes the values it consumes as a
// JSON object on a subject.
type SubjectSink struct {
	conn     *nats.Conn
	subject  string
	requires []string
	logger   *zap.Logger
}

// NewSubjectSink creates a sink publishing to subject on an established
// connection.
func NewSubjectSink(conn *nats.Conn, subject string, requires []string, logger *zap.Logger) (*SubjectSink, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if subject == "" {
		return nil, errors.New("subject cannot be empty")
	}
	if len(requires) == 0 {
		return nil, errors.New("at least one input port is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SubjectSink{
		conn:     conn,
		subject:  subject,
		requires: requires,
		logger:   logger,
	}, nil
}

// Requires returns the declared input port names.
func (s *SubjectSink) Requires() []string { return s.requires }

// Consume publishes the inputs as a JSON object.
func (s *SubjectSink) Consume(ctx context.Context, in flow.Values) error {
	data, err := encodePayload(in)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", s.subject, err)
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush publish to %q: %w", s.subject, err)
	}
	s.logger.Debug("message published",
		zap.String("subject", s.subject),
		zap.Int("bytes", len(data)))
	return nil
}

// decodePayload unmarshals a JSON object and extracts the declared
// ports from it.
func decodePayload(data []byte, ports []string) (flow.Values, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid message payload: %w", err)
	}
	out := make(flow.Values, len(ports))
	for _, port := range ports {
		v, ok := payload[port]
		if !ok {
			return nil, fmt.Errorf("message missing field %q", port)
		}
		out[port] = v
	}
	return out, nil
}

// encodePayload marshals values as a JSON object.
func encodePayload(in flow.Values) ([]byte, error) {
	data, err := json.Marshal(map[string]any(in))
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// Ensure the bridge units satisfy the flow capability interfaces.
var (
	_ flow.Producer = (*SubjectSource)(nil)
	_ flow.Sink     = (*SubjectSink)(nil)
)
