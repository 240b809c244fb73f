// Package kafka publishes workflow notifications to a Kafka topic for the
// notification service to render and deliver.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/ports"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// MessageWriter is the part of *kafka.Writer the dispatcher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NotificationMessage is the JSON body of a published notification.
type NotificationMessage struct {
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationDispatcher implements ports.NotificationDispatcher. Messages are keyed
// by order id so a consumer sees one order's notifications in order. The trace
// context of the caller travels in the message headers.
type NotificationDispatcher struct {
	writer     MessageWriter
	propagator propagation.TextMapPropagator
	now        func() time.Time
}

func NewNotificationDispatcher(writer MessageWriter, now func() time.Time) *NotificationDispatcher {
	return &NotificationDispatcher{
		writer:     writer,
		propagator: otel.GetTextMapPropagator(),
		now:        now,
	}
}

// NewWriter returns an asynchronous writer for topic that balances by key.
// WriteMessages only enqueues; delivery errors are reported to onFailure with the
// number of messages that were lost.
func NewWriter(brokers []string, topic string, onFailure func(lost int, err error)) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil && onFailure != nil {
				onFailure(len(messages), err)
			}
		},
	}
}

func (d *NotificationDispatcher) Dispatch(ctx context.Context, n ports.Notification) error {
	body, err := json.Marshal(NotificationMessage{
		UserID:     n.UserID.String(),
		OrderID:    n.OrderID.String(),
		Type:       string(n.Type),
		Title:      n.Title,
		Message:    n.Message,
		OccurredAt: d.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	carrier := HeaderCarrier{}
	d.propagator.Inject(ctx, &carrier)

	msg := kafka.Message{
		Key:     []byte(n.OrderID.String()),
		Value:   body,
		Headers: append(carrier, kafka.Header{Key: "notification_type", Value: []byte(n.Type)}),
	}
	if err = d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s notification for order %s: %w", n.Type, n.OrderID, err)
	}
	return nil
}

// HeaderCarrier adapts Kafka message headers to propagation.TextMapCarrier.
type HeaderCarrier []kafka.Header

func (c *HeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *HeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
