// Package notify publishes order lifecycle events for the notification
// subsystem. Delivery is fire-and-forget: checkout and status transitions
// never block on the broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cuymarket-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	orderEventsTopic = "order-events"
	publishTimeout   = 3 * time.Second
)

type EventType string

const (
	EventOrderCreated       EventType = "ORDER_CREATED"
	EventOrderStatusChanged EventType = "ORDER_STATUS_CHANGED"
)

type OrderEvent struct {
	Type      EventType `json:"type"`
	OrderID   uint      `json:"order_id"`
	NewStatus string    `json:"new_status,omitempty"`
}

type Notifier interface {
	OrderCreated(ctx context.Context, orderID uint)
	OrderStatusChanged(ctx context.Context, orderID uint, newStatus string)
}

// messageWriter is the slice of kafka.Writer we use; it keeps the publisher
// testable without a broker.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes order events to the order-events topic.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers []string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        orderEventsTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (n *KafkaNotifier) OrderCreated(ctx context.Context, orderID uint) {
	n.publish(ctx, OrderEvent{Type: EventOrderCreated, OrderID: orderID})
}

func (n *KafkaNotifier) OrderStatusChanged(ctx context.Context, orderID uint, newStatus string) {
	n.publish(ctx, OrderEvent{Type: EventOrderStatusChanged, OrderID: orderID, NewStatus: newStatus})
}

// publish hands the event to the broker on a detached goroutine. A failed
// publish is logged, never surfaced to the caller.
func (n *KafkaNotifier) publish(ctx context.Context, event OrderEvent) {
	log := logger.FromCtx(ctx)

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := n.send(sendCtx, event); err != nil {
			log.Warn("order event publish failed",
				zap.String("type", string(event.Type)),
				zap.Uint("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}()
}

func (n *KafkaNotifier) send(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: payload,
	})
}

func (n *KafkaNotifier) Close() error {
	if w, ok := n.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}

// Nop discards all events. Used when no brokers are configured and in tests.
type Nop struct{}

func (Nop) OrderCreated(ctx context.Context, orderID uint)                      {}
func (Nop) OrderStatusChanged(ctx context.Context, orderID uint, status string) {}
