// Package events publishes order lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

// OrderPlaced is the payload emitted after a fully successful checkout.
type OrderPlaced struct {
	OrderID  string            `json:"order_id"`
	Total    string            `json:"total"`
	Lines    []OrderPlacedLine `json:"lines"`
	PlacedAt time.Time         `json:"placed_at"`
}

// OrderPlacedLine mirrors one order line on the wire.
type OrderPlacedLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Publisher emits order events. Implementations must not block checkout
// correctness; callers treat publish failures as log-and-continue.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

// KafkaPublisher writes order.placed events to a Kafka topic, keyed by order
// id so one order's events land on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	payload := OrderPlaced{
		OrderID:  order.ID,
		Total:    order.Total.String(),
		PlacedAt: order.CreatedAt,
	}
	for _, ln := range order.Lines {
		payload.Lines = append(payload.Lines, OrderPlacedLine{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice.String(),
			Quantity:  ln.Quantity,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, domain.Order) error {
	return nil
}
