package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
)

// Publisher announces created orders on the order-created topic for the
// fulfillment and email collaborators. Publishing is best-effort: the caller
// logs failures and never fails the checkout over them.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-created",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) OrderCreated(ctx context.Context, o *order.Order) error {
	payload := map[string]interface{}{
		"order_id":               o.ID,
		"owner_id":               o.OwnerID,
		"payment_transaction_id": o.PaymentTransactionID,
		"payment_mode":           o.PaymentMode,
		"items":                  o.Items,
		"pricing":                o.Pricing,
		"created_at":             o.CreatedAt,
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.OwnerID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
