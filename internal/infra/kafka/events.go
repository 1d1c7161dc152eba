package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/obs"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderPlaced = "OrderPlaced"
	producerName     = "storefront-api"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Price     string `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID     int64             `json:"order_id"`
	UserID      int64             `json:"user_id"`
	TotalAmount string            `json:"total_amount"`
	Status      string            `json:"status"`
	Items       []OrderPlacedItem `json:"items"`
}

// OrderPublisher は注文確定イベントを送る。キーはorder_id（同じ注文の順序を保つ）。
type OrderPublisher struct {
	p *Producer
}

func NewOrderPublisher(p *Producer) *OrderPublisher {
	return &OrderPublisher{p: p}
}

func (pub *OrderPublisher) PublishOrderPlaced(ctx context.Context, o model.Order) error {
	b, err := encodeOrderPlaced(o, obs.RequestID(ctx), time.Now().UTC())
	if err != nil {
		return err
	}
	return pub.p.Publish(ctx, []byte(strconv.FormatInt(o.ID, 10)), b,
		kafka.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func encodeOrderPlaced(o model.Order, traceID string, at time.Time) ([]byte, error) {
	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderPlacedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
		})
	}
	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Status:      string(o.Status),
		Items:       items,
	})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	return json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    at,
		Producer:      producerName,
		TraceID:       traceID,
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload:       payload,
	})
}
