package events

import (
	"context"
	"fmt"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/config"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
)

// Event types published on the order stream
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message body sent to the bus
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        uint               `json:"order_id"`
	UserID         uint               `json:"user_id"`
	RestaurantID   uint               `json:"restaurant_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalPrice     decimal.Decimal    `json:"total_price"`
	ChangedBy      uint               `json:"changed_by,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// NewOrderCreated builds the event for a freshly committed order
func NewOrderCreated(order *models.Order) OrderEvent {
	return OrderEvent{
		Type:         TypeOrderCreated,
		OrderID:      order.ID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		TotalPrice:   order.TotalPrice,
		OccurredAt:   time.Now().UTC(),
	}
}

// NewOrderStatusChanged builds the event for a status update
func NewOrderStatusChanged(order *models.Order, previous models.OrderStatus, changedBy uint) OrderEvent {
	return OrderEvent{
		Type:           TypeOrderStatusChanged,
		OrderID:        order.ID,
		UserID:         order.UserID,
		RestaurantID:   order.RestaurantID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalPrice:     order.TotalPrice,
		ChangedBy:      changedBy,
		OccurredAt:     time.Now().UTC(),
	}
}

// Publisher sends order events to a message bus
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher drops every event. Used when EVENT_BUS=none.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event OrderEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// NewPublisher returns the publisher selected by cfg.EventBus
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventBus {
	case "", config.EventBusNone:
		return NopPublisher{}, nil
	case config.EventBusKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventBusRabbitMQ:
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	default:
		return nil, fmt.Errorf("unsupported event bus: %s", cfg.EventBus)
	}
}
