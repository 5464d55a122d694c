package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/franciscosanchezn/food-ordering-api/internal/config"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msg = msg
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func testOrder() *models.Order {
	return &models.Order{
		ID:           12,
		UserID:       3,
		RestaurantID: 5,
		Status:       models.StatusPending,
		TotalPrice:   decimal.RequireFromString("18.00"),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{writer: writer}

	err := publisher.Publish(context.Background(), NewOrderCreated(testOrder()))
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, TypeOrderCreated, string(msg.Headers[0].Value))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order.created", body["type"])
	assert.Equal(t, 18.0, body["total_price"])

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	publisher := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	err := publisher.Publish(context.Background(), NewOrderCreated(testOrder()))
	assert.Error(t, err)
}

func TestRabbitMQPublisher_RoutingKey(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &RabbitMQPublisher{channel: ch, exchange: "orders_topic"}

	order := testOrder()
	order.Status = models.StatusConfirmed
	err := publisher.Publish(context.Background(), NewOrderStatusChanged(order, models.StatusPending, 1))
	require.NoError(t, err)

	assert.Equal(t, "orders_topic", ch.exchange)
	assert.Equal(t, TypeOrderStatusChanged, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var body OrderEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, models.StatusPending, body.PreviousStatus)
	assert.Equal(t, models.StatusConfirmed, body.Status)

	require.NoError(t, publisher.Close())
	assert.True(t, ch.closed)
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(&config.Config{EventBus: config.EventBusNone})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)

	p, err = NewPublisher(&config.Config{EventBus: config.EventBusKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "orders"})
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	assert.NoError(t, p.Close())

	_, err = NewPublisher(&config.Config{EventBus: "nats"})
	assert.Error(t, err)
}
