package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"staybook/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

// fakeChannel records declarations and publishes instead of talking to a broker.
type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []publishedMessage
	closed     bool
	publishErr error
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declared = append(c.declared, name+"/"+kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type fakeConnection struct {
	channel *fakeChannel
	closed  bool
}

func (c *fakeConnection) Channel() (amqpChannel, error) { return c.channel, nil }
func (c *fakeConnection) IsClosed() bool                { return c.closed }
func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

// fakeBroker hands out a fresh connection on every dial.
type fakeBroker struct {
	conns   []*fakeConnection
	dialErr error
}

func (b *fakeBroker) dial(string) (amqpConnection, error) {
	if b.dialErr != nil {
		return nil, b.dialErr
	}
	conn := &fakeConnection{channel: &fakeChannel{}}
	b.conns = append(b.conns, conn)
	return conn, nil
}

func (b *fakeBroker) last() *fakeConnection {
	return b.conns[len(b.conns)-1]
}

func testEvent(eventType models.ReservationEventType) models.ReservationEvent {
	r := models.Reservation{
		ID:              "res-1",
		AccommodationID: "acc-x",
		GuestID:         "guest-1",
		CheckInDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TotalPrice:      50000,
		Status:          models.ReservationPending,
	}
	return models.NewReservationEvent(eventType, r, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestAMQPPublisherDeclaresTopicExchange(t *testing.T) {
	broker := &fakeBroker{}
	_, err := newAMQPPublisher("amqp://test", "reservations", zap.NewNop(), broker.dial)
	require.NoError(t, err)

	require.Len(t, broker.conns, 1)
	assert.Equal(t, []string{"reservations/topic"}, broker.last().channel.declared)
}

func TestAMQPPublisherPublishesJSONByEventType(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", "reservations", zap.NewNop(), broker.dial)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), testEvent(models.EventReservationCreated)))

	published := broker.last().channel.published
	require.Len(t, published, 1)
	assert.Equal(t, "reservations", published[0].exchange)
	assert.Equal(t, "reservation.created", published[0].key)
	assert.Equal(t, "application/json", published[0].msg.ContentType)
	assert.Equal(t, amqp.Persistent, published[0].msg.DeliveryMode)
	assert.Equal(t, "res-1:reservation.created", published[0].msg.MessageId)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(published[0].msg.Body, &body))
	assert.Equal(t, "reservation.created", body["type"])
	assert.Equal(t, "res-1", body["reservationId"])
	assert.Equal(t, "2024-01-10", body["checkInDate"])
	assert.Equal(t, float64(50000), body["totalPrice"])
}

func TestAMQPPublisherReconnectsAfterChannelClosed(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", "reservations", zap.NewNop(), broker.dial)
	require.NoError(t, err)

	first := broker.last()
	first.channel.closed = true

	require.NoError(t, p.Publish(context.Background(), testEvent(models.EventReservationConfirmed)))

	require.Len(t, broker.conns, 2)
	assert.True(t, first.closed, "stale connection is closed before redialing")
	assert.Empty(t, first.channel.published)
	second := broker.last()
	assert.Equal(t, []string{"reservations/topic"}, second.channel.declared)
	require.Len(t, second.channel.published, 1)
	assert.Equal(t, "reservation.confirmed", second.channel.published[0].key)
}

func TestAMQPPublisherReportsFailures(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", "reservations", zap.NewNop(), broker.dial)
	require.NoError(t, err)

	broker.last().channel.publishErr = errors.New("channel blocked")
	err = p.Publish(context.Background(), testEvent(models.EventReservationCancelled))
	assert.ErrorContains(t, err, "channel blocked")

	// Broker gone: the reconnect fails and the error surfaces.
	broker.last().closed = true
	broker.dialErr = errors.New("connection refused")
	err = p.Publish(context.Background(), testEvent(models.EventReservationCancelled))
	assert.ErrorContains(t, err, "connection refused")

	_, err = newAMQPPublisher("amqp://test", "reservations", zap.NewNop(), broker.dial)
	assert.Error(t, err)
}

func TestAMQPPublisherClose(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", "reservations", zap.NewNop(), broker.dial)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, broker.last().channel.closed)
	assert.True(t, broker.last().closed)
}
