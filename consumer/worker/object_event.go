package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/infra"
	"github.com/tnqbao/gau-object-gallery/infra/produce"
)

const (
	defaultResubscribeInterval = time.Second
	maxResubscribeInterval     = 30 * time.Second
)

// Channel is the part of *amqp.Channel the consumer needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ChannelOpener returns an open channel, reconnecting when the previous one was closed.
type ChannelOpener func() (Channel, error)

type Broadcaster interface {
	Broadcast(event entity.ObjectEvent)
}

// ObjectEventConsumer relays events published by any instance to the local hub.
// When the broker closes its deliveries it subscribes again until ctx is done.
type ObjectEventConsumer struct {
	open                ChannelOpener
	hub                 Broadcaster
	logger              *infra.LoggerClient
	resubscribeInterval time.Duration
}

func NewObjectEventConsumer(open ChannelOpener, hub Broadcaster, logger *infra.LoggerClient) *ObjectEventConsumer {
	return &ObjectEventConsumer{
		open:                open,
		hub:                 hub,
		logger:              logger,
		resubscribeInterval: defaultResubscribeInterval,
	}
}

// Start subscribes once and fails fast; later losses are retried in the background.
func (c *ObjectEventConsumer) Start(ctx context.Context) error {
	msgs, err := c.subscribe(ctx)
	if err != nil {
		return err
	}

	go c.run(ctx, msgs)
	return nil
}

func (c *ObjectEventConsumer) subscribe(ctx context.Context) (<-chan amqp.Delivery, error) {
	channel, err := c.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		produce.ObjectEventsExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare object events exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		"",
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare object events queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, "", produce.ObjectEventsExchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind object events queue: %w", err)
	}

	msgs, err := channel.Consume(
		queue.Name,
		"",
		true, // auto-ack
		true, // exclusive
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register object events consumer: %w", err)
	}

	c.logger.InfoWithContextf(ctx, "[Object Event Consumer] Started listening on queue: %s", queue.Name)
	return msgs, nil
}

func (c *ObjectEventConsumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoWithContextf(ctx, "[Object Event Consumer] Shutting down...")
			return
		case msg, ok := <-msgs:
			if ok {
				c.handle(ctx, msg)
				continue
			}

			c.logger.WarningWithContextf(ctx, "[Object Event Consumer] Channel closed, resubscribing")
			next, err := c.resubscribe(ctx)
			if err != nil {
				c.logger.InfoWithContextf(ctx, "[Object Event Consumer] Stopped resubscribing: %v", err)
				return
			}
			msgs = next
		}
	}
}

// resubscribe retries with exponential backoff until it succeeds or ctx is done.
func (c *ObjectEventConsumer) resubscribe(ctx context.Context) (<-chan amqp.Delivery, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.resubscribeInterval
	policy.MaxInterval = maxResubscribeInterval

	return backoff.Retry(ctx, func() (<-chan amqp.Delivery, error) {
		msgs, err := c.subscribe(ctx)
		if err != nil {
			c.logger.WarningWithContextf(ctx, "[Object Event Consumer] Resubscribe failed: %v", err)
			return nil, err
		}
		return msgs, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxElapsedTime(0))
}

func (c *ObjectEventConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var event entity.ObjectEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Object Event Consumer] Dropping malformed message: %v", err)
		return
	}

	c.logger.DebugWithContextf(ctx, "[Object Event Consumer] Relaying %s for %s", event.Type, event.ObjectID)
	c.hub.Broadcast(event)
}
