package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-object-gallery/entity"
)

const (
	// ObjectEventsExchange fans object events out to every gallery instance.
	ObjectEventsExchange = "object.events"

	publishTimeout = 5 * time.Second
)

// Publisher is the part of *amqp.Channel used to publish events.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Channel can also declare the exchange events are published to.
type Channel interface {
	Publisher
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

// LocalBroadcaster delivers an event to this instance's subscribers only.
type LocalBroadcaster interface {
	Broadcast(event entity.ObjectEvent)
}

type ObjectEventService struct {
	publisher Publisher
	logger    Logger
	fallback  LocalBroadcaster
}

func InitObjectEventService(channel Channel, logger Logger) *ObjectEventService {
	err := channel.ExchangeDeclare(
		ObjectEventsExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Object events exchange: " + err.Error())
	}

	return NewObjectEventService(channel, logger)
}

func NewObjectEventService(publisher Publisher, logger Logger) *ObjectEventService {
	return &ObjectEventService{
		publisher: publisher,
		logger:    logger,
	}
}

// SetFallback makes failed publishes reach local subscribers directly.
// Call it before the first Broadcast.
func (s *ObjectEventService) SetFallback(local LocalBroadcaster) {
	s.fallback = local
}

// Broadcast publishes the event in the background and never blocks the caller.
func (s *ObjectEventService) Broadcast(event entity.ObjectEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorWithContextf(context.Background(), err, "[Object Event Produce] Failed to encode %s event: %v", event.Type, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		err := s.publisher.PublishWithContext(
			ctx,
			ObjectEventsExchange,
			"",
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp.Transient,
				Timestamp:    time.Now(),
				Type:         string(event.Type),
			},
		)
		if err != nil {
			s.logger.ErrorWithContextf(ctx, err, "[Object Event Produce] Failed to publish %s for %s: %v", event.Type, event.ObjectID, err)
			if s.fallback != nil {
				s.fallback.Broadcast(event)
			}
		}
	}()
}
