package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/infra"
	"github.com/tnqbao/gau-object-gallery/infra/produce"
)

type fakeChannel struct {
	deliveries chan amqp.Delivery
	bindErr    error
	boundTo    string
	autoAck    bool
	exchange   string
}

func (f *fakeChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchange = name
	return nil
}

func (f *fakeChannel) QueueDeclare(string, bool, bool, bool, bool, amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: "amq.gen-test"}, nil
}

func (f *fakeChannel) QueueBind(_, _, exchange string, _ bool, _ amqp.Table) error {
	f.boundTo = exchange
	return f.bindErr
}

func (f *fakeChannel) Consume(_, _ string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	f.autoAck = autoAck
	return f.deliveries, nil
}

type fakeHub struct {
	mu     sync.Mutex
	events []entity.ObjectEvent
	got    chan struct{}
}

func (h *fakeHub) Broadcast(event entity.ObjectEvent) {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	h.got <- struct{}{}
}

func openerFor(channel *fakeChannel) ChannelOpener {
	return func() (Channel, error) { return channel, nil }
}

func waitRelayed(t *testing.T, hub *fakeHub) {
	t.Helper()
	select {
	case <-hub.got:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not relayed")
	}
}

func TestObjectEventConsumerRelaysEvents(t *testing.T) {
	channel := &fakeChannel{deliveries: make(chan amqp.Delivery, 2)}
	hub := &fakeHub{got: make(chan struct{}, 2)}
	consumer := NewObjectEventConsumer(openerFor(channel), hub, infra.NewLoggerClient(nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if channel.exchange != produce.ObjectEventsExchange || channel.boundTo != produce.ObjectEventsExchange || !channel.autoAck {
		t.Fatalf("unexpected binding: exchange=%q autoAck=%v", channel.boundTo, channel.autoAck)
	}

	channel.deliveries <- amqp.Delivery{Body: []byte(`not json`)}
	channel.deliveries <- amqp.Delivery{Body: []byte(`{"event":"delete_object","data":"abc"}`)}

	waitRelayed(t, hub)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.events) != 1 {
		t.Fatalf("expected exactly one relayed event, got %d", len(hub.events))
	}
	if hub.events[0].Type != entity.EventDeleteObject || hub.events[0].ObjectID != "abc" {
		t.Fatalf("unexpected event: %+v", hub.events[0])
	}
}

func TestObjectEventConsumerStartFailsOnBindError(t *testing.T) {
	channel := &fakeChannel{deliveries: make(chan amqp.Delivery), bindErr: errors.New("no exchange")}
	consumer := NewObjectEventConsumer(openerFor(channel), &fakeHub{}, infra.NewLoggerClient(nil))

	if err := consumer.Start(context.Background()); err == nil {
		t.Fatal("expected bind error")
	}
}

func TestObjectEventConsumerResubscribesAfterChannelClose(t *testing.T) {
	first := &fakeChannel{deliveries: make(chan amqp.Delivery, 1)}
	second := &fakeChannel{deliveries: make(chan amqp.Delivery, 1)}

	var (
		mu    sync.Mutex
		opens int
	)
	open := func() (Channel, error) {
		mu.Lock()
		defer mu.Unlock()
		opens++
		switch opens {
		case 1:
			return first, nil
		case 2:
			return nil, errors.New("connection refused")
		default:
			return second, nil
		}
	}

	hub := &fakeHub{got: make(chan struct{}, 2)}
	consumer := NewObjectEventConsumer(open, hub, infra.NewLoggerClient(nil))
	consumer.resubscribeInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	first.deliveries <- amqp.Delivery{Body: []byte(`{"event":"delete_object","data":"before"}`)}
	waitRelayed(t, hub)

	// broker restart: deliveries close and the first reconnect attempt fails
	close(first.deliveries)
	second.deliveries <- amqp.Delivery{Body: []byte(`{"event":"delete_object","data":"after"}`)}
	waitRelayed(t, hub)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.events) != 2 || hub.events[1].ObjectID != "after" {
		t.Fatalf("unexpected relayed events: %+v", hub.events)
	}
	if second.boundTo != produce.ObjectEventsExchange {
		t.Fatalf("resubscribed queue bound to %q", second.boundTo)
	}

	mu.Lock()
	defer mu.Unlock()
	if opens != 3 {
		t.Fatalf("opens = %d, want 3", opens)
	}
}
