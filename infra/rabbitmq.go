package infra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-object-gallery/config"
)

// RabbitMQClient holds one connection and one shared channel. Both are
// reopened on demand after the broker drops them.
type RabbitMQClient struct {
	url        string
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
}

func InitRabbitMQClient(cfg *config.EnvConfig) *RabbitMQClient {
	client := &RabbitMQClient{
		url: fmt.Sprintf("amqp://%s:%s@%s:%s/",
			cfg.RabbitMQ.Username,
			cfg.RabbitMQ.Password,
			cfg.RabbitMQ.Host,
			cfg.RabbitMQ.Port,
		),
	}

	if _, err := client.Channel(); err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	log.Println("Connected to RabbitMQ:", cfg.RabbitMQ.Host+":"+cfg.RabbitMQ.Port)
	return client
}

// Channel returns the shared channel, redialing and reopening it if closed.
func (r *RabbitMQClient) Channel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil && !r.channel.IsClosed() {
		return r.channel, nil
	}

	if r.connection == nil || r.connection.IsClosed() {
		conn, err := amqp.Dial(r.url)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		r.connection = conn
	}

	ch, err := r.connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	r.channel = ch
	return ch, nil
}

func (r *RabbitMQClient) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	ch, err := r.Channel()
	if err != nil {
		return err
	}
	return ch.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

func (r *RabbitMQClient) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	ch, err := r.Channel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Ping reports whether both the connection and the channel are open.
// It does not reopen anything.
func (r *RabbitMQClient) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connection == nil || r.connection.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	if r.channel == nil || r.channel.IsClosed() {
		return errors.New("rabbitmq channel closed")
	}
	return nil
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.channel != nil && !r.channel.IsClosed() {
		errs = append(errs, r.channel.Close())
	}
	if r.connection != nil && !r.connection.IsClosed() {
		errs = append(errs, r.connection.Close())
	}
	return errors.Join(errs...)
}
