package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/nbd-wtf/go-nostr"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

const contentTypeJSON = "application/json"

// Client publishes accepted events to a topic exchange so downstream
// consumers (feeds, counters, search) can follow the archive without
// polling it.
type Client interface {
	PublishEvent(ctx context.Context, event *nostr.Event, folder string) error
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	eventExchange string
}

type ClientOption = func(client *DefaultClient)

func WithEventExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.eventExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// NewClient declares the event exchange and returns a publisher over an
// established AMQP connection.
func NewClient(amqpClient AMQPClient, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.INFO),
			lecho.WithTimestamp(),
		),

		eventExchange: "chest_event",
	}

	for _, opt := range options {
		opt(client)
	}

	err := client.amqpClient.ExchangeDeclare(
		client.eventExchange,
		// topic exchange so consumers can bind per folder (event.notes, event.#, ...)
		"topic",
		// Durable and Non-Auto-Deleted exchanges will survive server restarts and remain
		// declared when there are no remaining bindings.
		true,
		false,
		// Non-Internal exchange's accept direct publishing
		false,
		// Nowait: We set this to false as we want to wait for a server response
		// to check whether the exchange was created succesfully
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (client *DefaultClient) Close() error {
	return client.amqpClient.Close()
}

// PublishEvent sends the canonical event JSON with routing key
// "event.<folder>".
func (client *DefaultClient) PublishEvent(ctx context.Context, event *nostr.Event, folder string) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("event.%s", folder)

	err = client.amqpClient.PublishWithContext(ctx,
		client.eventExchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload,
		},
	)
	if err != nil {
		return err
	}

	client.logger.Debugf("Successfully published event %s to rabbitmq with key %s", event.ID, key)

	return nil
}
