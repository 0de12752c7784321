package service

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

// RelaySubscription is the slice of a relay subscription the supervisor
// consumes: the live event stream plus the ability to cancel it.
type RelaySubscription interface {
	Events() <-chan *nostr.Event
	Unsub()
}

// RelayConnection wraps a live relay transport.
type RelayConnection interface {
	Subscribe(ctx context.Context, filters nostr.Filters, opts ...nostr.SubscriptionOption) (RelaySubscription, error)
	Close() error
}

// DialFunc opens a connection to one relay endpoint. The default dials
// over go-nostr websockets; tests inject their own.
type DialFunc func(ctx context.Context, uri string) (RelayConnection, error)

// EventPublisher fans accepted events out to an external broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *nostr.Event, folder string) error
	Close() error
}

// IncomingEvent is one raw event received from a relay subscription,
// before validation.
type IncomingEvent struct {
	Event    *nostr.Event
	RelayUri string
}

type ChestService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	EventPublisher EventPublisher

	dial         DialFunc
	events       chan IncomingEvent
	trackedKinds map[int]struct{}
	relays       []*RelayUnit
	counters     ingestionCounters
	health       healthState
}

// New wires a ChestService around an open DB. The dialer defaults to
// go-nostr websocket connections; pass WithDialer to override.
func New(cfg *Config, db *bun.DB, logger *lecho.Logger, opts ...Option) *ChestService {
	svc := &ChestService{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		dial:         DialRelay,
		events:       make(chan IncomingEvent, cfg.IngestionBuffer),
		trackedKinds: make(map[int]struct{}, len(cfg.EventKinds)),
	}
	for _, kind := range cfg.EventKinds {
		svc.trackedKinds[kind] = struct{}{}
	}
	for _, uri := range cfg.RelayUris {
		svc.relays = append(svc.relays, newRelayUnit(uri))
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type Option = func(svc *ChestService)

func WithDialer(dial DialFunc) Option {
	return func(svc *ChestService) {
		svc.dial = dial
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(svc *ChestService) {
		svc.EventPublisher = publisher
	}
}

func (svc *ChestService) kindTracked(kind int) bool {
	_, ok := svc.trackedKinds[kind]
	return ok
}
