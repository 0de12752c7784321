package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
)

// RelayState : connection state of one supervised relay unit.
type RelayState int32

const (
	RelayDisconnected RelayState = iota
	RelayConnecting
	RelaySubscribed
)

func (s RelayState) String() string {
	switch s {
	case RelayConnecting:
		return "connecting"
	case RelaySubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// RelayUnit supervises a single relay endpoint. Units are independent;
// a failing relay never affects another unit or the process.
type RelayUnit struct {
	Uri string

	state     atomic.Int32
	forwarded atomic.Int64

	mu      sync.Mutex
	lastErr error
}

func newRelayUnit(uri string) *RelayUnit {
	return &RelayUnit{Uri: uri}
}

func (u *RelayUnit) State() RelayState {
	return RelayState(u.state.Load())
}

func (u *RelayUnit) Forwarded() int64 {
	return u.forwarded.Load()
}

func (u *RelayUnit) LastError() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}

func (u *RelayUnit) setState(s RelayState) {
	u.state.Store(int32(s))
}

func (u *RelayUnit) setError(err error) {
	u.mu.Lock()
	u.lastErr = err
	u.mu.Unlock()
}

// DialRelay is the default DialFunc, connecting over go-nostr websockets.
func DialRelay(ctx context.Context, uri string) (RelayConnection, error) {
	relay, err := nostr.RelayConnect(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &nostrRelayConnection{relay: relay}, nil
}

type nostrRelayConnection struct {
	relay *nostr.Relay
}

func (c *nostrRelayConnection) Subscribe(ctx context.Context, filters nostr.Filters, opts ...nostr.SubscriptionOption) (RelaySubscription, error) {
	sub, err := c.relay.Subscribe(ctx, filters, opts...)
	if err != nil {
		return nil, err
	}
	return &nostrRelaySubscription{sub: sub}, nil
}

func (c *nostrRelayConnection) Close() error {
	return c.relay.Close()
}

type nostrRelaySubscription struct {
	sub *nostr.Subscription
}

func (s *nostrRelaySubscription) Events() <-chan *nostr.Event {
	return s.sub.Events
}

func (s *nostrRelaySubscription) Unsub() {
	s.sub.Unsub()
}

// StartRelaySupervisors launches one supervisor goroutine per configured
// relay. Each reaches Disconnected and releases its transport before the
// WaitGroup is released.
func (svc *ChestService) StartRelaySupervisors(ctx context.Context, wg *sync.WaitGroup) {
	for _, unit := range svc.relays {
		wg.Add(1)
		go func(unit *RelayUnit) {
			defer wg.Done()
			svc.runRelayUnit(ctx, unit)
		}(unit)
	}
}

// runRelayUnit drives the Disconnected -> Connecting -> Subscribed state
// machine for one endpoint until the context is canceled. Reconnects use
// exponential backoff with jitter, capped at the configured max interval,
// and reset after a successful subscribe.
func (svc *ChestService) runRelayUnit(ctx context.Context, unit *RelayUnit) {
	defer unit.setState(RelayDisconnected)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = time.Duration(svc.Config.ReconnectMaxInterval) * time.Second
	bo.MaxElapsedTime = 0 // retry for the lifetime of the process

	filters := nostr.Filters{{Kinds: svc.Config.EventKinds}}

	for {
		unit.setState(RelayConnecting)

		conn, err := svc.dial(ctx, unit.Uri)
		if err != nil {
			unit.setError(err)
			unit.setState(RelayDisconnected)
			svc.Logger.Errorf("Failed to connect to relay %s: %v", unit.Uri, err)
			if !sleepOrDone(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}

		sub, err := conn.Subscribe(ctx, filters, nostr.WithLabel(uuid.NewString()))
		if err != nil {
			unit.setError(err)
			unit.setState(RelayDisconnected)
			conn.Close()
			svc.Logger.Errorf("Failed to subscribe to relay %s: %v", unit.Uri, err)
			if !sleepOrDone(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}

		unit.setState(RelaySubscribed)
		unit.setError(nil)
		bo.Reset()
		svc.Logger.Infof("Subscribed to relay %s with kinds %v", unit.Uri, svc.Config.EventKinds)

		if !svc.forwardEvents(ctx, unit, sub) {
			sub.Unsub()
			conn.Close()
			return
		}

		// subscription ended on a transport or protocol error
		conn.Close()
		unit.setState(RelayDisconnected)
		svc.Logger.Infof("Relay %s disconnected, reconnecting", unit.Uri)
		if !sleepOrDone(ctx, bo.NextBackOff()) {
			return
		}
	}
}

// forwardEvents pushes events from one subscription into the bounded
// ingestion channel, in arrival order. A full channel blocks the unit
// rather than dropping events. Returns false when the context ended,
// true when the subscription closed and the unit should reconnect.
func (svc *ChestService) forwardEvents(ctx context.Context, unit *RelayUnit, sub RelaySubscription) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.Events():
			if !ok {
				return true
			}
			if ev == nil {
				continue
			}
			select {
			case svc.events <- IncomingEvent{Event: ev, RelayUri: unit.Uri}:
				unit.forwarded.Add(1)
			case <-ctx.Done():
				return false
			}
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
