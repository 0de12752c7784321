package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/getsentry/sentry-go"
	"github.com/nostrchest/chest.go/common"
)

type ingestionCounters struct {
	accepted     atomic.Int64
	duplicates   atomic.Int64
	filtered     atomic.Int64
	malformed    atomic.Int64
	idMismatches atomic.Int64
	badSigs      atomic.Int64
	conflicts    atomic.Int64
}

// StartIngestion drains the bounded event channel into the store. It is
// the single writer: every store mutation goes through this loop, which
// keeps the event + reference-index write atomic without multi-writer
// coordination. Returns only on context cancellation (after draining the
// buffer) or on an unrecoverable store failure.
func (svc *ChestService) StartIngestion(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			// finish what the relays already handed over
			for {
				select {
				case in := <-svc.events:
					if err := svc.ingest(context.Background(), in); err != nil {
						return err
					}
				default:
					svc.Logger.Info("Ingestion pipeline drained")
					return nil
				}
			}
		case in := <-svc.events:
			if err := svc.ingest(ctx, in); err != nil {
				return err
			}
		}
	}
}

// ingest runs one event through filter -> validation -> dedup -> atomic
// write. Rejections are counted and dropped; only a persistent store I/O
// failure is returned, which flips the service into degraded state.
func (svc *ChestService) ingest(ctx context.Context, in IncomingEvent) error {
	ev := in.Event

	// cheap rejection before validation
	if !svc.kindTracked(ev.Kind) {
		svc.counters.filtered.Add(1)
		return nil
	}
	folder, ok := common.FolderForKind(ev.Kind)
	if !ok {
		svc.counters.filtered.Add(1)
		return nil
	}

	if err := ValidateEvent(ev); err != nil {
		switch {
		case errors.Is(err, ErrEventIdMismatch):
			svc.counters.idMismatches.Add(1)
		case errors.Is(err, ErrEventBadSignature):
			svc.counters.badSigs.Add(1)
		default:
			svc.counters.malformed.Add(1)
		}
		svc.Logger.Debugf("Rejected event %s from %s: %v", ev.ID, in.RelayUri, err)
		return nil
	}

	// the same event routinely arrives from several relays
	exists, err := svc.HasEvent(ctx, ev.ID)
	if err != nil {
		return svc.degrade(err)
	}
	if exists {
		svc.counters.duplicates.Add(1)
		return nil
	}

	err = svc.putWithRetry(ctx, in, folder)
	if err != nil {
		if errors.Is(err, ErrStoreConflict) {
			// data-integrity alarm: same id, different content
			svc.counters.conflicts.Add(1)
			svc.Logger.Errorf("Store conflict for event %s from %s: %v", ev.ID, in.RelayUri, err)
			sentry.CaptureException(err)
			return nil
		}
		return svc.degrade(err)
	}

	svc.counters.accepted.Add(1)
	svc.Logger.Debugf("Stored event %s kind %d in folder %s (relay %s)", ev.ID, ev.Kind, folder, in.RelayUri)

	if svc.EventPublisher != nil {
		if err := svc.EventPublisher.PublishEvent(ctx, ev, folder); err != nil {
			// fan-out is best effort, the event is already durable
			svc.Logger.Errorf("Failed to publish event %s: %v", ev.ID, err)
		}
	}
	return nil
}

// putWithRetry shields the write path from transient store hiccups.
// Conflicts are surfaced immediately; I/O errors are retried briefly
// before the pipeline gives up and degrades.
func (svc *ChestService) putWithRetry(ctx context.Context, in IncomingEvent, folder string) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		err := svc.PutEvent(ctx, in.Event, folder)
		if errors.Is(err, ErrStoreConflict) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// degrade marks the service unhealthy and stops the write path. Unread
// events stay in the bounded channel, which blocks the relay units and
// leaves redelivery to the relays instead of silently dropping.
func (svc *ChestService) degrade(err error) error {
	svc.health.setDegraded(err)
	svc.Logger.Errorf("Event store unavailable, ingestion stopped: %v", err)
	sentry.CaptureException(err)
	return err
}
