package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nostrchest/chest.go/db/models"
	"github.com/uptrace/bun"
)

var (
	// ErrEventNotFound : direct lookup miss.
	ErrEventNotFound = errors.New("event not found")
	// ErrStoreConflict : same id stored with different content. This must
	// never be silently accepted; the original record is retained.
	ErrStoreConflict = errors.New("event id conflict with differing content")
)

// PutEvent inserts an event and its reference index entries in one
// transaction. A second put of an identical event is a no-op; a put of a
// different event under the same id returns ErrStoreConflict.
func (svc *ChestService) PutEvent(ctx context.Context, ev *nostr.Event, folder string) error {
	row, err := models.EventFromNostr(ev, folder)
	if err != nil {
		return err
	}
	refs := referencedEventIds(ev.Tags)

	return svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing := models.Event{}
		err := tx.NewSelect().Model(&existing).Where("event_id = ?", ev.ID).Scan(ctx)
		if err == nil {
			if existing.Sig == row.Sig && existing.Content == row.Content && existing.Kind == row.Kind &&
				existing.Pubkey == row.Pubkey && existing.CreatedAt == row.CreatedAt && existing.Tags == row.Tags {
				return nil
			}
			return ErrStoreConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		for _, refId := range refs {
			ref := models.EventRef{
				RefID:   refId,
				EventID: ev.ID,
				Folder:  folder,
			}
			if _, err := tx.NewInsert().Model(&ref).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// HasEvent reports store membership by event id, used for cheap
// deduplication before the write path.
func (svc *ChestService) HasEvent(ctx context.Context, eventId string) (bool, error) {
	return svc.DB.NewSelect().Model((*models.Event)(nil)).Where("event_id = ?", eventId).Exists(ctx)
}

// GetEventByID returns the event stored under an id within a folder.
func (svc *ChestService) GetEventByID(ctx context.Context, folder, eventId string) (*models.Event, error) {
	event := models.Event{}
	err := svc.DB.NewSelect().Model(&event).Where("folder = ? AND event_id = ?", folder, eventId).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetLatestByAuthor returns the newest event an author published into a
// folder. The users folder is queried this way: a profile lookup is "the
// current kind-0 event of this pubkey".
func (svc *ChestService) GetLatestByAuthor(ctx context.Context, folder, pubkey string) (*models.Event, error) {
	event := models.Event{}
	err := svc.DB.NewSelect().Model(&event).
		Where("folder = ? AND pubkey = ?", folder, pubkey).
		OrderExpr("created_at DESC, event_id DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventsByReference returns the events in a folder whose tags reference
// the given event id, ordered by created_at ascending with event_id as the
// deterministic tiebreaker. An unknown reference yields an empty slice.
func (svc *ChestService) GetEventsByReference(ctx context.Context, folder, refId string) ([]models.Event, error) {
	events := []models.Event{}
	// ref.folder mirrors the referencing event's folder (written in the
	// same transaction), so the (ref_id, folder) index serves this scan
	err := svc.DB.NewSelect().Model(&events).
		Join("JOIN event_refs AS ref ON ref.event_id = event.event_id").
		Where("ref.ref_id = ? AND ref.folder = ?", refId, folder).
		OrderExpr("event.created_at ASC, event.event_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// referencedEventIds extracts the distinct referenced ids from the "e"
// tags, in tag order.
func referencedEventIds(tags nostr.Tags) []string {
	seen := make(map[string]struct{})
	refs := []string{}
	for _, tag := range tags.GetAll([]string{"e"}) {
		ref := tag.Value()
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}
