package service

import (
	"context"

	"github.com/nostrchest/chest.go/common"
	"github.com/nostrchest/chest.go/db/models"
)

// Read-only facade for the HTTP layer. Queries run concurrently with
// ingestion; each is a single statement and observes a consistent
// snapshot.

// GetProfile returns the latest profile (kind 0) event for an author.
func (svc *ChestService) GetProfile(ctx context.Context, pubkey string) (*models.Event, error) {
	return svc.GetLatestByAuthor(ctx, common.FolderUsers, pubkey)
}

// GetNote returns a note by event id.
func (svc *ChestService) GetNote(ctx context.Context, eventId string) (*models.Event, error) {
	return svc.GetEventByID(ctx, common.FolderNotes, eventId)
}

// GetZap returns a zap request or receipt by event id.
func (svc *ChestService) GetZap(ctx context.Context, eventId string) (*models.Event, error) {
	return svc.GetEventByID(ctx, common.FolderZaps, eventId)
}

// GetLongForm returns a long-form article by event id.
func (svc *ChestService) GetLongForm(ctx context.Context, eventId string) (*models.Event, error) {
	return svc.GetEventByID(ctx, common.FolderLong, eventId)
}

// ListReplies returns the notes referencing an event, oldest first.
func (svc *ChestService) ListReplies(ctx context.Context, refId string) ([]models.Event, error) {
	return svc.GetEventsByReference(ctx, common.FolderNotes, refId)
}

// ListReactions returns the reactions referencing an event, oldest first.
func (svc *ChestService) ListReactions(ctx context.Context, refId string) ([]models.Event, error) {
	return svc.GetEventsByReference(ctx, common.FolderReactions, refId)
}

// ListZaps returns the zap events referencing an event, oldest first.
func (svc *ChestService) ListZaps(ctx context.Context, refId string) ([]models.Event, error) {
	return svc.GetEventsByReference(ctx, common.FolderZaps, refId)
}
