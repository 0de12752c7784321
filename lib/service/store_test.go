package service_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"

	"github.com/nostrchest/chest.go/common"
	"github.com/nostrchest/chest.go/db"
	"github.com/nostrchest/chest.go/db/migrations"
	"github.com/nostrchest/chest.go/lib/service"
)

// openTestService wires a service around a fresh in-memory sqlite store
// with the schema migrated.
func openTestService(t *testing.T, cfg *service.Config, opts ...service.Option) *service.ChestService {
	t.Helper()
	if cfg == nil {
		cfg = &service.Config{}
	}
	cfg.DatabaseUri = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	if cfg.IngestionBuffer == 0 {
		cfg.IngestionBuffer = 16
	}
	if cfg.ReconnectMaxInterval == 0 {
		cfg.ReconnectMaxInterval = 2
	}
	if len(cfg.EventKinds) == 0 {
		cfg.EventKinds = []int{0, 1, 7, 9734, 9735, 30023, 30024}
	}

	dbConn, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return service.New(cfg, dbConn, lecho.New(io.Discard), opts...)
}

// eventId derives a deterministic 64-char hex id from a short label.
func eventId(label string) string {
	return (label + strings.Repeat("0", 64))[:64]
}

func storedEvent(id string, kind int, createdAt int64, content string, tags nostr.Tags) *nostr.Event {
	return &nostr.Event{
		ID:        eventId(id),
		PubKey:    eventId("feed"),
		CreatedAt: nostr.Timestamp(createdAt),
		Kind:      kind,
		Tags:      tags,
		Content:   content,
		Sig:       strings.Repeat("ab", 64),
	}
}

func TestPutEventIdempotent(t *testing.T) {
	svc := openTestService(t, nil)
	ctx := context.Background()

	ev := storedEvent("1a", nostr.KindTextNote, 100, "hello", nostr.Tags{})
	require.NoError(t, svc.PutEvent(ctx, ev, common.FolderNotes))
	require.NoError(t, svc.PutEvent(ctx, ev, common.FolderNotes))

	got, err := svc.GetNote(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	has, err := svc.HasEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPutEventConflictKeepsOriginal(t *testing.T) {
	svc := openTestService(t, nil)
	ctx := context.Background()

	ev := storedEvent("2a", nostr.KindTextNote, 100, "original", nostr.Tags{})
	require.NoError(t, svc.PutEvent(ctx, ev, common.FolderNotes))

	forged := storedEvent("2a", nostr.KindTextNote, 100, "forged", nostr.Tags{})
	err := svc.PutEvent(ctx, forged, common.FolderNotes)
	assert.ErrorIs(t, err, service.ErrStoreConflict)

	got, err := svc.GetNote(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
}

func TestGetEventByIDScopedToFolder(t *testing.T) {
	svc := openTestService(t, nil)
	ctx := context.Background()

	ev := storedEvent("3a", nostr.KindTextNote, 100, "a note", nostr.Tags{})
	require.NoError(t, svc.PutEvent(ctx, ev, common.FolderNotes))

	_, err := svc.GetNote(ctx, ev.ID)
	assert.NoError(t, err)

	// the same id is invisible through every other folder
	_, err = svc.GetZap(ctx, ev.ID)
	assert.ErrorIs(t, err, service.ErrEventNotFound)
	_, err = svc.GetLongForm(ctx, ev.ID)
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

func TestGetEventByIDMiss(t *testing.T) {
	svc := openTestService(t, nil)

	_, err := svc.GetNote(context.Background(), eventId("dead"))
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

func TestGetLatestByAuthorPicksNewest(t *testing.T) {
	svc := openTestService(t, nil)
	ctx := context.Background()

	older := storedEvent("4a", nostr.KindProfileMetadata, 100, `{"name":"old"}`, nostr.Tags{})
	newer := storedEvent("4b", nostr.KindProfileMetadata, 200, `{"name":"new"}`, nostr.Tags{})
	// insertion order must not matter
	require.NoError(t, svc.PutEvent(ctx, newer, common.FolderUsers))
	require.NoError(t, svc.PutEvent(ctx, older, common.FolderUsers))

	got, err := svc.GetProfile(ctx, older.PubKey)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.EventID)

	_, err = svc.GetProfile(ctx, eventId("1234"))
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

func TestGetEventsByReferenceOrdering(t *testing.T) {
	svc := openTestService(t, nil)
	ctx := context.Background()

	parent := storedEvent("5a", nostr.KindTextNote, 50, "parent", nostr.Tags{})
	require.NoError(t, svc.PutEvent(ctx, parent, common.FolderNotes))

	replyTag := nostr.Tags{{"e", parent.ID}}
	late := storedEvent("5c", nostr.KindTextNote, 200, "second reply", replyTag)
	early := storedEvent("5b", nostr.KindTextNote, 100, "first reply", replyTag)
	require.NoError(t, svc.PutEvent(ctx, late, common.FolderNotes))
	require.NoError(t, svc.PutEvent(ctx, early, common.FolderNotes))

	replies, err := svc.ListReplies(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, early.ID, replies[0].EventID)
	assert.Equal(t, late.ID, replies[1].EventID)
}

func TestGetEventsByReferenceScopedToFolder(t *testing.T) {
	svc := openTestService(t, nil)
	ctx := context.Background()

	parent := storedEvent("6a", nostr.KindTextNote, 50, "parent", nostr.Tags{})
	require.NoError(t, svc.PutEvent(ctx, parent, common.FolderNotes))

	reaction := storedEvent("6b", nostr.KindReaction, 100, "+", nostr.Tags{{"e", parent.ID}})
	require.NoError(t, svc.PutEvent(ctx, reaction, common.FolderReactions))
	zap := storedEvent("6c", nostr.KindZap, 150, "", nostr.Tags{{"e", parent.ID}})
	require.NoError(t, svc.PutEvent(ctx, zap, common.FolderZaps))

	reactions, err := svc.ListReactions(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, reaction.ID, reactions[0].EventID)

	zaps, err := svc.ListZaps(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, zaps, 1)
	assert.Equal(t, zap.ID, zaps[0].EventID)

	replies, err := svc.ListReplies(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestGetEventsByReferenceUnknownRef(t *testing.T) {
	svc := openTestService(t, nil)

	replies, err := svc.ListReplies(context.Background(), eventId("beef"))
	require.NoError(t, err)
	assert.Empty(t, replies)
}
