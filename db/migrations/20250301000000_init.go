package migrations

import (
	"context"

	"github.com/nostrchest/chest.go/db/models"
	"github.com/uptrace/bun"
)

/* This init reflects the latest model fields when run on a fresh db.
When adding/removing columns in subsequent migrations use IfNotExists/IfExists,
otherwise re-running on an existing db results in errors. */
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateTable().Model((*models.Event)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.EventRef)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// one reference row per (referenced id, referencing id) pair
		if _, err := db.NewCreateIndex().Model((*models.EventRef)(nil)).
			Index("event_refs_ref_event_idx").Unique().
			Column("ref_id", "event_id").IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*models.EventRef)(nil)).
			Index("event_refs_ref_folder_idx").
			Column("ref_id", "folder").IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*models.Event)(nil)).
			Index("events_folder_pubkey_idx").
			Column("folder", "pubkey").IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*models.Event)(nil)).
			Index("events_folder_created_idx").
			Column("folder", "created_at").IfNotExists().Exec(ctx); err != nil {
			return err
		}

		return nil
	}, nil)
}
