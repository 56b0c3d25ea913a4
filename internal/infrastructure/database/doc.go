// Package database opens the SQLite file that mirrors the host's device
// registry, entity registry and last known states, so the card can be
// assembled right after a restart before retained messages are replayed.
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	err = db.Migrate(ctx, migrations.FS)
//
// Migrations are *.up.sql / *.down.sql pairs named
// YYYYMMDD_HHMMSS_description. Each runs in its own transaction.
package database
