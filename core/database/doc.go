// Package database opens the optional archive database.
//
// It wraps GORM to configure MySQL or SQLite connections from the application's
// configuration, and offers a small schema inspector used to check that an existing
// archive schema carries the columns the archive writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "archived_games", []string{"id", "name"})
package database
