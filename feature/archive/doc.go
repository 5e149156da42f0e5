// Package archive mirrors the library into SQL tables after every sync run.
//
// The Service is a sync sink: Publish upserts one archived_games row per game and
// replaces its archived_achievements rows inside a single transaction. The tables are
// created with gorm's AutoMigrate, or only checked for the expected columns when
// migrations are managed elsewhere.
//
// The archive is write-mostly. It is meant for ad-hoc SQL and dashboards; the JSON library
// document stays the source of truth. Two read routes expose a per-platform summary and the
// archived achievements of a game.
package archive
