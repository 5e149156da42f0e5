// Package backup copies the library document to an S3 compatible object store.
//
// Persister decorates the local library.Persister: every successful local save is
// followed by an upload of latest.json and, when retention is enabled, a timestamped
// snapshot under snapshots/. Older snapshots beyond the retention count are removed in
// one batch. Upload failures are logged; the local document stays authoritative.
//
// Pull restores latest.json (the `backup pull` command writes it over the local document).
//
// # Layout
//
//	<prefix>/latest.json
//	<prefix>/snapshots/20240102T030405.000Z.json
package backup
