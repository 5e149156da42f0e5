// Package enrich looks up completion-time estimates for games by name.
//
// # Lookup
//
// Lookup is the contract the sync orchestrator depends on. GetGameData returns nil and no
// error when no confident match exists, so callers can store an empty, timestamped
// estimate and skip the title until it goes stale.
//
// # Implementations
//
//   - Client queries the HowLongToBeat search endpoint, picks the closest result by
//     edit distance and de-duplicates concurrent lookups of the same name.
//   - RedisCache wraps any Lookup and keeps answers (including misses) in Redis.
package enrich
