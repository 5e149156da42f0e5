// Package stats derives library-wide counters (games, achievements, perfect games and the
// completion percentage) and caches them until the library changes.
package stats
