// Package browse serves the library to the presentation layer: the windowed view, scroll
// handling, view preferences, statistics and single game detail.
package browse
