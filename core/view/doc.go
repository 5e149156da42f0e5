// Package view projects the library into a filtered, sorted sequence and keeps a bounded,
// scroll-driven window of it materialized.
//
// Sequence is the pure part: it filters and sorts a snapshot of games on every iteration.
// Projector owns the window state. It extends the window a page at a time as the viewport
// nears either edge and trims items that have scrolled out of view, so no more than
// MaxPages pages are ever held. Scroll returns an Adjustment the presentation layer applies
// to its offset after a trim.
package view
