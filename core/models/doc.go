// Package models defines the game and achievement records shared by every part of the
// synchronization core.
//
// A Game is keyed by a platform-namespaced identifier such as "steam-440" or "ra-20".
// Two records with the same identifier describe the same title and the later one always
// replaces the earlier one wholesale.
package models
