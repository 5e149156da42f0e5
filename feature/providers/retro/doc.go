// Package retro implements the RetroAchievements provider.
//
// The API is loose about types: counts arrive as numbers or strings and achievement lists
// as objects or empty arrays, so responses are decoded through core/utils.
// RetroAchievements does not track playtime.
package retro
