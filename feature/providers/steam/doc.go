// Package steam implements the Steam provider on top of the Steam Web API.
//
// The provider resolves a vanity name to a SteamID at construction. A scan lists owned
// games and fetches the achievement schema, the player's unlocks and global rarity for each
// of them; a refresh only looks at recently played games and skips titles already known to
// have no achievements.
package steam
