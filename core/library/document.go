package library

import "achievement-hub/core/models"

const (
	// CurrentVersion is the schema version written by this build.
	CurrentVersion = 3
	// MinSupportedVersion is the oldest schema whose games are still trusted. Documents
	// below it keep their accounts and preferences but lose every game, forcing a rescan.
	MinSupportedVersion = 3
)

// Document is the persisted form of the library.
type Document struct {
	Version     int                    `json:"version"`
	Games       map[string]models.Game `json:"games"`
	Accounts    Accounts               `json:"accounts"`
	Preferences Preferences            `json:"preferences"`
}

// Accounts holds the per-platform user identifiers and credentials.
type Accounts struct {
	SteamID       string `json:"steam_id,omitempty"`
	SteamVanity   string `json:"steam_vanity,omitempty"`
	RetroUser     string `json:"retroachievements_user,omitempty"`
	XboxXUID      string `json:"xbox_xuid,omitempty"`
	XboxAuth      string `json:"xbox_auth,omitempty"`
	PlayStationID string `json:"psn_token,omitempty"`
}

// Preferences is the persisted view state.
type Preferences struct {
	HideComplete       bool   `json:"hide_complete"`
	HideNoAchievements bool   `json:"hide_no_achievements"`
	HideUnstarted      bool   `json:"hide_unstarted"`
	Reverse            bool   `json:"reverse"`
	OrderBy            string `json:"order_by"`
	PageSize           int    `json:"page_size"`
}

// DefaultPageSize is used when the persisted page size is missing or invalid.
const DefaultPageSize = 50

// DefaultPreferences returns the preferences of a fresh library.
func DefaultPreferences() Preferences {
	return Preferences{
		OrderBy:  "name",
		PageSize: DefaultPageSize,
	}
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:     CurrentVersion,
		Games:       make(map[string]models.Game),
		Preferences: DefaultPreferences(),
	}
}
