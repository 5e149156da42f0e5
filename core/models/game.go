package models

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the service a game is tracked on.
type Platform string

const (
	PlatformSteam             Platform = "steam"
	PlatformXbox              Platform = "xbox"
	PlatformPlayStation       Platform = "playstation"
	PlatformRetroAchievements Platform = "retroachievements"
	PlatformEpicGames         Platform = "epic"
	PlatformGooglePlay        Platform = "googleplay"
)

var platformPrefixes = map[Platform]string{
	PlatformSteam:             "steam",
	PlatformXbox:              "xbox",
	PlatformPlayStation:       "psn",
	PlatformRetroAchievements: "ra",
	PlatformEpicGames:         "epic",
	PlatformGooglePlay:        "gplay",
}

// Platforms returns every known platform.
func Platforms() []Platform {
	return []Platform{
		PlatformSteam,
		PlatformXbox,
		PlatformPlayStation,
		PlatformRetroAchievements,
		PlatformEpicGames,
		PlatformGooglePlay,
	}
}

// IsValid reports whether p is one of the known platforms.
func (p Platform) IsValid() bool {
	_, ok := platformPrefixes[p]
	return ok
}

// Prefix returns the identifier namespace used for games of this platform.
func (p Platform) Prefix() string {
	return platformPrefixes[p]
}

// GameID builds a namespaced game identifier, e.g. GameID(PlatformSteam, "440") == "steam-440".
func GameID(p Platform, nativeID string) string {
	return p.Prefix() + "-" + nativeID
}

// PlatformFromID resolves the platform from a namespaced identifier.
func PlatformFromID(id string) (Platform, error) {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return "", fmt.Errorf("identifier %q has no platform namespace", id)
	}
	for p, pre := range platformPrefixes {
		if pre == prefix {
			return p, nil
		}
	}
	return "", fmt.Errorf("identifier %q has unknown namespace %q", id, prefix)
}

// NativeID strips the platform namespace from an identifier.
func NativeID(id string) string {
	_, native, ok := strings.Cut(id, "-")
	if !ok {
		return id
	}
	return native
}

// Estimate holds HowLongToBeat completion times, in hours.
// A zero value for a field means the estimate is unknown.
type Estimate struct {
	MainStory      float64   `json:"main_story"`
	MainPlusExtras float64   `json:"main_plus_extras"`
	Completionist  float64   `json:"completionist"`
	AllStyles      float64   `json:"all_styles"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Found reports whether the lookup matched a game.
func (e *Estimate) Found() bool {
	return e != nil && (e.MainStory > 0 || e.MainPlusExtras > 0 || e.Completionist > 0 || e.AllStyles > 0)
}

// Game is one title tracked on one platform.
// Games are replaced wholesale on update; callers must not mutate a Game after handing it
// to the library store.
type Game struct {
	// ID is the namespaced identifier ("steam-440") and the merge key.
	ID     string   `json:"identifier"`
	Name   string   `json:"name"`
	Author string   `json:"author"`
	Icon   string   `json:"icon"`
	// Platform is the service the game is tracked on.
	Platform Platform `json:"platform"`
	// PlaytimeMinutes is -1 when the platform does not track playtime.
	PlaytimeMinutes int           `json:"playtime"`
	Achievements    []Achievement `json:"achievements"`
	LastUpdated     time.Time     `json:"last_updated"`
	HowLongToBeat   *Estimate     `json:"how_long_to_beat,omitempty"`
}

// UnlockedCount returns the number of unlocked achievements.
func (g Game) UnlockedCount() int {
	n := 0
	for _, a := range g.Achievements {
		if a.IsUnlocked {
			n++
		}
	}
	return n
}

// TotalCount returns the number of achievements.
func (g Game) TotalCount() int {
	return len(g.Achievements)
}

// HasAchievements reports whether the game has at least one achievement.
func (g Game) HasAchievements() bool {
	return len(g.Achievements) > 0
}

// IsComplete reports whether every achievement is unlocked. Games without achievements
// are never complete.
func (g Game) IsComplete() bool {
	return g.HasAchievements() && g.UnlockedCount() == g.TotalCount()
}

// IsStarted reports whether at least one achievement is unlocked.
func (g Game) IsStarted() bool {
	return g.UnlockedCount() > 0
}

// Percentage returns the integer completion percentage, truncated.
func (g Game) Percentage() int {
	total := g.TotalCount()
	if total == 0 {
		return 0
	}
	return g.UnlockedCount() * 100 / total
}

// NeedsEnrichment reports whether the HowLongToBeat estimate is missing or older than freshness.
func (g Game) NeedsEnrichment(now time.Time, freshness time.Duration) bool {
	if g.HowLongToBeat == nil || g.HowLongToBeat.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(g.HowLongToBeat.FetchedAt) > freshness
}

// WithEstimate returns a copy of g carrying the estimate.
func (g Game) WithEstimate(e Estimate) Game {
	g.HowLongToBeat = &e
	return g
}

// Achievement is one unlockable goal within a game.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsUnlocked  bool   `json:"is_unlocked"`
	// UnlockedOn is only set when IsUnlocked is true.
	UnlockedOn *time.Time `json:"unlocked_on,omitempty"`
	// IsHidden marks secret achievements; withholding their text is up to the UI.
	IsHidden         bool     `json:"is_hidden"`
	CurrentProgress  *int     `json:"current_progress,omitempty"`
	MaxProgress      *int     `json:"max_progress,omitempty"`
	RarityPercentage *float64 `json:"rarity,omitempty"`
}
