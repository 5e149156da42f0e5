package view

import (
	"iter"
	"slices"
	"strings"

	"achievement-hub/core/library"
	"achievement-hub/core/models"
)

// Order is the single, user-selected sort key.
type Order string

const (
	OrderName          Order = "name"
	OrderPercentage    Order = "percentage"
	OrderTotal         Order = "total"
	OrderUnlocked      Order = "unlocked"
	OrderPlaytime      Order = "playtime"
	OrderLastUpdated   Order = "last_updated"
	OrderMainStory     Order = "main_story"
	OrderCompletionist Order = "completionist"
)

// ParseOrder validates a persisted order name.
func ParseOrder(s string) (Order, bool) {
	switch o := Order(s); o {
	case OrderName, OrderPercentage, OrderTotal, OrderUnlocked, OrderPlaytime,
		OrderLastUpdated, OrderMainStory, OrderCompletionist:
		return o, true
	}
	return OrderName, false
}

// Filter holds the AND-composed visibility predicates.
type Filter struct {
	HideComplete       bool   `json:"hide_complete"`
	HideNoAchievements bool   `json:"hide_no_achievements"`
	HideUnstarted      bool   `json:"hide_unstarted"`
	Search             string `json:"search"`
}

// Match reports whether g passes every enabled predicate.
func (f Filter) Match(g models.Game) bool {
	unlocked, total := g.UnlockedCount(), g.TotalCount()
	if f.HideComplete && unlocked >= total {
		return false
	}
	if f.HideNoAchievements && total == 0 {
		return false
	}
	if f.HideUnstarted && unlocked == 0 {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Settings describes how the full sequence is derived from the library.
type Settings struct {
	Filter   Filter `json:"filter"`
	Order    Order  `json:"order"`
	Reverse  bool   `json:"reverse"`
	PageSize int    `json:"page_size"`
}

// SettingsFromPreferences builds view settings from the persisted preferences.
// The search text is never persisted.
func SettingsFromPreferences(p library.Preferences) Settings {
	order, _ := ParseOrder(p.OrderBy)
	return Settings{
		Filter: Filter{
			HideComplete:       p.HideComplete,
			HideNoAchievements: p.HideNoAchievements,
			HideUnstarted:      p.HideUnstarted,
		},
		Order:    order,
		Reverse:  p.Reverse,
		PageSize: p.PageSize,
	}.normalized()
}

// Preferences converts the settings back to their persisted form.
func (s Settings) Preferences() library.Preferences {
	return library.Preferences{
		HideComplete:       s.Filter.HideComplete,
		HideNoAchievements: s.Filter.HideNoAchievements,
		HideUnstarted:      s.Filter.HideUnstarted,
		Reverse:            s.Reverse,
		OrderBy:            string(s.Order),
		PageSize:           s.PageSize,
	}
}

func (s Settings) normalized() Settings {
	if s.PageSize <= 0 {
		s.PageSize = library.DefaultPageSize
	}
	if _, ok := ParseOrder(string(s.Order)); !ok {
		s.Order = OrderName
	}
	return s
}

// Sequence returns the filtered and sorted games. The sequence is lazy and restartable:
// the work happens on each iteration, against the games slice it was given.
func Sequence(games []models.Game, s Settings) iter.Seq[models.Game] {
	s = s.normalized()
	return func(yield func(models.Game) bool) {
		for _, g := range project(games, s) {
			if !yield(g) {
				return
			}
		}
	}
}

func project(games []models.Game, s Settings) []models.Game {
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if !s.Filter.Match(g) {
			continue
		}
		switch s.Order {
		case OrderMainStory:
			if g.HowLongToBeat == nil || g.HowLongToBeat.MainStory <= 0 {
				continue
			}
		case OrderCompletionist:
			if g.HowLongToBeat == nil || g.HowLongToBeat.Completionist <= 0 {
				continue
			}
		}
		out = append(out, g)
	}

	key := comparator(s.Order)
	slices.SortStableFunc(out, func(a, b models.Game) int {
		if c := key(a, b); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if s.Reverse {
		slices.Reverse(out)
	}
	return out
}

func comparator(o Order) func(a, b models.Game) int {
	switch o {
	case OrderPercentage:
		return func(a, b models.Game) int { return a.Percentage() - b.Percentage() }
	case OrderTotal:
		return func(a, b models.Game) int { return a.TotalCount() - b.TotalCount() }
	case OrderUnlocked:
		return func(a, b models.Game) int { return a.UnlockedCount() - b.UnlockedCount() }
	case OrderPlaytime:
		return func(a, b models.Game) int { return a.PlaytimeMinutes - b.PlaytimeMinutes }
	case OrderLastUpdated:
		return func(a, b models.Game) int { return b.LastUpdated.Compare(a.LastUpdated) }
	case OrderMainStory:
		return func(a, b models.Game) int { return compareFloat(a.HowLongToBeat.MainStory, b.HowLongToBeat.MainStory) }
	case OrderCompletionist:
		return func(a, b models.Game) int {
			return compareFloat(a.HowLongToBeat.Completionist, b.HowLongToBeat.Completionist)
		}
	default:
		return func(a, b models.Game) int { return 0 }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
