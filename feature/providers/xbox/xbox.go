package xbox

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"achievement-hub/core/executor"
	"achievement-hub/core/models"
	"achievement-hub/core/provider"
	"achievement-hub/core/utils"

	"go.uber.org/zap"
)

// Provider talks to OpenXBL for the account owning the API key.
type Provider struct {
	baseURL string
	header  http.Header
	xuid    string
	http    *http.Client
	catalog provider.Catalog
	titles  *executor.Executor
	logger  *zap.Logger
}

// Factory returns the provider factory for the registry.
func Factory(cfg Config, timeout time.Duration, catalog provider.Catalog, logger *zap.Logger) provider.Factory {
	return provider.Factory{
		Platform: models.PlatformXbox,
		New: func(ctx context.Context) (provider.Provider, error) {
			return New(ctx, cfg, &http.Client{Timeout: timeout}, catalog, logger)
		},
	}
}

type accountResponse struct {
	ProfileUsers []struct {
		ID string `json:"id"`
	} `json:"profileUsers"`
}

// New creates an Xbox provider and resolves the account XUID.
func New(ctx context.Context, cfg Config, client *http.Client, catalog provider.Catalog, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = provider.NoCatalog{}
	}
	p := &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		header:  http.Header{"X-Authorization": {cfg.APIKey}, "Accept-Language": {"en-US"}},
		http:    client,
		catalog: catalog,
		logger:  logger.With(zap.String("provider", "xbox")),
	}
	p.titles = executor.New("xbox-titles", max(cfg.Concurrency, 1), p.logger)

	var account accountResponse
	if err := p.get(ctx, "/account", &account); err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}
	if len(account.ProfileUsers) == 0 || account.ProfileUsers[0].ID == "" {
		return nil, fmt.Errorf("account: no profile for this key")
	}
	p.xuid = account.ProfileUsers[0].ID
	return p, nil
}

// Name returns a human readable name for logs.
func (p *Provider) Name() string { return "Xbox" }

// Platform returns models.PlatformXbox.
func (p *Provider) Platform() models.Platform { return models.PlatformXbox }

// XUID returns the account identifier.
func (p *Provider) XUID() string { return p.xuid }

type titleEntry struct {
	TitleID      string `json:"titleId"`
	Name         string `json:"name"`
	DisplayImage string `json:"displayImage"`
	Achievement  struct {
		CurrentAchievements utils.FlexInt `json:"currentAchievements"`
		TotalAchievements   utils.FlexInt `json:"totalAchievements"`
		TotalGamerscore     utils.FlexInt `json:"totalGamerscore"`
	} `json:"achievement"`
	TitleHistory struct {
		LastTimePlayed string `json:"lastTimePlayed"`
	} `json:"titleHistory"`
}

func (t titleEntry) hasAchievements() bool {
	return t.Achievement.TotalGamerscore > 0 || t.Achievement.TotalAchievements > 0
}

func (t titleEntry) lastPlayed() time.Time {
	ts, _ := utils.ParseTime(t.TitleHistory.LastTimePlayed)
	return ts
}

type historyResponse struct {
	Titles []titleEntry `json:"titles"`
}

func (p *Provider) history(ctx context.Context) ([]titleEntry, error) {
	var out historyResponse
	if err := p.get(ctx, "/achievements", &out); err != nil {
		return nil, fmt.Errorf("title history: %w", err)
	}
	return out.Titles, nil
}

// GetLibrary lists every title in the account's history.
func (p *Provider) GetLibrary(ctx context.Context) ([]models.Game, error) {
	titles, err := p.history(ctx)
	if err != nil {
		return nil, err
	}
	return p.expand(ctx, titles)
}

// RefreshLibrary expands titles that are new to the library or were played after the
// library's record of them. Titles known to have no achievements are skipped.
func (p *Provider) RefreshLibrary(ctx context.Context) ([]models.Game, error) {
	titles, err := p.history(ctx)
	if err != nil {
		return nil, err
	}

	recent := make([]titleEntry, 0, len(titles))
	for _, t := range titles {
		known, ok := p.catalog.Get(models.GameID(models.PlatformXbox, t.TitleID))
		if ok && (!known.HasAchievements() || !t.lastPlayed().After(known.LastUpdated)) {
			continue
		}
		recent = append(recent, t)
	}
	return p.expand(ctx, recent)
}

// RefreshTitle re-fetches one title's achievements.
func (p *Provider) RefreshTitle(ctx context.Context, id string) (models.Game, error) {
	titleID := models.NativeID(id)
	entry := titleEntry{TitleID: titleID}
	known, ok := p.catalog.Get(id)
	if ok {
		entry.Name = known.Name
		entry.DisplayImage = known.Icon
	}

	g, err := p.title(ctx, entry)
	if provider.IsStatus(err, http.StatusNotFound) {
		return models.Game{}, fmt.Errorf("%w: %s", provider.ErrTitleNotFound, id)
	}
	if err != nil {
		return models.Game{}, err
	}
	if !ok && !g.HasAchievements() {
		return models.Game{}, fmt.Errorf("%w: %s", provider.ErrTitleNotFound, id)
	}
	if g.Name == "" {
		g.Name = id
	}
	if known.LastUpdated.After(g.LastUpdated) {
		g.LastUpdated = known.LastUpdated
	}
	return g, nil
}

func (p *Provider) expand(ctx context.Context, titles []titleEntry) ([]models.Game, error) {
	outcomes := executor.MapSafe(ctx, p.titles, titles, p.title, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(titles))
	for i, out := range outcomes {
		if out.Err != nil {
			p.logger.Debug("Skipping title", zap.String("title_id", titles[i].TitleID), zap.Error(out.Err))
			continue
		}
		games = append(games, out.Value)
	}
	return games, nil
}

type playerAchievements struct {
	Achievements []struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		Description       string `json:"description"`
		LockedDescription string `json:"lockedDescription"`
		ProgressState     string `json:"progressState"`
		IsSecret          bool   `json:"isSecret"`
		Progression       struct {
			Requirements []struct {
				Current string `json:"current"`
				Target  string `json:"target"`
			} `json:"requirements"`
			TimeUnlocked string `json:"timeUnlocked"`
		} `json:"progression"`
		MediaAssets []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"mediaAssets"`
		Rarity struct {
			CurrentPercentage utils.FlexFloat `json:"currentPercentage"`
		} `json:"rarity"`
	} `json:"achievements"`
}

func (p *Provider) title(ctx context.Context, t titleEntry) (models.Game, error) {
	game := models.Game{
		ID:              models.GameID(models.PlatformXbox, t.TitleID),
		Name:            t.Name,
		Icon:            t.DisplayImage,
		Platform:        models.PlatformXbox,
		PlaytimeMinutes: -1,
		LastUpdated:     t.lastPlayed(),
		Achievements:    []models.Achievement{},
	}
	if t.Name != "" && !t.hasAchievements() {
		return game, nil
	}

	var out playerAchievements
	if err := p.get(ctx, "/achievements/player/"+p.xuid+"/"+t.TitleID, &out); err != nil {
		return models.Game{}, fmt.Errorf("title %s: %w", t.TitleID, err)
	}

	for _, a := range out.Achievements {
		ach := models.Achievement{
			ID:          a.ID,
			Title:       a.Name,
			Description: a.Description,
			IsHidden:    a.IsSecret,
			IsUnlocked:  a.ProgressState == "Achieved",
		}
		if ach.Description == "" {
			ach.Description = a.LockedDescription
		}
		for _, m := range a.MediaAssets {
			if strings.EqualFold(m.Type, "Icon") {
				ach.Icon = m.URL
				break
			}
		}
		if ach.IsUnlocked {
			if ts, ok := utils.ParseTime(a.Progression.TimeUnlocked); ok && ts.Year() > 1 {
				ach.UnlockedOn = &ts
				if ts.After(game.LastUpdated) {
					game.LastUpdated = ts
				}
			}
		}
		if reqs := a.Progression.Requirements; len(reqs) == 1 && reqs[0].Target != "" {
			current, target := utils.ToInt(reqs[0].Current), utils.ToInt(reqs[0].Target)
			if target > 1 {
				ach.CurrentProgress = &current
				ach.MaxProgress = &target
			}
		}
		if pct := float64(a.Rarity.CurrentPercentage); pct > 0 {
			ach.RarityPercentage = &pct
		}
		game.Achievements = append(game.Achievements, ach)
	}
	return game, nil
}

func (p *Provider) get(ctx context.Context, path string, out any) error {
	return provider.GetJSON(ctx, p.http, p.baseURL+path, nil, p.header, out)
}
