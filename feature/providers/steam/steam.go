package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"achievement-hub/core/executor"
	"achievement-hub/core/models"
	"achievement-hub/core/provider"
	"achievement-hub/core/utils"

	"go.uber.org/zap"
)

const iconURL = "https://media.steampowered.com/steamcommunity/public/images/apps/%d/%s.jpg"

var steamIDPattern = regexp.MustCompile(`^\d{17}$`)

// Provider talks to the Steam Web API for one user.
type Provider struct {
	baseURL string
	apiKey  string
	steamID string
	http    *http.Client
	catalog provider.Catalog
	titles  *executor.Executor
	logger  *zap.Logger
}

// Factory returns the provider factory for the registry. Missing credentials yield
// provider.ErrNotConfigured.
func Factory(cfg Config, timeout time.Duration, catalog provider.Catalog, logger *zap.Logger) provider.Factory {
	return provider.Factory{
		Platform: models.PlatformSteam,
		New: func(ctx context.Context) (provider.Provider, error) {
			return New(ctx, cfg, &http.Client{Timeout: timeout}, catalog, logger)
		},
	}
}

// New creates a Steam provider, resolving cfg.ID when it is a vanity name.
func New(ctx context.Context, cfg Config, client *http.Client, catalog provider.Catalog, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" || cfg.ID == "" {
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
		apiKey:  cfg.APIKey,
		http:    client,
		catalog: catalog,
		logger:  logger.With(zap.String("provider", "steam")),
	}
	p.titles = executor.New("steam-titles", max(cfg.Concurrency, 1), p.logger)

	id := strings.TrimSpace(cfg.ID)
	if steamIDPattern.MatchString(id) {
		p.steamID = id
		return p, nil
	}

	resolved, err := p.resolveVanity(ctx, id)
	if err != nil {
		return nil, err
	}
	p.steamID = resolved
	return p, nil
}

// Name returns a human readable name for logs.
func (p *Provider) Name() string { return "Steam" }

// Platform returns models.PlatformSteam.
func (p *Provider) Platform() models.Platform { return models.PlatformSteam }

// SteamID returns the resolved 64-bit SteamID.
func (p *Provider) SteamID() string { return p.steamID }

type vanityResponse struct {
	Response struct {
		SteamID string `json:"steamid"`
		Success int    `json:"success"`
		Message string `json:"message"`
	} `json:"response"`
}

func (p *Provider) resolveVanity(ctx context.Context, vanity string) (string, error) {
	var out vanityResponse
	if err := p.get(ctx, "/ISteamUser/ResolveVanityURL/v1/", url.Values{"vanityurl": {vanity}}, &out); err != nil {
		return "", fmt.Errorf("resolve vanity name: %w", err)
	}
	if out.Response.Success != 1 || out.Response.SteamID == "" {
		return "", fmt.Errorf("resolve vanity name %q: %s", vanity, out.Response.Message)
	}
	return out.Response.SteamID, nil
}

type ownedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	ImgIconURL      string `json:"img_icon_url"`
	RTimeLastPlayed int64  `json:"rtime_last_played"`
}

type gamesResponse struct {
	Response struct {
		Games []ownedGame `json:"games"`
	} `json:"response"`
}

// GetLibrary lists every owned game with its achievements.
func (p *Provider) GetLibrary(ctx context.Context) ([]models.Game, error) {
	var out gamesResponse
	query := url.Values{
		"steamid":                   {p.steamID},
		"include_appinfo":           {"1"},
		"include_played_free_games": {"1"},
	}
	if err := p.get(ctx, "/IPlayerService/GetOwnedGames/v1/", query, &out); err != nil {
		return nil, fmt.Errorf("owned games: %w", err)
	}
	return p.expand(ctx, out.Response.Games)
}

// RefreshLibrary fetches recently played games, skipping titles known to have no
// achievements.
func (p *Provider) RefreshLibrary(ctx context.Context) ([]models.Game, error) {
	var out gamesResponse
	if err := p.get(ctx, "/IPlayerService/GetRecentlyPlayedGames/v1/", url.Values{"steamid": {p.steamID}}, &out); err != nil {
		return nil, fmt.Errorf("recently played games: %w", err)
	}

	games := make([]ownedGame, 0, len(out.Response.Games))
	for _, g := range out.Response.Games {
		if known, ok := p.catalog.Get(models.GameID(models.PlatformSteam, strconv.Itoa(g.AppID))); ok && !known.HasAchievements() {
			continue
		}
		games = append(games, g)
	}
	return p.expand(ctx, games)
}

// RefreshTitle re-fetches one title. Name, icon and playtime come from the library when
// the title is already known.
func (p *Provider) RefreshTitle(ctx context.Context, id string) (models.Game, error) {
	appID, err := strconv.Atoi(models.NativeID(id))
	if err != nil {
		return models.Game{}, fmt.Errorf("%w: %s", provider.ErrTitleNotFound, id)
	}

	base := ownedGame{AppID: appID}
	if known, ok := p.catalog.Get(id); ok {
		base.Name = known.Name
		base.PlaytimeForever = known.PlaytimeMinutes
		g, err := p.title(ctx, base)
		if err != nil {
			return models.Game{}, err
		}
		g.Icon = known.Icon
		if known.LastUpdated.After(g.LastUpdated) {
			g.LastUpdated = known.LastUpdated
		}
		return g, nil
	}

	g, err := p.title(ctx, base)
	if err != nil {
		return models.Game{}, err
	}
	if g.Name == "" {
		return models.Game{}, fmt.Errorf("%w: %s", provider.ErrTitleNotFound, id)
	}
	return g, nil
}

// expand fetches achievements for every game. A title whose requests fail is left out so
// the library keeps its previous record.
func (p *Provider) expand(ctx context.Context, owned []ownedGame) ([]models.Game, error) {
	outcomes := executor.MapSafe(ctx, p.titles, owned, p.title, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(owned))
	for i, out := range outcomes {
		if out.Err != nil {
			p.logger.Debug("Skipping title", zap.Int("appid", owned[i].AppID), zap.Error(out.Err))
			continue
		}
		games = append(games, out.Value)
	}
	return games, nil
}

type schemaResponse struct {
	Game struct {
		GameName           string `json:"gameName"`
		AvailableGameStats struct {
			Achievements []struct {
				Name        string `json:"name"`
				DisplayName string `json:"displayName"`
				Description string `json:"description"`
				Icon        string `json:"icon"`
				IconGray    string `json:"icongray"`
				Hidden      int    `json:"hidden"`
			} `json:"achievements"`
		} `json:"availableGameStats"`
	} `json:"game"`
}

type playerResponse struct {
	PlayerStats struct {
		Success      bool   `json:"success"`
		Error        string `json:"error"`
		Achievements []struct {
			APIName    string `json:"apiname"`
			Achieved   int    `json:"achieved"`
			UnlockTime int64  `json:"unlocktime"`
		} `json:"achievements"`
	} `json:"playerstats"`
}

type rarityResponse struct {
	AchievementPercentages struct {
		Achievements []struct {
			Name    string          `json:"name"`
			Percent utils.FlexFloat `json:"percent"`
		} `json:"achievements"`
	} `json:"achievementpercentages"`
}

func (p *Provider) title(ctx context.Context, owned ownedGame) (models.Game, error) {
	appID := strconv.Itoa(owned.AppID)
	game := models.Game{
		ID:              models.GameID(models.PlatformSteam, appID),
		Name:            owned.Name,
		Platform:        models.PlatformSteam,
		PlaytimeMinutes: owned.PlaytimeForever,
		Achievements:    []models.Achievement{},
	}
	if owned.ImgIconURL != "" {
		game.Icon = fmt.Sprintf(iconURL, owned.AppID, owned.ImgIconURL)
	}
	if owned.RTimeLastPlayed > 0 {
		game.LastUpdated = time.Unix(owned.RTimeLastPlayed, 0).UTC()
	}

	var schema schemaResponse
	if err := p.get(ctx, "/ISteamUserStats/GetSchemaForGame/v2/", url.Values{"appid": {appID}}, &schema); err != nil {
		return models.Game{}, fmt.Errorf("schema for %s: %w", appID, err)
	}
	if game.Name == "" {
		game.Name = schema.Game.GameName
	}
	defs := schema.Game.AvailableGameStats.Achievements
	if len(defs) == 0 {
		return game, nil
	}

	var player playerResponse
	err := p.get(ctx, "/ISteamUserStats/GetPlayerAchievements/v1/", url.Values{"steamid": {p.steamID}, "appid": {appID}}, &player)
	if err != nil {
		return models.Game{}, fmt.Errorf("player achievements for %s: %w", appID, err)
	}
	if !player.PlayerStats.Success && player.PlayerStats.Error != "" {
		return models.Game{}, fmt.Errorf("player achievements for %s: %s", appID, player.PlayerStats.Error)
	}

	type unlock struct {
		achieved bool
		at       int64
	}
	unlocks := make(map[string]unlock, len(player.PlayerStats.Achievements))
	for _, a := range player.PlayerStats.Achievements {
		unlocks[a.APIName] = unlock{achieved: a.Achieved == 1, at: a.UnlockTime}
	}

	rarity := p.rarity(ctx, appID)

	game.Achievements = make([]models.Achievement, 0, len(defs))
	for _, d := range defs {
		a := models.Achievement{
			ID:          d.Name,
			Title:       d.DisplayName,
			Description: d.Description,
			Icon:        d.IconGray,
			IsHidden:    d.Hidden == 1,
		}
		if u := unlocks[d.Name]; u.achieved {
			a.IsUnlocked = true
			a.Icon = d.Icon
			if u.at > 0 {
				t := time.Unix(u.at, 0).UTC()
				a.UnlockedOn = &t
				if t.After(game.LastUpdated) {
					game.LastUpdated = t
				}
			}
		}
		if pct, ok := rarity[d.Name]; ok {
			a.RarityPercentage = &pct
		}
		game.Achievements = append(game.Achievements, a)
	}
	return game, nil
}

// rarity returns global unlock percentages by achievement name. It is best effort.
func (p *Provider) rarity(ctx context.Context, appID string) map[string]float64 {
	var out rarityResponse
	err := p.get(ctx, "/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", url.Values{"gameid": {appID}}, &out)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Debug("Rarity unavailable", zap.String("appid", appID), zap.Error(err))
		}
		return nil
	}
	m := make(map[string]float64, len(out.AchievementPercentages.Achievements))
	for _, a := range out.AchievementPercentages.Achievements {
		m[a.Name] = float64(a.Percent)
	}
	return m
}

func (p *Provider) get(ctx context.Context, path string, query url.Values, out any) error {
	q := url.Values{"key": {p.apiKey}, "format": {"json"}}
	for k, v := range query {
		q[k] = v
	}
	return provider.GetJSON(ctx, p.http, p.baseURL+path, q, nil, out)
}
