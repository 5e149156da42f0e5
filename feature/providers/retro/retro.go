package retro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"achievement-hub/core/executor"
	"achievement-hub/core/models"
	"achievement-hub/core/provider"
	"achievement-hub/core/utils"

	"go.uber.org/zap"
)

const pageSize = 500

// Provider talks to the RetroAchievements Web API for one user.
type Provider struct {
	baseURL  string
	mediaURL string
	apiKey   string
	user     string
	http     *http.Client
	catalog  provider.Catalog
	titles   *executor.Executor
	logger   *zap.Logger
}

// Factory returns the provider factory for the registry.
func Factory(cfg Config, timeout time.Duration, catalog provider.Catalog, logger *zap.Logger) provider.Factory {
	return provider.Factory{
		Platform: models.PlatformRetroAchievements,
		New: func(ctx context.Context) (provider.Provider, error) {
			return New(ctx, cfg, &http.Client{Timeout: timeout}, catalog, logger)
		},
	}
}

// New creates a RetroAchievements provider and verifies the credentials with a profile
// lookup.
func New(ctx context.Context, cfg Config, client *http.Client, catalog provider.Catalog, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" || cfg.User == "" {
		return nil, provider.ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = provider.NoCatalog{}
	}
	p := &Provider{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		mediaURL: strings.TrimRight(cfg.MediaURL, "/"),
		apiKey:   cfg.APIKey,
		user:     cfg.User,
		http:     client,
		catalog:  catalog,
		logger:   logger.With(zap.String("provider", "retroachievements")),
	}
	p.titles = executor.New("retro-titles", max(cfg.Concurrency, 1), p.logger)

	var profile struct {
		User string `json:"User"`
	}
	if err := p.get(ctx, "API_GetUserProfile.php", url.Values{"u": {p.user}}, &profile); err != nil {
		return nil, fmt.Errorf("user profile: %w", err)
	}
	if profile.User == "" {
		return nil, fmt.Errorf("user profile: unknown user %q", p.user)
	}
	return p, nil
}

// Name returns a human readable name for logs.
func (p *Provider) Name() string { return "RetroAchievements" }

// Platform returns models.PlatformRetroAchievements.
func (p *Provider) Platform() models.Platform { return models.PlatformRetroAchievements }

type progressEntry struct {
	GameID                utils.FlexInt `json:"GameID"`
	Title                 string        `json:"Title"`
	ImageIcon             string        `json:"ImageIcon"`
	MaxPossible           utils.FlexInt `json:"MaxPossible"`
	NumAwarded            utils.FlexInt `json:"NumAwarded"`
	MostRecentAwardedDate string        `json:"MostRecentAwardedDate"`
}

type progressPage struct {
	Count   utils.FlexInt   `json:"Count"`
	Total   utils.FlexInt   `json:"Total"`
	Results []progressEntry `json:"Results"`
}

// GetLibrary lists every game the user has progress in.
func (p *Provider) GetLibrary(ctx context.Context) ([]models.Game, error) {
	var entries []progressEntry
	for offset := 0; ; {
		var page progressPage
		query := url.Values{"u": {p.user}, "c": {strconv.Itoa(pageSize)}, "o": {strconv.Itoa(offset)}}
		if err := p.get(ctx, "API_GetUserCompletionProgress.php", query, &page); err != nil {
			return nil, fmt.Errorf("completion progress: %w", err)
		}
		entries = append(entries, page.Results...)
		offset += len(page.Results)
		if len(page.Results) == 0 || offset >= int(page.Total) {
			break
		}
	}

	stubs := make([]stub, len(entries))
	for i, e := range entries {
		stubs[i] = stub{
			id:        int(e.GameID),
			title:     e.Title,
			icon:      e.ImageIcon,
			possible:  int(e.MaxPossible),
			lastTouch: e.MostRecentAwardedDate,
		}
	}
	return p.expand(ctx, stubs)
}

type recentEntry struct {
	GameID                  utils.FlexInt `json:"GameID"`
	Title                   string        `json:"Title"`
	ImageIcon               string        `json:"ImageIcon"`
	LastPlayed              string        `json:"LastPlayed"`
	NumPossibleAchievements utils.FlexInt `json:"NumPossibleAchievements"`
}

// RefreshLibrary fetches recently played games, skipping titles known to have no
// achievements.
func (p *Provider) RefreshLibrary(ctx context.Context) ([]models.Game, error) {
	var recent []recentEntry
	if err := p.get(ctx, "API_GetUserRecentlyPlayedGames.php", url.Values{"u": {p.user}, "c": {"50"}}, &recent); err != nil {
		return nil, fmt.Errorf("recently played games: %w", err)
	}

	stubs := make([]stub, 0, len(recent))
	for _, r := range recent {
		id := int(r.GameID)
		if known, ok := p.catalog.Get(models.GameID(models.PlatformRetroAchievements, strconv.Itoa(id))); ok && !known.HasAchievements() {
			continue
		}
		stubs = append(stubs, stub{
			id:        id,
			title:     r.Title,
			icon:      r.ImageIcon,
			possible:  int(r.NumPossibleAchievements),
			lastTouch: r.LastPlayed,
		})
	}
	return p.expand(ctx, stubs)
}

// RefreshTitle re-fetches one game with the user's progress.
func (p *Provider) RefreshTitle(ctx context.Context, id string) (models.Game, error) {
	gameID, err := strconv.Atoi(models.NativeID(id))
	if err != nil || gameID <= 0 {
		return models.Game{}, fmt.Errorf("%w: %s", provider.ErrTitleNotFound, id)
	}
	g, err := p.title(ctx, stub{id: gameID, possible: 1})
	if err != nil {
		return models.Game{}, err
	}
	if g.Name == "" {
		return models.Game{}, fmt.Errorf("%w: %s", provider.ErrTitleNotFound, id)
	}
	return g, nil
}

// stub is what the listing endpoints know about a game before its detail is fetched.
type stub struct {
	id        int
	title     string
	icon      string
	possible  int
	lastTouch string
}

func (p *Provider) expand(ctx context.Context, stubs []stub) ([]models.Game, error) {
	outcomes := executor.MapSafe(ctx, p.titles, stubs, p.title, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(stubs))
	for i, out := range outcomes {
		if out.Err != nil {
			p.logger.Debug("Skipping game", zap.Int("game_id", stubs[i].id), zap.Error(out.Err))
			continue
		}
		games = append(games, out.Value)
	}
	return games, nil
}

type gameInfo struct {
	ID                 utils.FlexInt   `json:"ID"`
	Title              string          `json:"Title"`
	ImageIcon          string          `json:"ImageIcon"`
	Developer          string          `json:"Developer"`
	Publisher          string          `json:"Publisher"`
	NumDistinctPlayers utils.FlexInt   `json:"NumDistinctPlayers"`
	Achievements       json.RawMessage `json:"Achievements"`
}

type achievementInfo struct {
	ID                 utils.FlexInt `json:"ID"`
	Title              string        `json:"Title"`
	Description        string        `json:"Description"`
	BadgeName          string        `json:"BadgeName"`
	NumAwarded         utils.FlexInt `json:"NumAwarded"`
	DisplayOrder       utils.FlexInt `json:"DisplayOrder"`
	DateEarned         string        `json:"DateEarned"`
	DateEarnedHardcore string        `json:"DateEarnedHardcore"`
}

func (p *Provider) title(ctx context.Context, s stub) (models.Game, error) {
	game := models.Game{
		ID:              models.GameID(models.PlatformRetroAchievements, strconv.Itoa(s.id)),
		Name:            s.title,
		Icon:            p.media(s.icon),
		Platform:        models.PlatformRetroAchievements,
		PlaytimeMinutes: -1,
		Achievements:    []models.Achievement{},
	}
	if t, ok := utils.ParseTime(s.lastTouch); ok {
		game.LastUpdated = t
	}
	if s.possible <= 0 {
		return game, nil
	}

	var info gameInfo
	query := url.Values{"u": {p.user}, "g": {strconv.Itoa(s.id)}}
	if err := p.get(ctx, "API_GetGameInfoAndUserProgress.php", query, &info); err != nil {
		return models.Game{}, fmt.Errorf("game %d: %w", s.id, err)
	}
	if info.Title != "" {
		game.Name = info.Title
	}
	if info.ImageIcon != "" {
		game.Icon = p.media(info.ImageIcon)
	}
	game.Author = info.Developer
	if game.Author == "" {
		game.Author = info.Publisher
	}

	achievements, err := decodeAchievements(info.Achievements)
	if err != nil {
		return models.Game{}, fmt.Errorf("game %d: %w", s.id, err)
	}

	players := int(info.NumDistinctPlayers)
	for _, a := range achievements {
		out := models.Achievement{
			ID:          strconv.Itoa(int(a.ID)),
			Title:       a.Title,
			Description: a.Description,
			Icon:        p.badge(a.BadgeName, true),
		}
		earned := a.DateEarnedHardcore
		if earned == "" {
			earned = a.DateEarned
		}
		if t, ok := utils.ParseTime(earned); ok {
			out.IsUnlocked = true
			out.UnlockedOn = &t
			out.Icon = p.badge(a.BadgeName, false)
			if t.After(game.LastUpdated) {
				game.LastUpdated = t
			}
		}
		if players > 0 {
			pct := float64(a.NumAwarded) * 100 / float64(players)
			out.RarityPercentage = &pct
		}
		game.Achievements = append(game.Achievements, out)
	}
	return game, nil
}

// decodeAchievements accepts the keyed object the API returns, or the empty array it
// returns for games without achievements, and orders the result by display order.
func decodeAchievements(raw json.RawMessage) ([]achievementInfo, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var byID map[string]achievementInfo
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, fmt.Errorf("decode achievements: %w", err)
	}
	out := make([]achievementInfo, 0, len(byID))
	for _, a := range byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (p *Provider) media(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return p.mediaURL + "/" + strings.TrimLeft(path, "/")
}

func (p *Provider) badge(name string, locked bool) string {
	if name == "" {
		return ""
	}
	if locked {
		return p.mediaURL + "/Badge/" + name + "_lock.png"
	}
	return p.mediaURL + "/Badge/" + name + ".png"
}

func (p *Provider) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	q := url.Values{"y": {p.apiKey}}
	for k, v := range query {
		q[k] = v
	}
	return provider.GetJSON(ctx, p.http, p.baseURL+"/"+endpoint, q, nil, out)
}
