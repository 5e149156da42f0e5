package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"achievement-hub/core/models"

	"github.com/arbovm/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Lookup resolves a completion-time estimate for a game name.
// A nil estimate with a nil error means no confident match was found.
type Lookup interface {
	GetGameData(ctx context.Context, name string) (*models.Estimate, error)
}

const searchPath = "/api/search"

// Client queries the HowLongToBeat search endpoint.
type Client struct {
	baseURL       string
	minSimilarity float64
	http          *http.Client
	group         singleflight.Group
	logger        *zap.Logger
	now           func() time.Time
}

// NewClient creates a HowLongToBeat client from the configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	minSim := cfg.MinSimilarity
	if minSim <= 0 || minSim > 1 {
		minSim = 0.75
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		minSimilarity: minSim,
		http:          &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:        logger,
		now:           time.Now,
	}
}

type searchRequest struct {
	SearchType  string   `json:"searchType"`
	SearchTerms []string `json:"searchTerms"`
	SearchPage  int      `json:"searchPage"`
	Size        int      `json:"size"`
}

type searchResult struct {
	GameID   int    `json:"game_id"`
	GameName string `json:"game_name"`
	// Times are reported in seconds.
	CompMain int `json:"comp_main"`
	CompPlus int `json:"comp_plus"`
	Comp100  int `json:"comp_100"`
	CompAll  int `json:"comp_all"`
}

type searchResponse struct {
	Data []searchResult `json:"data"`
}

// GetGameData searches for name and returns the estimate of the closest result.
// Concurrent calls for the same normalized name share one request. The shared request is
// bounded by the client timeout only, and each caller stops waiting when its own ctx ends.
func (c *Client) GetGameData(ctx context.Context, name string) (*models.Estimate, error) {
	query := Normalize(name)
	if query == "" {
		return nil, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(query, func() (any, error) {
		return c.search(shared, query)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	est, _ := res.Val.(*models.Estimate)
	if est == nil {
		return nil, nil
	}
	// Each caller gets its own copy.
	out := *est
	return &out, nil
}

func (c *Client) search(ctx context.Context, query string) (*models.Estimate, error) {
	body, err := json.Marshal(searchRequest{
		SearchType:  "games",
		SearchTerms: strings.Fields(query),
		SearchPage:  1,
		Size:        20,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", c.baseURL)
	req.Header.Set("User-Agent", "achievement-hub")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: unexpected status %d", query, resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("search %q: decode: %w", query, err)
	}

	best, score := bestMatch(query, decoded.Data)
	if best == nil || score < c.minSimilarity {
		c.logger.Debug("No confident estimate match",
			zap.String("query", query),
			zap.Float64("similarity", score),
		)
		return nil, nil
	}

	return &models.Estimate{
		MainStory:      hours(best.CompMain),
		MainPlusExtras: hours(best.CompPlus),
		Completionist:  hours(best.Comp100),
		AllStyles:      hours(best.CompAll),
		FetchedAt:      c.now().UTC(),
	}, nil
}

func bestMatch(query string, results []searchResult) (*searchResult, float64) {
	var best *searchResult
	bestScore := -1.0
	for i := range results {
		score := Similarity(query, Normalize(results[i].GameName))
		if score > bestScore {
			best, bestScore = &results[i], score
		}
	}
	return best, bestScore
}

// Similarity returns 1 minus the edit distance normalized by the longer string, compared
// case-insensitively. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.Distance(a, b))/float64(longest)
}

// Normalize strips trademark symbols and punctuation noise from a store title and
// collapses whitespace.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '™' || r == '®' || r == '©':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == ':' || r == '-' || r == '_' || r == '/':
			b.WriteRune(' ')
		case r == '\'' || r == '&' || r == '.':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func hours(seconds int) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(seconds) / 3600
}
