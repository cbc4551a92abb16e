package seedgames

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
)

// Client submits generated schedules to a running service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client against the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// gamePayload mirrors the POST /games wire schema.
type gamePayload struct {
	GameID      string `json:"game_id"`
	League      string `json:"league"`
	Season      int    `json:"season"`
	Week        int    `json:"week"`
	Date        string `json:"date"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
	Completed   bool   `json:"completed"`
	NeutralSite bool   `json:"neutral_site"`
}

// SubmitGames posts one batch of games.
func (c *Client) SubmitGames(ctx context.Context, games []model.Game) error {
	payload := make([]gamePayload, 0, len(games))
	for _, g := range games {
		payload = append(payload, gamePayload{
			GameID:      g.ID,
			League:      g.League,
			Season:      g.Season,
			Week:        g.Week,
			Date:        g.Date.UTC().Format(time.RFC3339),
			HomeTeam:    g.HomeTeamID,
			AwayTeam:    g.AwayTeamID,
			HomeScore:   g.HomeScore,
			AwayScore:   g.AwayScore,
			Completed:   g.Completed,
			NeutralSite: g.NeutralSite,
		})
	}

	var resp struct {
		Stored int `json:"stored"`
	}
	if err := c.post(ctx, "/games", payload, &resp); err != nil {
		return fmt.Errorf("submit %d games: %w", len(games), err)
	}
	return nil
}

// TriggerReplay runs a synchronous replay for one league+season.
func (c *Client) TriggerReplay(ctx context.Context, league string, season int) error {
	body := map[string]any{"league": league, "season": season, "sync": true}
	if err := c.post(ctx, "/replays", body, nil); err != nil {
		return fmt.Errorf("replay %s/%d: %w", league, season, err)
	}
	return nil
}

// RankingRow mirrors the GET /rankings read shape.
type RankingRow struct {
	TeamID     string  `json:"team_id"`
	Week       int     `json:"week"`
	Rating     float64 `json:"rating"`
	GamesCount int     `json:"games_count"`
}

// FetchRankings retrieves a season's rankings, best first.
func (c *Client) FetchRankings(ctx context.Context, league string, season, limit int) ([]RankingRow, error) {
	url := fmt.Sprintf("%s/rankings?league=%s&season=%d&limit=%d", c.baseURL, league, season, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rankings request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rankings: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rankings: unexpected status %d", resp.StatusCode)
	}
	var rows []RankingRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rankings: %w", err)
	}
	return rows, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, string(detail))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
