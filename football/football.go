// Package football predicts football matches from API-Football data with an AI model.
package football

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
	"go.uber.org/zap"
)

// DefaultEndpoint is the API-Football base URL
const DefaultEndpoint = "https://v3.football.api-sports.io"

// Request parameters
const (
	League        = "39"
	HeadToHeadMax = 5
	SquadMax      = 20
)

const systemPrompt = `You are an expert football analyst. Analyze the provided match data and make predictions. Use real football knowledge, team form, head-to-head records, and squad quality. Provide realistic predictions based on the data. Possession should sum to 100. All numbers should be realistic match stats.`

// Team is a team search result
type Team struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	Country string `json:"country"`
}

// TeamRef identifies a team in a prediction request
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Pair is a per-team statistic
type Pair struct {
	Team1 float64 `json:"team1"`
	Team2 float64 `json:"team2"`
}

// Probability is the chance of each outcome
type Probability struct {
	Team1 float64 `json:"team1"`
	Draw  float64 `json:"draw"`
	Team2 float64 `json:"team2"`
}

// Player is a predicted standout player
type Player struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Reason   string `json:"reason"`
}

// BestPlayers are the predicted standout players of each team
type BestPlayers struct {
	Team1 Player `json:"team1"`
	Team2 Player `json:"team2"`
}

// Prediction is a structured match prediction
type Prediction struct {
	Winner         string      `json:"winner"`
	WinProbability Probability `json:"winProbability"`
	Possession     Pair        `json:"possession"`
	Passes         Pair        `json:"passes"`
	Shots          Pair        `json:"shots"`
	ShotsOnTarget  Pair        `json:"shotsOnTarget"`
	PredictedScore Pair        `json:"predictedScore"`
	BestPlayer     BestPlayers `json:"bestPlayer"`
	Analysis       string      `json:"analysis"`
}

// Client fetches football data and predicts matches
type Client struct {
	endpoint   string
	key        string
	caller     chatbot.ToolCaller
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient returns a Client for the API at endpoint, using caller for predictions. A nil logger discards logs.
func NewClient(endpoint, key string, caller chatbot.ToolCaller, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		key:        key,
		caller:     caller,
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}
}

// envelope is the API-Football response wrapper
type envelope struct {
	Response json.RawMessage `json:"response"`
}

func (c *Client) fetch(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	if c.key == "" {
		return nil, &api.Error{Description: "Football data is not configured", Type: api.ErrorTypeConfiguration, Err: errors.New("football key is not configured")}
	}

	v := url.Values{}
	for k, p := range params {
		v.Set(k, p)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path+"?"+v.Encode(), nil)
	if err != nil {
		return nil, &api.Error{Description: "Could not create football request", Type: api.ErrorTypeServer, Err: err}
	}
	req.Header.Set("x-apisports-key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &api.Error{Description: "Football API error", Type: api.ErrorTypeProvider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &api.Error{Description: "Football API error", Type: api.ErrorTypeProvider, Err: fmt.Errorf("API-Football error %d: %s", resp.StatusCode, string(body))}
	}

	var env envelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &api.Error{Description: "Football API error", Type: api.ErrorTypeProvider, Err: fmt.Errorf("could not decode %s: %w", path, err)}
	}

	return env.Response, nil
}

// SearchTeams returns the teams matching name
func (c *Client) SearchTeams(ctx context.Context, name string) ([]Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &api.Error{Description: "Team name is required", Type: api.ErrorTypeUser, Err: errors.New("name must not be empty")}
	}

	raw, err := c.fetch(ctx, "/teams", map[string]string{"search": name})
	if err != nil {
		return nil, err
	}

	var results []struct {
		Team Team `json:"team"`
	}
	if len(raw) > 0 {
		if err = json.Unmarshal(raw, &results); err != nil {
			return nil, &api.Error{Description: "Football API error", Type: api.ErrorTypeProvider, Err: fmt.Errorf("could not decode teams: %w", err)}
		}
	}

	teams := make([]Team, len(results))
	for i, r := range results {
		teams[i] = r.Team
	}
	return teams, nil
}

type teamContext struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Stats json.RawMessage `json:"stats"`
}

// MatchContext is the data the model predicts from. Missing data is null or empty.
type MatchContext struct {
	Team1      teamContext       `json:"team1"`
	Team2      teamContext       `json:"team2"`
	HeadToHead []json.RawMessage `json:"headToHead"`
	Team1Squad []json.RawMessage `json:"team1Squad"`
	Team2Squad []json.RawMessage `json:"team2Squad"`
}

// Context fetches team statistics, head-to-head results and squads concurrently.
// Each failed fetch is logged and treated as missing data.
func (c *Client) Context(ctx context.Context, team1, team2 TeamRef) *MatchContext {
	season := strconv.Itoa(c.now().Year())
	id1, id2 := strconv.Itoa(team1.ID), strconv.Itoa(team2.ID)

	requests := []struct {
		path   string
		params map[string]string
	}{
		{"/teams/statistics", map[string]string{"team": id1, "season": season, "league": League}},
		{"/teams/statistics", map[string]string{"team": id2, "season": season, "league": League}},
		{"/fixtures/headtohead", map[string]string{"h2h": id1 + "-" + id2, "last": strconv.Itoa(HeadToHeadMax)}},
		{"/players/squads", map[string]string{"team": id1}},
		{"/players/squads", map[string]string{"team": id2}},
	}

	results := make([]json.RawMessage, len(requests))
	var wg sync.WaitGroup
	for i, r := range requests {
		wg.Add(1)
		go func(idx int, path string, params map[string]string) {
			defer wg.Done()
			raw, err := c.fetch(ctx, path, params)
			if err != nil {
				c.logger.Warn("football data unavailable", zap.String("path", path), zap.Any("params", params), zap.Error(err))
				return
			}
			results[idx] = raw
		}(i, r.path, r.params)
	}
	wg.Wait()

	return &MatchContext{
		Team1:      teamContext{ID: team1.ID, Name: team1.Name, Stats: nullIfEmpty(results[0])},
		Team2:      teamContext{ID: team2.ID, Name: team2.Name, Stats: nullIfEmpty(results[1])},
		HeadToHead: list(results[2], HeadToHeadMax),
		Team1Squad: squad(results[3]),
		Team2Squad: squad(results[4]),
	}
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// list decodes raw as a JSON array, keeping at most n elements
func list(raw json.RawMessage, n int) []json.RawMessage {
	items := make([]json.RawMessage, 0)
	if len(raw) == 0 {
		return items
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return make([]json.RawMessage, 0)
	}
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// squad returns at most SquadMax players of the first squad in raw
func squad(raw json.RawMessage) []json.RawMessage {
	players := make([]json.RawMessage, 0)
	if len(raw) == 0 {
		return players
	}

	var squads []struct {
		Players []json.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(raw, &squads); err != nil || len(squads) == 0 || squads[0].Players == nil {
		return players
	}

	players = squads[0].Players
	if len(players) > SquadMax {
		players = players[:SquadMax]
	}
	return players
}

// Predict returns a prediction for the match between team1 and team2. Both team IDs are required.
func (c *Client) Predict(ctx context.Context, team1, team2 TeamRef) (*Prediction, error) {
	if team1.ID == 0 || team2.ID == 0 {
		return nil, &api.Error{Description: "Both team IDs required", Type: api.ErrorTypeUser, Err: errors.New("team id must not be empty")}
	}
	if c.key == "" {
		return nil, &api.Error{Description: "Football data is not configured", Type: api.ErrorTypeConfiguration, Err: errors.New("football key is not configured")}
	}

	matchContext, err := json.MarshalIndent(c.Context(ctx, team1, team2), "", "  ")
	if err != nil {
		return nil, &api.Error{Description: "Could not encode match data", Type: api.ErrorTypeServer, Err: err}
	}

	messages := []chatbot.Message{
		chatbot.TextMessage(chatbot.RoleSystem, systemPrompt),
		chatbot.TextMessage(chatbot.RoleUser, fmt.Sprintf("Predict the match between %s and %s. Here is the available data:\n\n%s", team1.Name, team2.Name, matchContext)),
	}

	prediction := new(Prediction)
	if err = c.caller.CallTool(ctx, messages, chatbot.MatchPredictionTool(), prediction); err != nil {
		return nil, err
	}

	return prediction, nil
}
