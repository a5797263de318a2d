package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/korylprince/jobmatch-server/api"
	"go.uber.org/zap"
)

// DefaultEndpoint is the JSearch API base URL
const DefaultEndpoint = "https://jsearch.p.rapidapi.com"

// ErrorMessage is returned to users when the provider fails
const ErrorMessage = "Job search API error"

// Response is a job search result page
type Response struct {
	Status    string `json:"status,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      []Job  `json:"data"`
}

// Searcher searches for jobs
type Searcher interface {
	Search(ctx context.Context, q Query) (*Response, error)
}

// Client is a JSearch client
type Client struct {
	endpoint   string
	host       string
	key        string
	cache      *Cache
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a Client for the API at endpoint. A nil cache disables caching and a nil logger discards logs.
func NewClient(endpoint, key string, cache *Cache, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	host := ""
	if u, err := url.Parse(endpoint); err == nil {
		host = u.Host
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   endpoint,
		host:       host,
		key:        key,
		cache:      cache,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Search returns the jobs matching q
func (c *Client) Search(ctx context.Context, q Query) (*Response, error) {
	if c.key == "" {
		return nil, &api.Error{Description: "Job search is not configured", Type: api.ErrorTypeConfiguration, Err: errors.New("job search key is not configured")}
	}

	q = q.Normalize()
	key := q.Key()

	if c.cache != nil {
		if resp, ok := c.cache.Get(key); ok {
			c.logger.Debug("job search cache hit", zap.String("query", key))
			return resp, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search?"+key, nil)
	if err != nil {
		return nil, &api.Error{Description: "Could not create job search request", Type: api.ErrorTypeServer, Err: err}
	}
	req.Header.Set("x-rapidapi-key", c.key)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &api.Error{Description: ErrorMessage, Type: api.ErrorTypeProvider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("job search API error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return nil, &api.Error{Description: ErrorMessage, Type: api.ErrorTypeProvider, Err: fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))}
	}

	result := new(Response)
	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, &api.Error{Description: ErrorMessage, Type: api.ErrorTypeProvider, Err: fmt.Errorf("could not decode response: %w", err)}
	}
	if result.Data == nil {
		result.Data = make([]Job, 0)
	}

	if c.cache != nil {
		c.cache.Put(key, result)
	}

	return result, nil
}
