package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL          = "https://api.tvmaze.com"
	DefaultMaxExecutionTime = time.Minute
	// PageSize is the number of ids TVMaze puts on one /shows page
	PageSize = 250
)

var ErrPageNotFound = errors.New("tvmaze page not found")

// Show is the subset of the TVMaze show resource the catalog stores
type Show struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Premiered string   `json:"premiered"`
	Genres    []string `json:"genres"`
}

type Config struct {
	BaseURL          string
	MaxExecutionTime time.Duration
	RequestTimeout   time.Duration
	HTTPClient       *http.Client
}

type Client struct {
	baseURL      string
	http         *http.Client
	maxExecution time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxExecutionTime <= 0 {
		cfg.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         cfg.HTTPClient,
		maxExecution: cfg.MaxExecutionTime,
	}
}

// FetchShows reads /shows pages starting at startPage until a page is empty,
// the API answers 404, a request fails, or the execution budget is spent.
// Whatever was collected before the stop is returned; only cancellation of
// ctx is reported as an error.
func (c *Client) FetchShows(ctx context.Context, startPage int) ([]Show, error) {
	if startPage < 0 {
		startPage = 0
	}

	started := time.Now()
	logger := log.With().Str("component", "tvmaze_client").Logger()
	logger.Info().Int("start_page", startPage).Msg("Fetching tv shows from TVMaze")

	var result []Show
	page := startPage

	for {
		shows, err := c.FetchPage(ctx, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			if !errors.Is(err, ErrPageNotFound) {
				logger.Error().Err(err).Int("page", page).Msg("TVMaze request failed")
			}
			break
		}

		if len(shows) == 0 {
			break
		}

		result = append(result, shows...)
		page++

		if time.Since(started) >= c.maxExecution {
			logger.Warn().Dur("budget", c.maxExecution).Msg("TVMaze fetch budget spent")
			break
		}
	}

	logger.Info().
		Int("pages", page-startPage).
		Int("records", len(result)).
		Msg("Fetched tv shows from TVMaze")

	return result, nil
}

// FetchPage reads one /shows page. A 404 (past the last page) returns ErrPageNotFound.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Show, error) {
	endpoint := c.baseURL + "/shows?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: page %d", ErrPageNotFound, page)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	var shows []Show
	if err := json.NewDecoder(resp.Body).Decode(&shows); err != nil {
		return nil, fmt.Errorf("failed to decode page %d: %w", page, err)
	}

	return shows, nil
}
