package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movi/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	tmdbAPIURL         = "https://api.themoviedb.org/3"
	tmdbImageBase      = "https://image.tmdb.org/t/p"
	tmdbPosterSize     = "w342"
	tmdbTimeout        = 15 * time.Second
	tmdbRateLimit      = 25 // requests per second
	movieCachePrefix   = "movie:details:"
	movieCacheTTL      = 24 * time.Hour
	maxMovieLookups    = 10 // concurrent outbound calls per bulk enrichment
	maxTMDBResponseLen = 5 * 1024 * 1024
)

// TMDBClient talks to the film catalog. Lookups are single-attempt: a failed
// or timed-out call is reported to the caller, which treats it as absence in
// enrichment paths.
type TMDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	limiter    *rate.Limiter
	redis      *redis.Client
	group      singleflight.Group
}

type TMDBConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *logrus.Logger
	Redis   *redis.Client
}

func NewTMDBClient(cfg *TMDBConfig) *TMDBClient {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = tmdbAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = tmdbTimeout
	}
	return &TMDBClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
		limiter:    rate.NewLimiter(rate.Limit(tmdbRateLimit), tmdbRateLimit),
		redis:      cfg.Redis,
	}
}

// Enabled reports whether an API key is configured.
func (c *TMDBClient) Enabled() bool {
	return c.apiKey != ""
}

// ParseMovieID validates a user-supplied movie id. TMDB ids are positive
// signed 32-bit integers; anything else is a bad request.
func ParseMovieID(s string) (int, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid movie id %q: %w", s, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid movie id %d: must be positive", id)
	}
	return int(id), nil
}

func (c *TMDBClient) requestURL(path string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())
}

func (c *TMDBClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTMDBResponseLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("TMDB request failed")
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
	return body, nil
}

func posterURL(path string) *string {
	if path == "" {
		return nil
	}
	u := fmt.Sprintf("%s/%s%s", tmdbImageBase, tmdbPosterSize, path)
	return &u
}

func normalizeMovie(r models.TMDBMovie) models.Movie {
	title := r.Title
	if title == "" {
		title = r.OriginalTitle
	}
	year := ""
	if len(r.ReleaseDate) >= 4 {
		year = r.ReleaseDate[:4]
	}
	var release *string
	if r.ReleaseDate != "" {
		d := r.ReleaseDate
		release = &d
	}
	return models.Movie{
		ID:          r.ID,
		Title:       title,
		Year:        year,
		Overview:    r.Overview,
		PosterURL:   posterURL(r.PosterPath),
		ReleaseDate: release,
	}
}

func searchParams(query, page string) url.Values {
	if page == "" {
		page = "1"
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", page)
	return params
}

// SearchMovies searches by name and returns the trimmed payload shape.
func (c *TMDBClient) SearchMovies(ctx context.Context, query, page string) (*models.MovieSearchResult, error) {
	body, err := c.get(ctx, "/search/movie", searchParams(query, page))
	if err != nil {
		return nil, err
	}

	var raw models.TMDBSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]models.Movie, 0, len(raw.Results))
	for _, r := range raw.Results {
		items = append(items, normalizeMovie(r))
	}
	pageNum := raw.Page
	if pageNum == 0 {
		pageNum = 1
	}
	totalPages := raw.TotalPages
	if totalPages == 0 {
		totalPages = 1
	}
	return &models.MovieSearchResult{
		Query:        query,
		Page:         pageNum,
		TotalPages:   totalPages,
		TotalResults: raw.TotalResults,
		Items:        items,
	}, nil
}

// SearchMoviesRaw returns the untrimmed TMDB search payload.
func (c *TMDBClient) SearchMoviesRaw(ctx context.Context, query, page string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/search/movie", searchParams(query, page))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// MovieDetailsRaw returns the untrimmed TMDB title payload, optionally with
// appended sub-resources (credits, watch/providers, videos).
func (c *TMDBClient) MovieDetailsRaw(ctx context.Context, id int, appendTo string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	if appendTo != "" {
		params.Set("append_to_response", appendTo)
	}
	body, err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetMovie fetches a single movie by id and returns normalized fields.
// Concurrent callers for the same id share one request, and results are
// cached in Redis when it is configured.
func (c *TMDBClient) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	cacheKey := movieCachePrefix + strconv.Itoa(id)
	if c.redis != nil {
		cached, err := c.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var movie models.Movie
			decodeErr := json.Unmarshal([]byte(cached), &movie)
			if decodeErr == nil {
				return &movie, nil
			}
			c.logger.WithError(decodeErr).Warn("Failed to unmarshal cached movie")
		} else if err != redis.Nil {
			c.logger.WithError(err).Warn("Failed to read from Redis")
		}
	}

	val, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		params := url.Values{}
		params.Set("language", "en-US")
		body, err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params)
		if err != nil {
			return nil, err
		}
		var raw models.TMDBMovie
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode movie response: %w", err)
		}
		movie := normalizeMovie(raw)
		return &movie, nil
	})
	if err != nil {
		return nil, err
	}
	movie := val.(*models.Movie)

	if c.redis != nil {
		if data, err := json.Marshal(movie); err == nil {
			if err := c.redis.Set(ctx, cacheKey, data, movieCacheTTL).Err(); err != nil {
				c.logger.WithError(err).Warn("Failed to write movie to cache")
			}
		}
	}
	return movie, nil
}

// MoviesByIDs fetches several movies with at most maxMovieLookups concurrent
// outbound calls. The result preserves the input order regardless of
// completion order; ids whose lookup fails are omitted rather than failing
// the batch.
func (c *TMDBClient) MoviesByIDs(ctx context.Context, ids []int) []models.Movie {
	results := make([]*models.Movie, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(maxMovieLookups)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			movie, err := c.GetMovie(ctx, id)
			if err != nil {
				c.logger.WithError(err).WithField("movie_id", id).Debug("Skipping failed movie lookup")
				return nil
			}
			results[i] = movie
			return nil
		})
	}
	_ = g.Wait()

	items := make([]models.Movie, 0, len(ids))
	for _, m := range results {
		if m != nil {
			items = append(items, *m)
		}
	}
	return items
}
