package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"movi/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	openLibraryAPIURL = "https://openlibrary.org"
	coverImageBase    = "https://covers.openlibrary.org/b/id"
	openLibraryLimit  = 5 // requests per second, keeps the catalog happy
	bookTimeout       = 15 * time.Second
	bookCachePrefix   = "book:details:"
	bookCacheTTL      = 24 * time.Hour
	maxOLResponseLen  = 5 * 1024 * 1024
)

// OpenLibraryClient talks to the bibliographic catalog. No API key is
// required. Lookups are single-attempt like the film client.
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
	limiter    *rate.Limiter
	redis      *redis.Client
	group      singleflight.Group
}

type OpenLibraryConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logrus.Logger
	Redis   *redis.Client
}

func NewOpenLibraryClient(cfg *OpenLibraryConfig) *OpenLibraryClient {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openLibraryAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = bookTimeout
	}
	return &OpenLibraryClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
		limiter:    rate.NewLimiter(rate.Limit(openLibraryLimit), openLibraryLimit),
		redis:      cfg.Redis,
	}
}

func (c *OpenLibraryClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOLResponseLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("OpenLibrary request failed")
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
	return body, nil
}

func coverURLFromID(coverID int) *string {
	if coverID == 0 {
		return nil
	}
	u := fmt.Sprintf("%s/%d-M.jpg", coverImageBase, coverID)
	return &u
}

// NormalizeWorkID strips the '/works/' prefix so stored book ids and search
// result keys resolve to the same identifier.
func NormalizeWorkID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "/works/")
}

// SearchBooks searches by title and returns up to n normalized results.
func (c *OpenLibraryClient) SearchBooks(ctx context.Context, title string, n int) (*models.BookSearchResult, error) {
	if n < 1 {
		n = 20
	}

	params := url.Values{}
	params.Set("title", strings.ToLower(strings.Join(strings.Fields(title), " ")))
	body, err := c.get(ctx, "/search.json", params)
	if err != nil {
		return nil, err
	}

	var raw models.OLSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := raw.Docs
	if len(docs) > n {
		docs = docs[:n]
	}
	items := make([]models.Book, 0, len(docs))
	for _, doc := range docs {
		var year *int
		if doc.FirstPublishYear != 0 {
			y := doc.FirstPublishYear
			year = &y
		}
		items = append(items, models.Book{
			ID:       doc.Key,
			Title:    doc.Title,
			Authors:  doc.AuthorName,
			CoverURL: coverURLFromID(doc.CoverID),
			Year:     year,
		})
	}
	return &models.BookSearchResult{Query: title, Count: len(items), Items: items}, nil
}

// GetBook fetches a work by id and returns normalized fields. Author names
// come straight from the payload when present (search shape) and are resolved
// through per-author lookups otherwise (works shape); failed author lookups
// are skipped instead of failing the book.
func (c *OpenLibraryClient) GetBook(ctx context.Context, id string) (*models.Book, error) {
	workID := NormalizeWorkID(id)
	if workID == "" {
		return nil, fmt.Errorf("empty book id")
	}

	cacheKey := bookCachePrefix + workID
	if c.redis != nil {
		cached, err := c.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var book models.Book
			decodeErr := json.Unmarshal([]byte(cached), &book)
			if decodeErr == nil {
				return &book, nil
			}
			c.logger.WithError(decodeErr).Warn("Failed to unmarshal cached book")
		} else if err != redis.Nil {
			c.logger.WithError(err).Warn("Failed to read from Redis")
		}
	}

	val, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		body, err := c.get(ctx, fmt.Sprintf("/works/%s.json", workID), nil)
		if err != nil {
			return nil, err
		}
		var work models.OLWork
		if err := json.Unmarshal(body, &work); err != nil {
			return nil, fmt.Errorf("failed to decode work response: %w", err)
		}

		var coverURL *string
		if len(work.Covers) > 0 {
			coverURL = coverURLFromID(work.Covers[0])
		}
		var year *int
		if work.FirstPublishYear != 0 {
			y := work.FirstPublishYear
			year = &y
		}
		return &models.Book{
			ID:       workID,
			Title:    work.Title,
			Authors:  c.authorNames(ctx, &work),
			CoverURL: coverURL,
			Year:     year,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	book := val.(*models.Book)

	if c.redis != nil {
		if data, err := json.Marshal(book); err == nil {
			if err := c.redis.Set(ctx, cacheKey, data, bookCacheTTL).Err(); err != nil {
				c.logger.WithError(err).Warn("Failed to write book to cache")
			}
		}
	}
	return book, nil
}

func (c *OpenLibraryClient) authorNames(ctx context.Context, work *models.OLWork) []string {
	if len(work.AuthorName) > 0 {
		return work.AuthorName
	}

	var names []string
	for _, entry := range work.Authors {
		key := strings.TrimSpace(entry.Author.Key) // '/authors/OL...A'
		if key == "" {
			continue
		}
		body, err := c.get(ctx, fmt.Sprintf("%s.json", key), nil)
		if err != nil {
			c.logger.WithError(err).WithField("author", key).Debug("Skipping failed author lookup")
			continue
		}
		var author models.OLAuthor
		if err := json.Unmarshal(body, &author); err != nil {
			continue
		}
		if author.Name != "" {
			names = append(names, author.Name)
		}
	}
	return names
}
