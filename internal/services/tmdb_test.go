package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTMDBClient(t *testing.T, handler http.HandlerFunc) *TMDBClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewTMDBClient(&TMDBConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  testLogger(),
	})
}

func TestParseMovieID(t *testing.T) {
	id, err := ParseMovieID("603")
	require.NoError(t, err)
	assert.Equal(t, 603, id)

	for _, bad := range []string{"", "abc", "-1", "0", "12.5", "99999999999999999999"} {
		_, err := ParseMovieID(bad)
		assert.Error(t, err, "id %q", bad)
	}
}

func TestSearchMoviesNormalizes(t *testing.T) {
	client := newTestTMDBClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "the matrix", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 1,
			"total_pages": 3,
			"total_results": 42,
			"results": [
				{"id": 603, "title": "The Matrix", "overview": "o", "poster_path": "/p.jpg", "release_date": "1999-03-31"},
				{"id": 9, "original_title": "Untitled", "release_date": ""}
			]
		}`))
	})

	result, err := client.SearchMovies(context.Background(), "the matrix", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 42, result.TotalResults)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, 603, first.ID)
	assert.Equal(t, "The Matrix", first.Title)
	assert.Equal(t, "1999", first.Year)
	require.NotNil(t, first.PosterURL)
	assert.True(t, strings.HasSuffix(*first.PosterURL, "/p.jpg"))

	// Falls back to the original title; empty release date yields no year.
	second := result.Items[1]
	assert.Equal(t, "Untitled", second.Title)
	assert.Equal(t, "", second.Year)
	assert.Nil(t, second.PosterURL)
	assert.Nil(t, second.ReleaseDate)
}

func TestSearchMoviesDefaultsEmptyPaging(t *testing.T) {
	client := newTestTMDBClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})

	result, err := client.SearchMovies(context.Background(), "nothing", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 1, result.TotalPages)
	assert.Empty(t, result.Items)
}

func TestGetUpstreamError(t *testing.T) {
	client := newTestTMDBClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetMovie(context.Background(), 999)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.Status)
}

func TestGetWithoutKey(t *testing.T) {
	client := NewTMDBClient(&TMDBConfig{Logger: testLogger()})
	assert.False(t, client.Enabled())

	_, err := client.GetMovie(context.Background(), 603)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMoviesByIDsPreservesOrderAndOmitsFailures(t *testing.T) {
	client := newTestTMDBClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			w.Write([]byte(`{"id": 603, "title": "The Matrix", "release_date": "1999-03-31"}`))
		case "/movie/604":
			w.Write([]byte(`{"id": 604, "title": "The Matrix Reloaded", "release_date": "2003-05-15"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	items := client.MoviesByIDs(context.Background(), []int{604, 999, 603})
	require.Len(t, items, 2)
	assert.Equal(t, 604, items[0].ID)
	assert.Equal(t, 603, items[1].ID)
}

func TestMovieDetailsRawAppendsSubResources(t *testing.T) {
	client := newTestTMDBClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "credits,watch/providers,videos", r.URL.Query().Get("append_to_response"))
		w.Write([]byte(`{"id": 603, "credits": {}}`))
	})

	raw, err := client.MovieDetailsRaw(context.Background(), 603, "credits,watch/providers,videos")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 603, "credits": {}}`, string(raw))
}

func TestGetMovieCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var upstreamHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamHits++
		w.Write([]byte(`{"id": 603, "title": "The Matrix", "release_date": "1999-03-31"}`))
	}))
	t.Cleanup(server.Close)
	client := NewTMDBClient(&TMDBConfig{BaseURL: server.URL, APIKey: "test-key", Logger: testLogger(), Redis: rdb})

	first, err := client.GetMovie(context.Background(), 603)
	require.NoError(t, err)
	second, err := client.GetMovie(context.Background(), 603)
	require.NoError(t, err)

	assert.Equal(t, 1, upstreamHits)
	assert.Equal(t, first.Title, second.Title)
	assert.True(t, mr.Exists("movie:details:603"))
}

func TestGetMovieLogsCacheDecodeFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("movie:details:603", "{not json"))
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log, hook := logtest.NewNullLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 603, "title": "The Matrix"}`))
	}))
	t.Cleanup(server.Close)
	client := NewTMDBClient(&TMDBConfig{BaseURL: server.URL, APIKey: "test-key", Logger: log, Redis: rdb})

	movie, err := client.GetMovie(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", movie.Title)

	var logged error
	for _, entry := range hook.Entries {
		if entry.Message == "Failed to unmarshal cached movie" {
			logged, _ = entry.Data[logrus.ErrorKey].(error)
		}
	}
	require.Error(t, logged, "warning must carry the decode error, not the cache read error")
	assert.Contains(t, logged.Error(), "invalid character")
}
