package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovieSearchRequiresName(t *testing.T) {
	h := &MovieHandler{}

	req := httptest.NewRequest(http.MethodGet, "/getmovies", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing name", decodeBody(t, rec)["error"])
}

func TestMovieSearchRawRequiresQuery(t *testing.T) {
	h := &MovieHandler{}

	req := httptest.NewRequest(http.MethodGet, "/api/search/movie", nil)
	rec := httptest.NewRecorder()
	h.SearchRaw(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing q", decodeBody(t, rec)["error"])
}

func TestWatchedByQueryValidation(t *testing.T) {
	h := &MovieHandler{}

	req := httptest.NewRequest(http.MethodGet, "/getmoviesfromuser", nil)
	rec := httptest.NewRecorder()
	h.WatchedByQuery(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_id", decodeBody(t, rec)["error"])

	req = httptest.NewRequest(http.MethodGet, "/getmoviesfromuser?id=nope", nil)
	rec = httptest.NewRecorder()
	h.WatchedByQuery(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decodeBody(t, rec)["error"])
}

func TestMovieDetailsRejectsBadID(t *testing.T) {
	h := &MovieHandler{}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/title/movie/abc", nil),
		map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	h.Details(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_movie_id", decodeBody(t, rec)["error"])
}

func TestMovieMembershipRejectsBadIDs(t *testing.T) {
	h := &MovieHandler{}

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/watched/user/nope/movie/603", nil),
		map[string]string{"userId": "nope", "movieId": "603"})
	rec := httptest.NewRecorder()
	h.AddWatchedMovie(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_user_id", decodeBody(t, rec)["error"])

	req = withURLParams(httptest.NewRequest(http.MethodPost, "/watched/user/64f000000000000000000001/movie/-1", nil),
		map[string]string{"userId": "64f000000000000000000001", "movieId": "-1"})
	rec = httptest.NewRecorder()
	h.AddWatchedMovie(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_movie_id", decodeBody(t, rec)["error"])
}
