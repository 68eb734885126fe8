package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"movi/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{"review not found", services.ErrReviewNotFound, http.StatusNotFound, "review_not_found"},
		{"book not found", services.ErrBookNotFound, http.StatusNotFound, "book_not_found"},
		{"movie not found", services.ErrMovieNotFound, http.StatusNotFound, "movie_not_found"},
		{"duplicate entry", services.ErrDuplicateEntry, http.StatusConflict, "duplicate_entry"},
		{"email taken", services.ErrEmailTaken, http.StatusBadRequest, "email_taken"},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"missing body", services.ErrMissingBody, http.StatusBadRequest, "missing_body"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "server"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeBody(t, rec)["error"])
		})
	}
}

func TestRespondRatingOutOfRangeCarriesBounds(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, services.ErrRatingOutOfRange)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "rating_out_of_range", body["error"])
	assert.EqualValues(t, 1, body["min"])
	assert.EqualValues(t, 10, body["max"])
}

func TestRespondUpstreamErrorCarriesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, &services.UpstreamError{Status: 404})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "upstream", body["error"])
	assert.EqualValues(t, 404, body["status"])
}

func TestRespondPartialWriteCarriesReviewID(t *testing.T) {
	reviewID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	respondServiceError(rec, &services.PartialWriteError{
		Step:     "read list update",
		ReviewID: reviewID,
		Err:      errors.New("write failed"),
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "user_update_failed", body["error"])
	assert.Equal(t, reviewID.Hex(), body["reviewId"])
}

func TestParseObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	parsed, err := parseObjectID(" " + oid.Hex() + " ")
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := parseObjectID(bad)
		assert.Error(t, err, "id %q", bad)
	}
}

func TestQueryLimit(t *testing.T) {
	newReq := func(q string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/feed"+q, nil)
	}

	assert.EqualValues(t, 50, queryLimit(newReq(""), 50, 500))
	assert.EqualValues(t, 50, queryLimit(newReq("?limit=abc"), 50, 500))
	assert.EqualValues(t, 25, queryLimit(newReq("?limit=25"), 50, 500))
	assert.EqualValues(t, 1, queryLimit(newReq("?limit=0"), 50, 500))
	assert.EqualValues(t, 500, queryLimit(newReq("?limit=9999"), 50, 500))
}
