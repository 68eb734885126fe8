package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrEmailTaken         = errors.New("email taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRatingOutOfRange   = errors.New("rating out of range")
	ErrMissingBody        = errors.New("missing review body")
	ErrNotConfigured      = errors.New("catalog service not configured")
)

// UpstreamError reports a non-success response from an external catalog
// service, carrying the upstream status for the 502 response body.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// PartialWriteError reports a failed step of a multi-step, non-transactional
// write. Earlier steps are not rolled back; ReviewID identifies the already
// created resource so the caller can reconcile.
type PartialWriteError struct {
	Step     string
	ReviewID primitive.ObjectID
	Err      error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s failed after review %s was created: %v", e.Step, e.ReviewID.Hex(), e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
