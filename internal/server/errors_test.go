package server

import (
	"errors"
	"net/http"
	"testing"

	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", ledgerdomain.ErrZeroDelta, http.StatusBadRequest, "validation"},
		{"bad body", ErrInvalidRequest, http.StatusBadRequest, "validation"},
		{"not found", ratingdomain.ErrRatingNotFound, http.StatusNotFound, "not_found"},
		{"member not found", memberdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"forbidden", ratingdomain.ErrReviewerOnly, http.StatusForbidden, "forbidden"},
		{"duplicate source", ledgerdomain.ErrDuplicateSource, http.StatusConflict, "conflict"},
		{"locked", ratingdomain.ErrRatingLocked, http.StatusBadRequest, "validation"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.typ, payload.Type)
		})
	}
}

func TestMapErrorIncompleteSubmission(t *testing.T) {
	status, payload := mapError(&ratingdomain.IncompleteSubmissionError{
		Missing: []string{"shipped on time"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "incomplete_submission", payload.Type)
	assert.Equal(t, []string{"shipped on time"}, payload.MissingCriteria)
}

func TestMapErrorStateTransition(t *testing.T) {
	status, payload := mapError(&ratingdomain.InvalidStateTransitionError{
		Current:   ratingdomain.RatingStatusApproved,
		Attempted: ratingdomain.RatingStatusRejected,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state_transition", payload.Type)
	assert.Equal(t, "approved", payload.CurrentStatus)
	assert.Equal(t, "rejected", payload.AttemptedStatus)
}
