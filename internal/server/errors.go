package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
)

type errorPayload struct {
	Type            string   `json:"type"`
	Message         string   `json:"message"`
	MissingCriteria []string `json:"missing_criteria,omitempty"`
	CurrentStatus   string   `json:"current_status,omitempty"`
	AttemptedStatus string   `json:"attempted_status,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware renders the last handler error as a structured
// JSON payload.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var incomplete *ratingdomain.IncompleteSubmissionError
	if errors.As(err, &incomplete) {
		return http.StatusBadRequest, errorPayload{
			Type:            "incomplete_submission",
			Message:         incomplete.Error(),
			MissingCriteria: incomplete.Missing,
		}
	}

	var transition *ratingdomain.InvalidStateTransitionError
	if errors.As(err, &transition) {
		return http.StatusConflict, errorPayload{
			Type:            "invalid_state_transition",
			Message:         transition.Error(),
			CurrentStatus:   string(transition.Current),
			AttemptedStatus: string(transition.Attempted),
		}
	}

	switch {
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case isForbidden(err):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: err.Error()}
	case errors.Is(err, ledgerdomain.ErrDuplicateSource):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case isValidation(err):
		return http.StatusBadRequest, errorPayload{Type: "validation", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal", Message: "internal error"}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, memberdomain.ErrNotFound) ||
		errors.Is(err, ratingdomain.ErrPeriodNotFound) ||
		errors.Is(err, ratingdomain.ErrRatingNotFound)
}

func isForbidden(err error) bool {
	return errors.Is(err, ratingdomain.ErrMemberOnly) ||
		errors.Is(err, ratingdomain.ErrReviewerOnly) ||
		errors.Is(err, ratingdomain.ErrAdminOnly) ||
		errors.Is(err, ratingdomain.ErrNotOwner)
}

func isValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, memberdomain.ErrInvalidDisplayName),
		errors.Is(err, memberdomain.ErrInvalidEmail),
		errors.Is(err, memberdomain.ErrInvalidRole),
		errors.Is(err, memberdomain.ErrInvalidID),
		errors.Is(err, ledgerdomain.ErrInvalidMemberID),
		errors.Is(err, ledgerdomain.ErrUnknownMember),
		errors.Is(err, ledgerdomain.ErrZeroDelta),
		errors.Is(err, ledgerdomain.ErrInvalidKind),
		errors.Is(err, ledgerdomain.ErrInvalidSource),
		errors.Is(err, ledgerdomain.ErrInvalidAsOf),
		errors.Is(err, ratingdomain.ErrInvalidID),
		errors.Is(err, ratingdomain.ErrInvalidTitle),
		errors.Is(err, ratingdomain.ErrInvalidDateRange),
		errors.Is(err, ratingdomain.ErrInvalidCriterionName),
		errors.Is(err, ratingdomain.ErrInvalidTier),
		errors.Is(err, ratingdomain.ErrInvalidOverride),
		errors.Is(err, ratingdomain.ErrUnknownCriterion),
		errors.Is(err, ratingdomain.ErrPeriodNotActive),
		errors.Is(err, ratingdomain.ErrPeriodNotDraft),
		errors.Is(err, ratingdomain.ErrPeriodStateConflict),
		errors.Is(err, ratingdomain.ErrRatingLocked):
		return true
	default:
		return false
	}
}
