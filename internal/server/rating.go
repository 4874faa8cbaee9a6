package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"github.com/meritworks/meritboard/internal/tier"
)

type createPeriodRequest struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (s *Server) CreateRatingPeriod(c *gin.Context) {
	var body createPeriodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	period, err := s.ratingSvc.CreatePeriod(c.Request.Context(), actorFrom(c), ratingdomain.CreatePeriodRequest{
		Title:     body.Title,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, period)
}

func (s *Server) ListRatingPeriods(c *gin.Context) {
	periods, err := s.ratingSvc.ListPeriods(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

func (s *Server) GetRatingPeriod(c *gin.Context) {
	detail, err := s.ratingSvc.GetPeriod(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

type addCriterionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

func (s *Server) AddCriterion(c *gin.Context) {
	var body addCriterionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	criterion, err := s.ratingSvc.AddCriterion(c.Request.Context(), actorFrom(c), ratingdomain.AddCriterionRequest{
		PeriodID:    c.Param("id"),
		Name:        body.Name,
		Description: body.Description,
		Required:    body.Required,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, criterion)
}

func (s *Server) ActivateRatingPeriod(c *gin.Context) {
	period, err := s.ratingSvc.ActivatePeriod(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

func (s *Server) CompleteRatingPeriod(c *gin.Context) {
	period, err := s.ratingSvc.CompletePeriod(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

func (s *Server) CancelRatingPeriod(c *gin.Context) {
	period, err := s.ratingSvc.CancelPeriod(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

type extendPeriodRequest struct {
	EndDate time.Time `json:"end_date"`
}

func (s *Server) ExtendRatingPeriod(c *gin.Context) {
	var body extendPeriodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	period, err := s.ratingSvc.ExtendPeriod(c.Request.Context(), actorFrom(c), ratingdomain.ExtendPeriodRequest{
		PeriodID: c.Param("id"),
		EndDate:  body.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

type saveDraftRequest struct {
	Responses      map[string]ratingdomain.CriterionResponse `json:"responses"`
	SelfAssessment string                                    `json:"self_assessment"`
}

func (s *Server) SaveSelfRatingDraft(c *gin.Context) {
	var body saveDraftRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rating, err := s.ratingSvc.SaveDraft(c.Request.Context(), actorFrom(c), ratingdomain.SaveDraftRequest{
		PeriodID:       c.Param("id"),
		Responses:      body.Responses,
		SelfAssessment: body.SelfAssessment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

func (s *Server) ListSelfRatings(c *gin.Context) {
	ratings, err := s.ratingSvc.ListRatings(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func (s *Server) GetSelfRating(c *gin.Context) {
	rating, err := s.ratingSvc.GetRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

func (s *Server) SubmitSelfRating(c *gin.Context) {
	rating, err := s.ratingSvc.Submit(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

type approveRequest struct {
	FinalTier      string `json:"final_tier"`
	ReviewerNotes  string `json:"reviewer_notes"`
	PointsOverride *int64 `json:"points_override"`
}

func (s *Server) ApproveSelfRating(c *gin.Context) {
	var body approveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rating, err := s.ratingSvc.Approve(c.Request.Context(), actorFrom(c), ratingdomain.ApproveRequest{
		RatingID:       c.Param("id"),
		FinalTier:      tier.Tier(body.FinalTier),
		ReviewerNotes:  body.ReviewerNotes,
		PointsOverride: body.PointsOverride,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

type reviewRequest struct {
	ReviewerNotes string `json:"reviewer_notes"`
}

func (s *Server) RejectSelfRating(c *gin.Context) {
	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rating, err := s.ratingSvc.Reject(c.Request.Context(), actorFrom(c), ratingdomain.ReviewRequest{
		RatingID:      c.Param("id"),
		ReviewerNotes: body.ReviewerNotes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

func (s *Server) RequestSelfRatingRevision(c *gin.Context) {
	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rating, err := s.ratingSvc.RequestRevision(c.Request.Context(), actorFrom(c), ratingdomain.ReviewRequest{
		RatingID:      c.Param("id"),
		ReviewerNotes: body.ReviewerNotes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}
