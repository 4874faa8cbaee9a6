package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
)

type createMemberRequest struct {
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Unit        string     `json:"unit"`
	Role        string     `json:"role"`
	JoinedAt    *time.Time `json:"joined_at"`
}

func (s *Server) CreateMember(c *gin.Context) {
	var body createMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	member, err := s.memberSvc.Create(c.Request.Context(), memberdomain.CreateMemberRequest{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		Unit:        body.Unit,
		Role:        memberdomain.Role(body.Role),
		JoinedAt:    body.JoinedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (s *Server) ListMembers(c *gin.Context) {
	members, err := s.memberSvc.List(c.Request.Context(), memberdomain.ListMemberRequest{
		Unit: c.Query("unit"),
		Role: memberdomain.Role(c.Query("role")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) GetMemberByID(c *gin.Context) {
	member, err := s.memberSvc.GetByID(c.Request.Context(), memberdomain.GetMemberRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// GetMemberPoints returns the member's current total, summed from the
// ledger on every call.
func (s *Server) GetMemberPoints(c *gin.Context) {
	memberID := c.Param("id")
	if _, err := s.memberSvc.GetByID(c.Request.Context(), memberdomain.GetMemberRequest{ID: memberID}); err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.ledgerSvc.TotalFor(c.Request.Context(), memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member_id":    memberID,
		"total_points": total,
	})
}
