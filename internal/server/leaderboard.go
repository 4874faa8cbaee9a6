package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	leaderboarddomain "github.com/meritworks/meritboard/internal/leaderboard/domain"
	"github.com/meritworks/meritboard/internal/refresh"
)

func (s *Server) GetLeaderboard(c *gin.Context) {
	resp, err := s.leaderboardSvc.Rank(c.Request.Context(), leaderboarddomain.RankRequest{
		Unit: c.Query("unit"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRefreshPolicy advertises the polling cadence clients should follow
// for leaderboard and ledger views.
func (s *Server) GetRefreshPolicy(c *gin.Context) {
	policy := refresh.Config{
		Interval: s.cfg.RefreshInterval,
		MinGap:   s.cfg.RefreshMinGap,
	}.WithDefaults()
	c.JSON(http.StatusOK, gin.H{
		"interval_seconds": int(policy.Interval.Seconds()),
		"min_gap_seconds":  int(policy.MinGap.Seconds()),
	})
}
