package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meritworks/meritboard/internal/config"
	leaderboarddomain "github.com/meritworks/meritboard/internal/leaderboard/domain"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	obsmetrics "github.com/meritworks/meritboard/internal/observability/metrics"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	memberSvc      memberdomain.Service
	ledgerSvc      ledgerdomain.Service
	leaderboardSvc leaderboarddomain.Service
	ratingSvc      ratingdomain.Service
}

type ServerParams struct {
	fx.In

	Engine         *gin.Engine
	Config         config.Config
	MemberSvc      memberdomain.Service
	LedgerSvc      ledgerdomain.Service
	LeaderboardSvc leaderboarddomain.Service
	RatingSvc      ratingdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:         p.Engine,
		cfg:            p.Config,
		memberSvc:      p.MemberSvc,
		ledgerSvc:      p.LedgerSvc,
		leaderboardSvc: p.LeaderboardSvc,
		ratingSvc:      p.RatingSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/members", s.CreateMember)
	v1.GET("/members", s.ListMembers)
	v1.GET("/members/:id", s.GetMemberByID)
	v1.GET("/members/:id/points", s.GetMemberPoints)
	v1.GET("/members/:id/transactions", s.ListMemberTransactions)

	v1.POST("/ledger/transactions", s.AppendTransaction)

	v1.GET("/leaderboard", s.GetLeaderboard)
	v1.GET("/refresh-policy", s.GetRefreshPolicy)

	v1.POST("/rating-periods", s.CreateRatingPeriod)
	v1.GET("/rating-periods", s.ListRatingPeriods)
	v1.GET("/rating-periods/:id", s.GetRatingPeriod)
	v1.POST("/rating-periods/:id/criteria", s.AddCriterion)
	v1.POST("/rating-periods/:id/activate", s.ActivateRatingPeriod)
	v1.POST("/rating-periods/:id/complete", s.CompleteRatingPeriod)
	v1.POST("/rating-periods/:id/cancel", s.CancelRatingPeriod)
	v1.POST("/rating-periods/:id/extend", s.ExtendRatingPeriod)
	v1.PUT("/rating-periods/:id/self-rating", s.SaveSelfRatingDraft)
	v1.GET("/rating-periods/:id/self-ratings", s.ListSelfRatings)

	v1.GET("/self-ratings/:id", s.GetSelfRating)
	v1.POST("/self-ratings/:id/submit", s.SubmitSelfRating)
	v1.POST("/self-ratings/:id/approve", s.ApproveSelfRating)
	v1.POST("/self-ratings/:id/reject", s.RejectSelfRating)
	v1.POST("/self-ratings/:id/request-revision", s.RequestSelfRatingRevision)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
