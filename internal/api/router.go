package api

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/match-social/config"
	"github.com/d60-Lab/match-social/internal/api/handler"
	"github.com/d60-Lab/match-social/internal/api/middleware"
)

// Options 路由依赖
type Options struct {
	Config  *config.Config
	Handler *handler.Handler
	// AdminGate 为空时不注册审核路由
	AdminGate gin.HandlerFunc
}

// NewRouter 组装 gin 引擎
func NewRouter(opts Options) *gin.Engine {
	cfg := opts.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := opts.Handler
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer))
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	{
		users := v1.Group("/users/:user_id")
		users.POST("/follow", h.Follow)
		users.DELETE("/follow", h.Unfollow)
		users.GET("/following", h.ListFollowing)
		users.GET("/followers", h.ListFollowers)
		users.GET("/follow-counts", h.FollowCounts)

		v1.PUT("/matches/:match_id/review", h.UpsertReview)

		reviews := v1.Group("/reviews/:review_id")
		reviews.GET("", h.GetReview)
		reviews.PATCH("", h.UpdateReview)
		reviews.DELETE("", h.DeleteReview)
		reviews.POST("/like", h.ToggleLike)
		reviews.GET("/like", h.IsLiked)
		reviews.POST("/comments", h.AddComment)
		reviews.GET("/comments", h.ListComments)

		v1.DELETE("/comments/:comment_id", h.DeleteComment)

		notifications := v1.Group("/notifications")
		notifications.GET("", h.ListNotifications)
		notifications.DELETE("", h.ClearNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.POST("/:notification_id/read", h.MarkRead)

		v1.GET("/feed", h.Feed)
		v1.GET("/feed/latest", h.LatestFeed)
	}

	if opts.AdminGate != nil {
		admin := v1.Group("/admin", opts.AdminGate)
		admin.POST("/reviews/:review_id/moderate", h.ModerateReview)
		admin.POST("/comments/:comment_id/moderate", h.ModerateComment)
	}
	return r
}
