package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/match-social/internal/api/middleware"
	"github.com/d60-Lab/match-social/internal/service"
	"github.com/d60-Lab/match-social/pkg/response"
)

// Handler HTTP 处理器集合
type Handler struct {
	relService          service.RelationshipService
	reviewService       service.ReviewService
	likeService         service.LikeService
	commentService      service.CommentService
	notificationService service.NotificationService
	feedService         service.FeedService
}

// Services 构造 Handler 所需的服务
type Services struct {
	Relationship service.RelationshipService
	Review       service.ReviewService
	Like         service.LikeService
	Comment      service.CommentService
	Notification service.NotificationService
	Feed         service.FeedService
}

func New(s Services) *Handler {
	return &Handler{
		relService:          s.Relationship,
		reviewService:       s.Review,
		likeService:         s.Like,
		commentService:      s.Comment,
		notificationService: s.Notification,
		feedService:         s.Feed,
	}
}

// writeError 按错误分类映射状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func currentUser(c *gin.Context) string { return middleware.CurrentUser(c) }
