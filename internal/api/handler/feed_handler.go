package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/match-social/pkg/response"
)

// Feed 关注流（page 从 0 开始）
// @Summary 关注流
// @Tags 关注流
// @Param page query int false "页码（从0开始）" default(0)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	page := queryInt(c, "page", 0)
	pageSize := queryInt(c, "page_size", 0)
	list, err := h.feedService.FullFeed(c.Request.Context(), currentUser(c), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "list": list})
}

// LatestFeed 每个关注对象的最新评分
// @Summary 最新动态
// @Tags 关注流
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed/latest [get]
func (h *Handler) LatestFeed(c *gin.Context) {
	list, err := h.feedService.LatestFeed(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}
