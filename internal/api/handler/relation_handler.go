package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/match-social/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Param user_id path string true "被关注用户ID"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users/{user_id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	edge, err := h.relService.Follow(c.Request.Context(), currentUser(c), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"id": edge.ID, "follower_id": edge.FollowerID, "followed_id": edge.FolloweeID, "created_at": edge.CreatedAt})
}

// Unfollow 取消关注，未关注时同样返回成功
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Param user_id path string true "被关注用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.relService.Unfollow(c.Request.Context(), currentUser(c), c.Param("user_id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{user_id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	list, err := h.relService.ListFollowing(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list, "total": len(list)})
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{user_id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	list, err := h.relService.ListFollowers(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list, "total": len(list)})
}

// FollowCounts 关注数与粉丝数
// @Summary 关注计数
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=service.FollowCounts}
// @Router /api/v1/users/{user_id}/follow-counts [get]
func (h *Handler) FollowCounts(c *gin.Context) {
	counts, err := h.relService.Counts(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, counts)
}
