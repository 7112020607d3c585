package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/match-social/pkg/response"
)

type addCommentRequest struct {
	Content string `json:"content"`
}

// ToggleLike 点赞/取消点赞
// @Summary 切换点赞
// @Tags 互动
// @Param review_id path string true "评分ID"
// @Success 200 {object} response.Response{data=service.LikeResult}
// @Router /api/v1/reviews/{review_id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	res, err := h.likeService.ToggleLike(c.Request.Context(), c.Param("review_id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

// IsLiked 当前用户是否已点赞
// @Summary 点赞状态
// @Tags 互动
// @Param review_id path string true "评分ID"
// @Success 200 {object} response.Response
// @Router /api/v1/reviews/{review_id}/like [get]
func (h *Handler) IsLiked(c *gin.Context) {
	liked, err := h.likeService.IsLiked(c.Request.Context(), c.Param("review_id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// AddComment 发表评论
// @Summary 发表评论
// @Tags 互动
// @Accept json
// @Param review_id path string true "评分ID"
// @Param request body addCommentRequest true "评论"
// @Success 201 {object} response.Response
// @Router /api/v1/reviews/{review_id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.Add(c.Request.Context(), c.Param("review_id"), currentUser(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, cm)
}

// ListComments 评论列表（时间升序）
// @Summary 评论列表
// @Tags 互动
// @Param review_id path string true "评分ID"
// @Success 200 {object} response.Response
// @Router /api/v1/reviews/{review_id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.commentService.List(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// DeleteComment 删除评论，仅作者可操作
// @Summary 删除评论
// @Tags 互动
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	cm, err := h.commentService.Get(c.Request.Context(), c.Param("comment_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if cm.UserID != currentUser(c) {
		response.Forbidden(c, "not the author of this comment")
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), cm.ID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// ModerateComment 审核隐藏评论
// @Summary 审核评论
// @Tags 审核
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/comments/{comment_id}/moderate [post]
func (h *Handler) ModerateComment(c *gin.Context) {
	cm, err := h.commentService.Moderate(c.Request.Context(), c.Param("comment_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, cm)
}
