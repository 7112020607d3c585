package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/match-social/internal/service"
	"github.com/d60-Lab/match-social/pkg/response"
)

type upsertReviewRequest struct {
	Note         *float64 `json:"note" binding:"required"`
	Comment      *string  `json:"comment"`
	LikedByOwner bool     `json:"liked_by_owner"`
}

type updateReviewRequest struct {
	Note    *float64 `json:"note" binding:"required"`
	Comment *string  `json:"comment"`
}

// UpsertReview 为比赛评分（重复评分原地更新）
// @Summary 评分
// @Tags 评分
// @Accept json
// @Produce json
// @Param match_id path string true "比赛ID"
// @Param request body upsertReviewRequest true "评分"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/matches/{match_id}/review [put]
func (h *Handler) UpsertReview(c *gin.Context) {
	var req upsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rv, err := h.reviewService.Upsert(c.Request.Context(), service.UpsertReviewInput{
		UserID:       currentUser(c),
		MatchID:      c.Param("match_id"),
		Note:         *req.Note,
		Comment:      req.Comment,
		LikedByOwner: req.LikedByOwner,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rv)
}

// GetReview 查询评分
// @Summary 查询评分
// @Tags 评分
// @Param review_id path string true "评分ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reviews/{review_id} [get]
func (h *Handler) GetReview(c *gin.Context) {
	rv, err := h.reviewService.Get(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rv)
}

// UpdateReview 修改评分与短评，仅作者可操作
// @Summary 修改评分
// @Tags 评分
// @Accept json
// @Param review_id path string true "评分ID"
// @Param request body updateReviewRequest true "评分"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/reviews/{review_id} [patch]
func (h *Handler) UpdateReview(c *gin.Context) {
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !h.ownsReview(c) {
		return
	}
	rv, err := h.reviewService.Update(c.Request.Context(), c.Param("review_id"), *req.Note, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rv)
}

// DeleteReview 删除评分及其点赞、评论
// @Summary 删除评分
// @Tags 评分
// @Param review_id path string true "评分ID"
// @Success 200 {object} response.Response
// @Router /api/v1/reviews/{review_id} [delete]
func (h *Handler) DeleteReview(c *gin.Context) {
	if !h.ownsReview(c) {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), c.Param("review_id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// ModerateReview 审核隐藏短评
// @Summary 审核评分
// @Tags 审核
// @Param review_id path string true "评分ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/reviews/{review_id}/moderate [post]
func (h *Handler) ModerateReview(c *gin.Context) {
	rv, err := h.reviewService.Moderate(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rv)
}

func (h *Handler) ownsReview(c *gin.Context) bool {
	rv, err := h.reviewService.Get(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		writeError(c, err)
		return false
	}
	if rv.UserID != currentUser(c) {
		response.Forbidden(c, "not the author of this review")
		return false
	}
	return true
}
