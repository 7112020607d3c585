package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/match-social/pkg/response"
)

// ListNotifications 当前用户的通知，最新在前
// @Summary 通知列表
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	list, err := h.notificationService.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// UnreadCount 未读数
// @Summary 未读数
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.notificationService.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"unread": n})
}

// MarkRead 标记已读（幂等）
// @Summary 标记已读
// @Tags 通知
// @Param notification_id path string true "通知ID"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/{notification_id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkReadFor(c.Request.Context(), currentUser(c), c.Param("notification_id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 全部已读
// @Summary 全部已读
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}

// ClearNotifications 清空通知
// @Summary 清空通知
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [delete]
func (h *Handler) ClearNotifications(c *gin.Context) {
	n, err := h.notificationService.ClearAll(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": n})
}
