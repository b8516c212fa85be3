package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/db"
	"github.com/inkstream/internal/service"
)

func notificationToPayload(notification *db.Notification) gin.H {
	return gin.H{
		"id":         notification.ID,
		"message":    notification.Message,
		"read_at":    notification.ReadAt,
		"created_at": notification.CreatedAt,
	}
}

// ListNotifications 返回当前用户的未读通知，最新在前
func (a *API) ListNotifications(c *gin.Context) {
	page, pageSize := parsePaging(c)
	notifications, total, err := a.notifications.ListUnread(currentUserID(c), page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取通知失败")
		return
	}

	items := make([]gin.H, 0, len(notifications))
	for i := range notifications {
		items = append(items, notificationToPayload(&notifications[i]))
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": items})
}

// GetNotification 返回单条通知
func (a *API) GetNotification(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "通知 ID 不合法")
		return
	}

	notification, err := a.notifications.Get(currentUserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, "通知不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取通知失败")
		return
	}
	c.JSON(http.StatusOK, notificationToPayload(notification))
}

// MarkNotificationRead 显式置为已读
func (a *API) MarkNotificationRead(c *gin.Context) {
	a.toggleNotification(c, true)
}

// MarkNotificationUnread 显式置回未读
func (a *API) MarkNotificationUnread(c *gin.Context) {
	a.toggleNotification(c, false)
}

func (a *API) toggleNotification(c *gin.Context, read bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "通知 ID 不合法")
		return
	}

	var notification *db.Notification
	if read {
		notification, err = a.notifications.MarkRead(currentUserID(c), id)
	} else {
		notification, err = a.notifications.MarkUnread(currentUserID(c), id)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, "通知不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "更新通知状态失败")
		return
	}
	c.JSON(http.StatusOK, notificationToPayload(notification))
}
