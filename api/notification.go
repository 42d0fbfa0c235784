package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	
	"github.com/gin-gonic/gin"
	"github.com/katatrina/gundam-notification/internal/notification"
)

type listUserNotificationsQuery struct {
	Limit  int32 `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int32 `form:"offset" binding:"omitempty,min=0"`
}

//	@Summary		List notifications of the authenticated user
//	@Description	Most recent first. Defaults to 20 items.
//	@Tags			notifications
//	@Produce		json
//	@Security		accessToken
//	@Param			limit	query	int					false	"Page size (1-100)"
//	@Param			offset	query	int					false	"Number of items to skip"
//	@Success		200		{array}	db.Notification		"List of notifications"
//	@Failure		400		"Invalid query parameters"
//	@Failure		500		"Internal server error"
//	@Router			/v1/users/me/notifications [get]
func (server *Server) listUserNotifications(c *gin.Context) {
	recipientID := authenticatedRecipientID(c)
	
	query := new(listUserNotificationsQuery)
	if err := c.ShouldBindQuery(query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	
	notifications, err := server.notificationService.ListForRecipient(c.Request.Context(), recipientID, query.Limit, query.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	
	c.JSON(http.StatusOK, notifications)
}

type unreadCountResponse struct {
	Count int64 `json:"count"`
}

//	@Summary		Count unread notifications
//	@Tags			notifications
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{object}	unreadCountResponse
//	@Failure		500	"Internal server error"
//	@Router			/v1/users/me/notifications/unread-count [get]
func (server *Server) countUnreadNotifications(c *gin.Context) {
	count, err := server.notificationService.UnreadCount(c.Request.Context(), authenticatedRecipientID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	
	c.JSON(http.StatusOK, unreadCountResponse{Count: count})
}

//	@Summary		Mark a notification as read
//	@Description	Idempotent. Only the recipient can mark their notification.
//	@Tags			notifications
//	@Produce		json
//	@Security		accessToken
//	@Param			notificationID	path		int				true	"Notification ID"
//	@Success		200				{object}	db.Notification	"The notification after the update"
//	@Failure		400				"Invalid notification ID"
//	@Failure		404				"Notification not found"
//	@Failure		500				"Internal server error"
//	@Router			/v1/users/me/notifications/{notificationID}/read [patch]
func (server *Server) markNotificationAsRead(c *gin.Context) {
	recipientID := authenticatedRecipientID(c)
	
	notificationID, err := strconv.ParseInt(c.Param("notificationID"), 10, 64)
	if err != nil || notificationID <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid notification ID: %s", c.Param("notificationID"))))
		return
	}
	
	updated, err := server.notificationService.MarkRead(c.Request.Context(), recipientID, notificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			err = fmt.Errorf("notification ID %d not found", notificationID)
			c.JSON(http.StatusNotFound, errorResponse(err))
			return
		}
		
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	
	c.JSON(http.StatusOK, updated)
}

type markAllNotificationsResponse struct {
	Updated int64 `json:"updated"`
}

//	@Summary		Mark all notifications as read
//	@Tags			notifications
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{object}	markAllNotificationsResponse
//	@Failure		500	"Internal server error"
//	@Router			/v1/users/me/notifications/read-all [patch]
func (server *Server) markAllNotificationsAsRead(c *gin.Context) {
	updated, err := server.notificationService.MarkAllRead(c.Request.Context(), authenticatedRecipientID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	
	c.JSON(http.StatusOK, markAllNotificationsResponse{Updated: updated})
}
