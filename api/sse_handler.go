package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	
	"github.com/gin-gonic/gin"
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/gateway"
	"github.com/rs/zerolog/log"
)

const (
	sseClientBufferSize = 32
	sseKeepAlivePeriod  = 30 * time.Second
)

//	@Summary		Stream notifications via Server-Sent Events
//	@Description	Sends the unread count on connect, then every new notification of the authenticated user.
//	@Description	EventSource clients pass the token in the access_token query parameter.
//	@Tags			notifications
//	@Produce		text/event-stream
//	@Security		accessToken
//	@Param			access_token	query		string	false	"Access token when the Authorization header cannot be set"
//	@Success		200				{string}	string	"Event stream. Data will be sent as SSE events with format: 'event: {eventType}\ndata: {jsonData}'"
//	@Failure		401				"Unauthorized"
//	@Router			/v1/users/me/notifications/stream [get]
func (server *Server) streamNotifications(c *gin.Context) {
	recipientID := authenticatedRecipientID(c)
	
	count, err := server.notificationService.UnreadCount(c.Request.Context(), recipientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	
	topic := event.RecipientTopic(recipientID)
	
	// Thiết lập header SSE
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)
	
	// Tạo channel cho client. Broker không bao giờ chờ client chậm.
	clientChan := make(chan event.Event, sseClientBufferSize)
	server.eventSender.Register(topic, clientChan)
	defer server.eventSender.Unregister(topic, clientChan)
	
	writeSSEvent(c, gateway.ResponseUnreadCount, gateway.UnreadCountPayload{Count: count})
	
	keepAlive := time.NewTicker(sseKeepAlivePeriod)
	defer keepAlive.Stop()
	
	// Gửi sự kiện tới client
	for {
		select {
		case ev, ok := <-clientChan:
			if !ok {
				return
			}
			notification, isNotification := ev.Data.(db.Notification)
			if ev.Type != event.EventTypeNewNotification || !isNotification {
				continue
			}
			writeSSEvent(c, gateway.ResponseNewNotification, gateway.NewNotificationPayload{
				Item: gateway.NewNotificationItem(notification),
			})
		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeSSEvent(c *gin.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode SSE event")
		return
	}
	
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", eventType, data)
	c.Writer.Flush()
}
