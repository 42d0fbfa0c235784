package gateway

import (
	"encoding/json"
	"strings"
	"time"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
)

// Client → server message types.
const (
	RequestAuthenticate     = "authenticate"
	RequestGetNotifications = "get_notifications"
	RequestMarkRead         = "mark_read"
	RequestMarkAllRead      = "mark_all_read"
)

// Server → client message types.
const (
	ResponseUnreadCount       = "unread_count"
	ResponseNotificationsList = "notifications_list"
	ResponseNewNotification   = "new_notification"
	ResponseMarkedRead        = "marked_read"
	ResponseAllMarkedRead     = "all_marked_read"
	ResponseError             = "error"
)

// Message is the frame exchanged in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outboundMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AuthenticateRequest struct {
	RecipientID string `json:"recipientId"`
	Token       string `json:"token"`
}

type GetNotificationsRequest struct {
	Limit  *int32 `json:"limit"`
	Offset *int32 `json:"offset"`
}

type MarkReadRequest struct {
	NotificationID int64 `json:"notificationId"`
}

type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

type NotificationsListPayload struct {
	Items []NotificationItem `json:"items"`
}

type NewNotificationPayload struct {
	Item NotificationItem `json:"item"`
}

type MarkedReadPayload struct {
	NotificationID int64 `json:"notificationId"`
}

type AllMarkedReadPayload struct{}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NotificationItem is the wire shape of a notification.
type NotificationItem struct {
	ID               int64      `json:"id"`
	RecipientID      string     `json:"recipientId"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	RelatedProductID *int64     `json:"relatedProductId,omitempty"`
	RelatedArticleID *int64     `json:"relatedArticleId,omitempty"`
	RelatedCommentID *int64     `json:"relatedCommentId,omitempty"`
	IsRead           bool       `json:"isRead"`
	ReadAt           *time.Time `json:"readAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func NewNotificationItem(n db.Notification) NotificationItem {
	return NotificationItem{
		ID:               n.ID,
		RecipientID:      n.RecipientID,
		Type:             strings.ToUpper(string(n.Type)),
		Title:            n.Title,
		Message:          n.Message,
		RelatedProductID: n.RelatedProductID,
		RelatedArticleID: n.RelatedArticleID,
		RelatedCommentID: n.RelatedCommentID,
		IsRead:           n.IsRead,
		ReadAt:           n.ReadAt,
		CreatedAt:        n.CreatedAt,
	}
}

func NewNotificationItems(notifications []db.Notification) []NotificationItem {
	items := make([]NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = NewNotificationItem(n)
	}
	return items
}
