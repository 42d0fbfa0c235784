package event

import (
	"context"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
)

// Event đại diện cho một sự kiện trong hệ thống
type Event struct {
	Topic string      // Ví dụ: "user:abc"
	Type  string      // Loại sự kiện: new_notification
	Data  interface{} // Dữ liệu sự kiện (tùy thuộc loại)
}

const (
	EventTypeNewNotification = "new_notification" // Có thông báo mới cho người nhận
)

// RecipientTopic returns the room every connection of recipientID joins.
func RecipientTopic(recipientID string) string {
	return "user:" + recipientID
}

// EventSender là interface cho đại diện cho server gửi sự kiện đến client
type EventSender interface {
	Register(topic string, client chan Event)
	Unregister(topic string, client chan Event)
	Broadcast(event Event)
	Run(ctx context.Context)
}

// Publisher is the single way a created notification reaches live connections.
// Direct push and the change feed both go through it.
type Publisher interface {
	PublishNotification(ctx context.Context, notification db.Notification)
}

// Sink receives every published notification besides the rooms, e.g. a mirror
// for mobile clients. Sinks must not block for long.
type Sink interface {
	Mirror(ctx context.Context, notification db.Notification) error
}
