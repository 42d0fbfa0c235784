package mirror

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	
	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const collectionNotifications = "notifications"

// FirestoreMirror copies every pushed notification into Firestore, where the
// mobile app listens for it.
type FirestoreMirror struct {
	client *firestore.Client
}

var (
	_ event.Sink                   = (*FirestoreMirror)(nil)
	_ notification.ReadStateMirror = (*FirestoreMirror)(nil)
)

// NewFirestoreMirror khởi tạo Firebase app từ file credentials và tạo Firestore client.
func NewFirestoreMirror(ctx context.Context, credentialsFile string) (*FirestoreMirror, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	
	return &FirestoreMirror{client: client}, nil
}

// Mirror writes the notification under its id, so a repeated mirror overwrites
// the same document.
func (m *FirestoreMirror) Mirror(ctx context.Context, notification db.Notification) error {
	docID := strconv.FormatInt(notification.ID, 10)
	
	_, err := m.client.Collection(collectionNotifications).Doc(docID).Set(ctx, documentFields(notification))
	if err != nil {
		return fmt.Errorf("failed to mirror notification %s: %w", docID, err)
	}
	
	log.Debug().Str("doc_id", docID).Str("recipient_id", notification.RecipientID).Msg("notification mirrored to firestore")
	return nil
}

// MirrorRead marks the mirrored document as read. A document that was never
// mirrored is created with the read fields only.
func (m *FirestoreMirror) MirrorRead(ctx context.Context, n db.Notification) error {
	if n.ReadAt == nil {
		return nil
	}
	
	docID := strconv.FormatInt(n.ID, 10)
	_, err := m.client.Collection(collectionNotifications).Doc(docID).Set(ctx, readFields(*n.ReadAt), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to mirror read state of notification %s: %w", docID, err)
	}
	return nil
}

// MirrorAllRead marks every unread mirrored document of the recipient as read.
func (m *FirestoreMirror) MirrorAllRead(ctx context.Context, recipientID string, readAt time.Time) error {
	docs, err := m.client.Collection(collectionNotifications).
		Where("recipientID", "==", recipientID).
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to query unread mirrored notifications: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	
	bulkWriter := m.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bulkWriter.Set(doc.Ref, readFields(readAt), firestore.MergeAll)
		if err != nil {
			bulkWriter.End()
			return fmt.Errorf("failed to queue read state of %s: %w", doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()
	
	failed := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to mirror read state of %d of %d notifications", failed, len(jobs))
	}
	
	log.Debug().Str("recipient_id", recipientID).Int("updated", len(jobs)).Msg("read state mirrored to firestore")
	return nil
}

func (m *FirestoreMirror) Close() error {
	return m.client.Close()
}

func documentFields(n db.Notification) map[string]interface{} {
	fields := map[string]interface{}{
		"recipientID": n.RecipientID,
		"title":       n.Title,
		"message":     n.Message,
		"type":        strings.ToUpper(string(n.Type)),
		"referenceID": referenceID(n),
		"isRead":      n.IsRead,
		"createdAt":   n.CreatedAt,
	}
	if n.ReadAt != nil {
		fields["readAt"] = *n.ReadAt
	}
	return fields
}

// referenceID points the mobile app at the content to open.
func referenceID(n db.Notification) string {
	switch {
	case n.RelatedProductID != nil:
		return "product:" + strconv.FormatInt(*n.RelatedProductID, 10)
	case n.RelatedArticleID != nil:
		return "article:" + strconv.FormatInt(*n.RelatedArticleID, 10)
	}
	return ""
}

func readFields(readAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"isRead": true,
		"readAt": readAt,
	}
}
