package notification

import (
	"context"
	"errors"
	"fmt"
	"time"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/validator"
	"github.com/rs/zerolog/log"
)

var (
	ErrValidation           = errors.New("invalid notification")
	ErrNotificationNotFound = errors.New("notification not found")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	
	mirrorTimeout = 5 * time.Second
)

// ReadStateMirror receives read transitions, so a replica fed with created
// notifications does not keep showing them as unread.
type ReadStateMirror interface {
	MirrorRead(ctx context.Context, notification db.Notification) error
	MirrorAllRead(ctx context.Context, recipientID string, readAt time.Time) error
}

// Service applies the rules deciding who gets notified and owns read-state
// transitions. It is the only writer of notifications inside this process.
type Service struct {
	store       db.Store
	publisher   event.Publisher
	readMirrors []ReadStateMirror
	now         func() time.Time
}

type Option func(*Service)

// WithReadStateMirror forwards every read transition to mirror.
func WithReadStateMirror(mirror ReadStateMirror) Option {
	return func(s *Service) {
		s.readMirrors = append(s.readMirrors, mirror)
	}
}

// NewService creates a notification service. publisher receives every
// notification created through the service (direct push); pass nil when
// delivery is left to the change feed.
func NewService(store db.Store, publisher event.Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a notification, then pushes it to the
// recipient's live connections when direct push is enabled.
func (s *Service) Create(ctx context.Context, arg db.CreateNotificationParams) (db.Notification, error) {
	if err := validateCreateParams(arg); err != nil {
		return db.Notification{}, err
	}
	
	notification, err := s.store.CreateNotification(ctx, arg)
	if err != nil {
		errCode, constraintName := db.ErrorDescription(err)
		if errCode == db.CheckViolationCode && constraintName == db.SingleContextConstraint {
			return db.Notification{}, fmt.Errorf("%w: a notification cannot reference both a product and an article", ErrValidation)
		}
		return db.Notification{}, fmt.Errorf("%w: failed to create notification: %w", db.ErrPersistence, err)
	}
	
	if s.publisher != nil {
		s.publisher.PublishNotification(ctx, notification)
	}
	
	return notification, nil
}

func validateCreateParams(arg db.CreateNotificationParams) error {
	if arg.RecipientID == "" {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if !arg.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, arg.Type)
	}
	if err := validator.ValidateNotificationTitle(arg.Title); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := validator.ValidateNotificationMessage(arg.Message); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := validator.ValidateNotificationSize(arg.Title, arg.Message); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if arg.RelatedProductID != nil && arg.RelatedArticleID != nil {
		return fmt.Errorf("%w: a notification cannot reference both a product and an article", ErrValidation)
	}
	return nil
}

// ListForRecipient returns a page of the recipient's notifications, most recent first.
func (s *Service) ListForRecipient(ctx context.Context, recipientID string, limit, offset int32) ([]db.Notification, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	
	notifications, err := s.store.ListNotificationsByRecipient(ctx, db.ListNotificationsByRecipientParams{
		RecipientID: recipientID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list notifications: %w", db.ErrPersistence, err)
	}
	
	return notifications, nil
}

// UnreadCount returns the number of unread notifications of the recipient.
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.store.CountUnreadNotifications(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count unread notifications: %w", db.ErrPersistence, err)
	}
	
	return count, nil
}

// MarkRead marks one of the recipient's notifications as read. Marking a
// notification that belongs to someone else fails with ErrNotificationNotFound.
func (s *Service) MarkRead(ctx context.Context, recipientID string, notificationID int64) (db.Notification, error) {
	notification, err := s.store.MarkNotificationRead(ctx, db.MarkNotificationReadParams{
		ID:          notificationID,
		RecipientID: recipientID,
	})
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return db.Notification{}, ErrNotificationNotFound
		}
		return db.Notification{}, fmt.Errorf("%w: failed to mark notification as read: %w", db.ErrPersistence, err)
	}
	
	s.mirrorReadState(func(ctx context.Context, m ReadStateMirror) error {
		return m.MirrorRead(ctx, notification)
	})
	return notification, nil
}

// MarkAllRead marks every unread notification of the recipient as read.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	updated, err := s.store.MarkAllNotificationsRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to mark all notifications as read: %w", db.ErrPersistence, err)
	}
	
	log.Debug().Str("recipient_id", recipientID).Int64("updated", updated).Msg("notifications marked as read")
	
	if updated > 0 {
		// The store does not return the rows, so the replica gets our clock.
		readAt := s.now().UTC()
		s.mirrorReadState(func(ctx context.Context, m ReadStateMirror) error {
			return m.MirrorAllRead(ctx, recipientID, readAt)
		})
	}
	return updated, nil
}

// mirrorReadState runs apply against every mirror in the background.
// A failing mirror is logged; the store stays the source of truth.
func (s *Service) mirrorReadState(apply func(ctx context.Context, m ReadStateMirror) error) {
	for _, mirror := range s.readMirrors {
		go func(m ReadStateMirror) {
			ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
			defer cancel()
			
			if err := apply(ctx, m); err != nil {
				log.Error().Err(err).Msg("failed to mirror read state")
			}
		}(mirror)
	}
}
