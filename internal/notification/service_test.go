package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	
	"github.com/jackc/pgx/v5/pgconn"
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/db/sqlite"
	"github.com/katatrina/gundam-notification/internal/testutil"
	"github.com/katatrina/gundam-notification/internal/validator"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []db.Notification
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n db.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
}

func (p *recordingPublisher) recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	
	ids := make([]string, 0, len(p.published))
	for _, n := range p.published {
		ids = append(ids, n.RecipientID)
	}
	return ids
}

// failingStore fails every write while reads keep working.
type failingStore struct {
	*sqlite.Store
}

var errStoreDown = errors.New("store is down")

func (f failingStore) CreateNotification(context.Context, db.CreateNotificationParams) (db.Notification, error) {
	return db.Notification{}, errStoreDown
}

// checkViolationStore rejects every insert the way Postgres does when a
// CHECK constraint fails.
type checkViolationStore struct {
	*sqlite.Store
	constraint string
}

func (f checkViolationStore) CreateNotification(context.Context, db.CreateNotificationParams) (db.Notification, error) {
	return db.Notification{}, &pgconn.PgError{Code: db.CheckViolationCode, ConstraintName: f.constraint}
}

func newTestService(t *testing.T) (*Service, *sqlite.Store, *recordingPublisher) {
	t.Helper()
	
	store := testutil.NewTestStore(t)
	publisher := &recordingPublisher{}
	return NewService(store, publisher), store, publisher
}

func unreadCount(t *testing.T, s *Service, recipientID string) int64 {
	t.Helper()
	
	count, err := s.UnreadCount(context.Background(), recipientID)
	require.NoError(t, err)
	return count
}

func TestNotifyOnCommentForContentOwner(t *testing.T) {
	s, _, publisher := newTestService(t)
	ctx := context.Background()
	
	articleID := int64(10)
	created := s.NotifyOnComment(ctx, CommentEvent{
		ContentOwnerID: "alice",
		CommenterID:    "bob",
		CommenterName:  "Bob",
		CommentID:      99,
		ArticleID:      &articleID,
		ContentTitle:   "Review RX-78-2",
	})
	require.True(t, created)
	require.EqualValues(t, 1, unreadCount(t, s, "alice"))
	require.Zero(t, unreadCount(t, s, "bob"))
	
	items, err := s.ListForRecipient(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, db.NotificationTypeComment, items[0].Type)
	require.Equal(t, &articleID, items[0].RelatedArticleID)
	require.Nil(t, items[0].RelatedProductID)
	require.EqualValues(t, 99, *items[0].RelatedCommentID)
	require.Contains(t, items[0].Message, "Bob")
	require.Contains(t, items[0].Message, "Review RX-78-2")
	
	require.Equal(t, []string{"alice"}, publisher.recipients())
}

func TestNotifyOnCommentOnOwnContentCreatesNothing(t *testing.T) {
	s, _, publisher := newTestService(t)
	
	articleID := int64(10)
	created := s.NotifyOnComment(context.Background(), CommentEvent{
		ContentOwnerID: "alice",
		CommenterID:    "alice",
		CommentID:      1,
		ArticleID:      &articleID,
	})
	require.False(t, created)
	require.Zero(t, unreadCount(t, s, "alice"))
	require.Empty(t, publisher.recipients())
}

func TestNotifyOnLike(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	
	productID := int64(5)
	require.True(t, s.NotifyOnLike(ctx, LikeEvent{ContentOwnerID: "alice", LikerID: "bob", ProductID: &productID}))
	require.False(t, s.NotifyOnLike(ctx, LikeEvent{ContentOwnerID: "alice", LikerID: "alice", ProductID: &productID}))
	
	items, err := s.ListForRecipient(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, db.NotificationTypeLike, items[0].Type)
	require.Equal(t, &productID, items[0].RelatedProductID)
}

func TestNotifyOnPriceChangeNotifiesLikersOnly(t *testing.T) {
	s, store, publisher := newTestService(t)
	ctx := context.Background()
	
	// alice owns product 1 (price 10000) and likes it herself; bob likes it.
	require.NoError(t, store.AddProductLike(ctx, 1, "bob"))
	require.NoError(t, store.AddProductLike(ctx, 1, "alice"))
	
	created := s.NotifyOnPriceChange(ctx, PriceChangeEvent{
		ProductID:   1,
		ProductName: "RX-78-2 Gundam",
		OwnerID:     "alice",
		OldPrice:    10000,
		NewPrice:    8000,
	})
	require.Equal(t, 1, created)
	require.EqualValues(t, 1, unreadCount(t, s, "bob"))
	require.Zero(t, unreadCount(t, s, "alice"))
	
	items, err := s.ListForRecipient(ctx, "bob", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, db.NotificationTypePriceChange, items[0].Type)
	require.EqualValues(t, 1, *items[0].RelatedProductID)
	require.Contains(t, items[0].Message, "10.000 ₫")
	require.Contains(t, items[0].Message, "8.000 ₫")
	
	require.Equal(t, []string{"bob"}, publisher.recipients())
}

func TestNotifyOnPriceChangeIgnoresUnchangedPrice(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()
	
	require.NoError(t, store.AddProductLike(ctx, 1, "bob"))
	
	created := s.NotifyOnPriceChange(ctx, PriceChangeEvent{ProductID: 1, OwnerID: "alice", OldPrice: 10000, NewPrice: 10000})
	require.Zero(t, created)
	require.Zero(t, unreadCount(t, s, "bob"))
}

func TestNotifyIsBestEffortWhenStoreFails(t *testing.T) {
	store := testutil.NewTestStore(t)
	publisher := &recordingPublisher{}
	s := NewService(failingStore{store}, publisher)
	ctx := context.Background()
	
	require.NoError(t, store.AddProductLike(ctx, 1, "bob"))
	
	productID := int64(1)
	require.NotPanics(t, func() {
		require.False(t, s.NotifyOnComment(ctx, CommentEvent{ContentOwnerID: "alice", CommenterID: "bob", CommentID: 1, ProductID: &productID}))
		require.Zero(t, s.NotifyOnPriceChange(ctx, PriceChangeEvent{ProductID: 1, OwnerID: "alice", OldPrice: 1, NewPrice: 2}))
		require.False(t, s.NotifySystem(ctx, "bob", "t", "m"))
	})
	require.Empty(t, publisher.recipients())
}

func TestCreateValidation(t *testing.T) {
	s, _, publisher := newTestService(t)
	ctx := context.Background()
	productID, articleID := int64(1), int64(2)
	
	testCases := []struct {
		name string
		arg  db.CreateNotificationParams
	}{
		{"MissingRecipient", db.CreateNotificationParams{Type: db.NotificationTypeSystem, Title: "t", Message: "m"}},
		{"UnknownType", db.CreateNotificationParams{RecipientID: "a", Type: "digest", Title: "t", Message: "m"}},
		{"MissingText", db.CreateNotificationParams{RecipientID: "a", Type: db.NotificationTypeSystem}},
		{"MessageTooLong", db.CreateNotificationParams{
			RecipientID: "a",
			Type:        db.NotificationTypeSystem,
			Title:       "t",
			Message:     strings.Repeat("m", validator.MaxMessageLength+1),
		}},
		{"MessageOverByteBudget", db.CreateNotificationParams{
			RecipientID: "a",
			Type:        db.NotificationTypeSystem,
			Title:       "t",
			Message:     strings.Repeat("🎉", validator.MaxMessageLength),
		}},
		{"BothContexts", db.CreateNotificationParams{
			RecipientID:      "a",
			Type:             db.NotificationTypeComment,
			Title:            "t",
			Message:          "m",
			RelatedProductID: &productID,
			RelatedArticleID: &articleID,
		}},
	}
	
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, tc.arg)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	require.Empty(t, publisher.recipients())
}

func TestCreateWithoutPublisherDoesNotPush(t *testing.T) {
	store := testutil.NewTestStore(t)
	s := NewService(store, nil)
	
	n, err := s.Create(context.Background(), db.CreateNotificationParams{
		RecipientID: "alice",
		Type:        db.NotificationTypeSystem,
		Title:       "Bảo trì",
		Message:     "Hệ thống bảo trì lúc 2h sáng",
	})
	require.NoError(t, err)
	require.NotZero(t, n.ID)
}

func TestCreatePersistenceErrorIsWrapped(t *testing.T) {
	store := testutil.NewTestStore(t)
	s := NewService(failingStore{store}, nil)
	
	_, err := s.Create(context.Background(), db.CreateNotificationParams{
		RecipientID: "alice",
		Type:        db.NotificationTypeSystem,
		Title:       "t",
		Message:     "m",
	})
	require.ErrorIs(t, err, db.ErrPersistence)
	require.ErrorIs(t, err, errStoreDown)
}

func TestCreateMapsConstraintViolations(t *testing.T) {
	store := testutil.NewTestStore(t)
	arg := db.CreateNotificationParams{
		RecipientID: "alice",
		Type:        db.NotificationTypeSystem,
		Title:       "t",
		Message:     "m",
	}
	
	s := NewService(checkViolationStore{Store: store, constraint: db.SingleContextConstraint}, nil)
	_, err := s.Create(context.Background(), arg)
	require.ErrorIs(t, err, ErrValidation)
	require.NotErrorIs(t, err, db.ErrPersistence)
	
	s = NewService(checkViolationStore{Store: store, constraint: "notifications_read_at_check"}, nil)
	_, err = s.Create(context.Background(), arg)
	require.ErrorIs(t, err, db.ErrPersistence)
}

func TestReadStateTransitions(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	
	for i := 0; i < 3; i++ {
		require.True(t, s.NotifySystem(ctx, "alice", "t", "m"))
	}
	require.EqualValues(t, 3, unreadCount(t, s, "alice"))
	
	items, err := s.ListForRecipient(ctx, "alice", 2, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Greater(t, items[0].ID, items[1].ID)
	// listing does not mark anything read
	require.EqualValues(t, 3, unreadCount(t, s, "alice"))
	
	marked, err := s.MarkRead(ctx, "alice", items[0].ID)
	require.NoError(t, err)
	require.True(t, marked.IsRead)
	require.EqualValues(t, 2, unreadCount(t, s, "alice"))
	
	_, err = s.MarkRead(ctx, "mallory", items[1].ID)
	require.ErrorIs(t, err, ErrNotificationNotFound)
	require.EqualValues(t, 2, unreadCount(t, s, "alice"))
	
	updated, err := s.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)
	require.Zero(t, unreadCount(t, s, "alice"))
	
	updated, err = s.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, updated)
}

func TestListForRecipientClampsPaging(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	
	for i := 0; i < DefaultPageSize+5; i++ {
		require.True(t, s.NotifySystem(ctx, "alice", "t", "m"))
	}
	
	items, err := s.ListForRecipient(ctx, "alice", 0, -3)
	require.NoError(t, err)
	require.Len(t, items, DefaultPageSize)
	
	items, err = s.ListForRecipient(ctx, "alice", MaxPageSize+50, 0)
	require.NoError(t, err)
	require.Len(t, items, DefaultPageSize+5)
}

type readMirrorCall struct {
	notificationID int64
	recipientID    string
	readAt         time.Time
}

type channelReadMirror struct {
	calls chan readMirrorCall
}

func (m *channelReadMirror) MirrorRead(_ context.Context, n db.Notification) error {
	m.calls <- readMirrorCall{notificationID: n.ID, recipientID: n.RecipientID, readAt: *n.ReadAt}
	return nil
}

func (m *channelReadMirror) MirrorAllRead(_ context.Context, recipientID string, readAt time.Time) error {
	m.calls <- readMirrorCall{recipientID: recipientID, readAt: readAt}
	return nil
}

func (m *channelReadMirror) next(t *testing.T) readMirrorCall {
	t.Helper()
	
	select {
	case call := <-m.calls:
		return call
	case <-time.After(time.Second):
		t.Fatal("read state was not mirrored")
		return readMirrorCall{}
	}
}

func TestReadTransitionsAreMirrored(t *testing.T) {
	store := testutil.NewTestStore(t)
	mirror := &channelReadMirror{calls: make(chan readMirrorCall, 4)}
	s := NewService(store, nil, WithReadStateMirror(mirror))
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()
	
	for i := 0; i < 2; i++ {
		require.True(t, s.NotifySystem(ctx, "alice", "t", "m"))
	}
	items, err := s.ListForRecipient(ctx, "alice", 10, 0)
	require.NoError(t, err)
	
	marked, err := s.MarkRead(ctx, "alice", items[0].ID)
	require.NoError(t, err)
	call := mirror.next(t)
	require.Equal(t, items[0].ID, call.notificationID)
	require.True(t, marked.ReadAt.Equal(call.readAt))
	
	// Another recipient's id fails and mirrors nothing.
	_, err = s.MarkRead(ctx, "mallory", items[1].ID)
	require.ErrorIs(t, err, ErrNotificationNotFound)
	
	_, err = s.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	call = mirror.next(t)
	require.Equal(t, readMirrorCall{recipientID: "alice", readAt: now}, call)
	
	// Nothing left to update, nothing to mirror.
	_, err = s.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	select {
	case call := <-mirror.calls:
		t.Fatalf("unexpected mirror call %+v", call)
	case <-time.After(50 * time.Millisecond):
	}
}
