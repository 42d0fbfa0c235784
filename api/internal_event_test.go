package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/util"
	"github.com/stretchr/testify/require"
)

func (s *testServer) postInternal(t *testing.T, url, key string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	
	data, err := json.Marshal(body)
	require.NoError(t, err)
	
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if key != "" {
		request.Header.Set(internalKeyHeader, key)
	}
	
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder
}

func (s *testServer) unreadCount(t *testing.T, recipientID string) int64 {
	t.Helper()
	
	count, err := s.service.UnreadCount(context.Background(), recipientID)
	require.NoError(t, err)
	return count
}

func TestInternalRoutesRequireKey(t *testing.T) {
	server := newTestServer(t, nil)
	event := notification.CommentEvent{ContentOwnerID: "alice", CommenterID: "bob", CommentID: 1}
	
	recorder := server.postInternal(t, "/internal/events/comment-created", "", event)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	
	recorder = server.postInternal(t, "/internal/events/comment-created", "wrong", event)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	
	require.Zero(t, server.unreadCount(t, "alice"))
}

func TestHandleCommentCreated(t *testing.T) {
	server := newTestServer(t, nil)
	
	testCases := []struct {
		name        string
		body        interface{}
		wantStatus  int
		wantCreated int
	}{
		{
			name:        "OwnerNotified",
			body:        notification.CommentEvent{ContentOwnerID: "alice", CommenterID: "bob", CommenterName: "Bob", CommentID: 1, ProductID: util.Int64Pointer(42)},
			wantStatus:  http.StatusAccepted,
			wantCreated: 1,
		},
		{
			name:        "OwnComment",
			body:        notification.CommentEvent{ContentOwnerID: "alice", CommenterID: "alice", CommentID: 2, ProductID: util.Int64Pointer(42)},
			wantStatus:  http.StatusAccepted,
			wantCreated: 0,
		},
		{
			name:       "BothContexts",
			body:       notification.CommentEvent{ContentOwnerID: "alice", CommenterID: "bob", CommentID: 3, ProductID: util.Int64Pointer(42), ArticleID: util.Int64Pointer(7)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingFields",
			body:       map[string]string{"content_owner_id": "alice"},
			wantStatus: http.StatusBadRequest,
		},
	}
	
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := server.postInternal(t, "/internal/events/comment-created", testInternalKey, tc.body)
			require.Equal(t, tc.wantStatus, recorder.Code, recorder.Body.String())
			
			if tc.wantStatus == http.StatusAccepted {
				var resp notifyResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
				require.Equal(t, tc.wantCreated, resp.Created)
			}
		})
	}
	
	require.Equal(t, int64(1), server.unreadCount(t, "alice"))
}

func TestHandleProductLiked(t *testing.T) {
	server := newTestServer(t, nil)
	
	recorder := server.postInternal(t, "/internal/events/product-liked", testInternalKey,
		notification.LikeEvent{ContentOwnerID: "alice", LikerID: "bob", LikerName: "Bob", ProductID: util.Int64Pointer(42), ContentTitle: "RX-78-2"})
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Equal(t, int64(1), server.unreadCount(t, "alice"))
}

func TestHandlePriceChangedInline(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()
	require.NoError(t, server.store.AddProductLike(ctx, 42, "A"))
	require.NoError(t, server.store.AddProductLike(ctx, 42, "B"))
	
	event := notification.PriceChangeEvent{ProductID: 42, ProductName: "RX-78-2", OwnerID: "A", OldPrice: 10000, NewPrice: 8000}
	recorder := server.postInternal(t, "/internal/events/price-changed", testInternalKey, event)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.JSONEq(t, `{"created":1,"queued":false}`, recorder.Body.String())
	
	require.Equal(t, int64(1), server.unreadCount(t, "B"))
	require.Zero(t, server.unreadCount(t, "A"))
	
	event.OldPrice = event.NewPrice
	recorder = server.postInternal(t, "/internal/events/price-changed", testInternalKey, event)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Equal(t, int64(1), server.unreadCount(t, "B"))
}

func TestHandlePriceChangedQueued(t *testing.T) {
	distributor := &fakeDistributor{}
	server := newTestServer(t, distributor)
	require.NoError(t, server.store.AddProductLike(context.Background(), 42, "B"))
	
	event := notification.PriceChangeEvent{ProductID: 42, OwnerID: "A", OldPrice: 10000, NewPrice: 8000}
	recorder := server.postInternal(t, "/internal/events/price-changed", testInternalKey, event)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.JSONEq(t, `{"created":0,"queued":true}`, recorder.Body.String())
	
	require.Len(t, distributor.priceChanges, 1)
	require.Equal(t, event, distributor.priceChanges[0].PriceChangeEvent)
	require.Zero(t, server.unreadCount(t, "B"))
}

func TestCreateSystemNotifications(t *testing.T) {
	server := newTestServer(t, nil)
	
	body := createSystemNotificationsRequest{
		RecipientIDs: []string{"alice", "bob"},
		Title:        "Bảo trì hệ thống",
		Message:      "Hệ thống sẽ bảo trì lúc 2 giờ sáng",
	}
	recorder := server.postInternal(t, "/internal/notifications", testInternalKey, body)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.JSONEq(t, `{"created":2,"queued":false}`, recorder.Body.String())
	require.Equal(t, int64(1), server.unreadCount(t, "alice"))
	
	recorder = server.postInternal(t, "/internal/notifications", testInternalKey, createSystemNotificationsRequest{Title: "x", Message: "y"})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateSystemNotificationsQueued(t *testing.T) {
	distributor := &fakeDistributor{}
	server := newTestServer(t, distributor)
	
	body := createSystemNotificationsRequest{RecipientIDs: []string{"alice", "bob"}, Title: "t", Message: "m"}
	recorder := server.postInternal(t, "/internal/notifications", testInternalKey, body)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Len(t, distributor.sends, 2)
	require.Equal(t, "bob", distributor.sends[1].RecipientID)
	require.Zero(t, server.unreadCount(t, "alice"))
}

func TestCreateSystemNotificationsRejectsOversizedText(t *testing.T) {
	distributor := &fakeDistributor{}
	server := newTestServer(t, distributor)
	
	// 2000 four-byte runes pass the character limit but not the byte budget.
	body := createSystemNotificationsRequest{
		RecipientIDs: []string{"alice"},
		Title:        "Khuyến mãi",
		Message:      strings.Repeat("🎉", 2000),
	}
	recorder := server.postInternal(t, "/internal/notifications", testInternalKey, body)
	require.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
	require.Empty(t, distributor.sends)
}

// slowValueSink reads its context after the request that created the
// notification has finished.
type slowValueSink struct {
	wg sync.WaitGroup
}

func (s *slowValueSink) Mirror(ctx context.Context, _ db.Notification) error {
	defer s.wg.Done()
	time.Sleep(5 * time.Millisecond)
	_ = ctx.Value("trace")
	return ctx.Err()
}

func TestSinksDoNotShareRequestContext(t *testing.T) {
	const requests = 20
	
	sink := &slowValueSink{}
	sink.wg.Add(requests)
	server := newTestServer(t, nil, sink)
	
	for i := 1; i <= requests; i++ {
		event := notification.CommentEvent{ContentOwnerID: "alice", CommenterID: "bob", CommentID: int64(i), ProductID: util.Int64Pointer(42)}
		recorder := server.postInternal(t, "/internal/events/comment-created", testInternalKey, event)
		require.Equal(t, http.StatusAccepted, recorder.Code)
	}
	
	done := make(chan struct{})
	go func() {
		sink.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sinks did not finish")
	}
	require.Equal(t, int64(requests), server.unreadCount(t, "alice"))
}
