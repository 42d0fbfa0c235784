package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/util"
	"github.com/stretchr/testify/require"
)

func (s *testServer) do(t *testing.T, method, url, accessToken string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	
	request, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		request.Header.Set(authorizationHeaderKey, authorizationTypeBearer+" "+accessToken)
	}
	
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder
}

func (s *testServer) seedComment(t *testing.T, ownerID string, commentID int64) {
	t.Helper()
	
	created := s.service.NotifyOnComment(context.Background(), notification.CommentEvent{
		ContentOwnerID: ownerID,
		CommenterID:    "commenter",
		CommenterName:  "Bình",
		CommentID:      commentID,
		ArticleID:      util.Int64Pointer(3),
		ContentTitle:   "Hướng dẫn sơn mô hình",
	})
	require.True(t, created)
}

func TestNotificationRoutesRequireAuth(t *testing.T) {
	server := newTestServer(t, nil)
	
	recorder := server.do(t, http.MethodGet, "/v1/users/me/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	
	recorder = server.do(t, http.MethodGet, "/v1/users/me/notifications", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	
	request, err := http.NewRequest(http.MethodGet, "/v1/users/me/notifications/unread-count", nil)
	require.NoError(t, err)
	request.Header.Set(authorizationHeaderKey, "Basic abc")
	recorder = httptest.NewRecorder()
	server.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestListUserNotifications(t *testing.T) {
	server := newTestServer(t, nil)
	for i := int64(1); i <= 3; i++ {
		server.seedComment(t, "alice", i)
	}
	server.seedComment(t, "bob", 9)
	accessToken := server.accessToken(t, "alice")
	
	recorder := server.do(t, http.MethodGet, "/v1/users/me/notifications?limit=2", accessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	
	var notifications []db.Notification
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &notifications))
	require.Len(t, notifications, 2)
	require.Equal(t, "alice", notifications[0].RecipientID)
	require.Equal(t, int64(3), *notifications[0].RelatedCommentID)
	
	recorder = server.do(t, http.MethodGet, "/v1/users/me/notifications?offset=2", accessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &notifications))
	require.Len(t, notifications, 1)
	
	recorder = server.do(t, http.MethodGet, "/v1/users/me/notifications?limit=500", accessToken, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	
	recorder = server.do(t, http.MethodGet, "/v1/users/me/notifications/unread-count", accessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"count":3}`, recorder.Body.String())
}

func TestMarkNotificationAsRead(t *testing.T) {
	server := newTestServer(t, nil)
	server.seedComment(t, "alice", 1)
	server.seedComment(t, "bob", 2)
	
	bobs, err := server.service.ListForRecipient(context.Background(), "bob", 10, 0)
	require.NoError(t, err)
	alices, err := server.service.ListForRecipient(context.Background(), "alice", 10, 0)
	require.NoError(t, err)
	accessToken := server.accessToken(t, "alice")
	
	testCases := []struct {
		name           string
		notificationID string
		wantStatus     int
	}{
		{name: "InvalidID", notificationID: "abc", wantStatus: http.StatusBadRequest},
		{name: "Unknown", notificationID: "999", wantStatus: http.StatusNotFound},
		{name: "OtherRecipient", notificationID: fmt.Sprint(bobs[0].ID), wantStatus: http.StatusNotFound},
		{name: "Own", notificationID: fmt.Sprint(alices[0].ID), wantStatus: http.StatusOK},
		{name: "OwnAgain", notificationID: fmt.Sprint(alices[0].ID), wantStatus: http.StatusOK},
	}
	
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := server.do(t, http.MethodPatch, "/v1/users/me/notifications/"+tc.notificationID+"/read", accessToken, nil)
			require.Equal(t, tc.wantStatus, recorder.Code, recorder.Body.String())
		})
	}
	
	count, err := server.service.UnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	
	count, err = server.service.UnreadCount(context.Background(), "alice")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMarkAllNotificationsAsRead(t *testing.T) {
	server := newTestServer(t, nil)
	server.seedComment(t, "alice", 1)
	server.seedComment(t, "alice", 2)
	accessToken := server.accessToken(t, "alice")
	
	recorder := server.do(t, http.MethodPatch, "/v1/users/me/notifications/read-all", accessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"updated":2}`, recorder.Body.String())
	
	recorder = server.do(t, http.MethodPatch, "/v1/users/me/notifications/read-all", accessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"updated":0}`, recorder.Body.String())
}

func TestVerifyAccessToken(t *testing.T) {
	server := newTestServer(t, nil)
	
	recorder := server.do(t, http.MethodPost, "/v1/tokens/verify", "", verifyAccessTokenRequest{AccessToken: server.accessToken(t, "alice")})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"id":"alice"}`, recorder.Body.String())
	
	recorder = server.do(t, http.MethodPost, "/v1/tokens/verify", "", verifyAccessTokenRequest{AccessToken: "forged"})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	
	recorder = server.do(t, http.MethodPost, "/v1/tokens/verify", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t, nil)
	
	recorder := server.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok","database":"ok"}`, recorder.Body.String())
	
	require.NoError(t, server.store.Close())
	recorder = server.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
