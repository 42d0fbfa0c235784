package token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func TestJWTMaker(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)
	
	token, payload, err := maker.CreateToken("alice", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice", payload.Subject)
	
	verified, err := maker.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", verified.Subject)
	require.Equal(t, payload.ID, verified.ID)
}

func TestJWTMakerRejectsShortKey(t *testing.T) {
	_, err := NewJWTMaker("short")
	require.Error(t, err)
}

func TestJWTMakerExpiredToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)
	
	token, _, err := maker.CreateToken("alice", -time.Minute)
	require.NoError(t, err)
	
	_, err = maker.VerifyToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTMakerRejectsOtherAlgorithms(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)
	
	payload, err := NewPayload("alice", time.Minute)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, payload).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	
	_, err = maker.VerifyToken(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
	
	otherMaker, err := NewJWTMaker("fedcba9876543210fedcba9876543210")
	require.NoError(t, err)
	foreign, _, err := otherMaker.CreateToken("alice", time.Minute)
	require.NoError(t, err)
	
	_, err = maker.VerifyToken(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMakerVerifier(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)
	verifier := NewMakerVerifier(maker)
	
	token, _, err := maker.CreateToken("alice", time.Minute)
	require.NoError(t, err)
	
	recipientID, err := verifier.VerifyRecipient(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "alice", recipientID)
	
	_, err = verifier.VerifyRecipient(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemoteVerifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req verifyAccessTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		
		w.Header().Set("Content-Type", "application/json")
		switch req.AccessToken {
		case "good":
			w.Write([]byte(`{"id":"alice","email":"alice@example.com"}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token is invalid"}`))
		}
	}))
	t.Cleanup(server.Close)
	
	verifier := NewRemoteVerifier(server.URL + "/v1/tokens/verify")
	t.Cleanup(func() { verifier.Close() })
	ctx := context.Background()
	
	recipientID, err := verifier.VerifyRecipient(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "alice", recipientID)
	
	_, err = verifier.VerifyRecipient(ctx, "bad")
	require.ErrorIs(t, err, ErrInvalidToken)
	
	_, err = verifier.VerifyRecipient(ctx, "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidToken)
}
