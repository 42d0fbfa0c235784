package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	
	"resty.dev/v3"
)

// Verifier turns a credential presented by a client into the id of the
// recipient it belongs to.
type Verifier interface {
	VerifyRecipient(ctx context.Context, token string) (recipientID string, err error)
}

// MakerVerifier verifies tokens locally with a Maker.
type MakerVerifier struct {
	maker Maker
}

func NewMakerVerifier(maker Maker) *MakerVerifier {
	return &MakerVerifier{maker: maker}
}

func (v *MakerVerifier) VerifyRecipient(_ context.Context, token string) (string, error) {
	payload, err := v.maker.VerifyToken(token)
	if err != nil {
		return "", err
	}
	if payload.Subject == "" {
		return "", ErrInvalidToken
	}
	
	return payload.Subject, nil
}

const remoteVerifyTimeout = 5 * time.Second

// RemoteVerifier asks the marketplace auth endpoint (POST /v1/tokens/verify)
// who owns a token.
type RemoteVerifier struct {
	client    *resty.Client
	verifyURL string
}

type verifyAccessTokenRequest struct {
	AccessToken string `json:"access_token"`
}

type verifyAccessTokenResponse struct {
	ID string `json:"id"`
}

func NewRemoteVerifier(verifyURL string) *RemoteVerifier {
	client := resty.New().SetTimeout(remoteVerifyTimeout)
	
	return &RemoteVerifier{
		client:    client,
		verifyURL: verifyURL,
	}
}

func (v *RemoteVerifier) VerifyRecipient(ctx context.Context, token string) (string, error) {
	result := new(verifyAccessTokenResponse)
	
	res, err := v.client.R().
		SetContext(ctx).
		SetBody(&verifyAccessTokenRequest{AccessToken: token}).
		SetResult(result).
		Post(v.verifyURL)
	if err != nil {
		return "", fmt.Errorf("failed to call auth service: %w", err)
	}
	
	switch {
	case res.StatusCode() == http.StatusUnauthorized:
		return "", ErrInvalidToken
	case res.IsError():
		return "", fmt.Errorf("auth service responded with status %d", res.StatusCode())
	case result.ID == "":
		return "", errors.New("auth service returned no user id")
	}
	
	return result.ID, nil
}

// Close releases the underlying HTTP client.
func (v *RemoteVerifier) Close() error {
	return v.client.Close()
}
