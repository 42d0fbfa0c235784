package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	
	"github.com/gin-gonic/gin"
	"github.com/katatrina/gundam-notification/internal/token"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "Bearer"
	authorizationQueryKey   = "access_token"
	recipientIDKey          = "recipientID"
	internalKeyHeader       = "X-Internal-Key"
)

// authMiddleware authenticates the user. EventSource cannot send headers, so
// the token may also come from the access_token query parameter.
func authMiddleware(verifier token.Verifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		accessToken, err := accessTokenFromRequest(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}
		
		recipientID, err := verifier.VerifyRecipient(ctx, accessToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}
		
		ctx.Set(recipientIDKey, recipientID)
		ctx.Next()
	}
}

func accessTokenFromRequest(ctx *gin.Context) (string, error) {
	authorizationHeader := ctx.GetHeader(authorizationHeaderKey)
	if authorizationHeader == "" {
		if accessToken := ctx.Query(authorizationQueryKey); accessToken != "" {
			return accessToken, nil
		}
		return "", errors.New("authorization header is not provided")
	}
	
	fields := strings.Fields(authorizationHeader)
	if len(fields) != 2 {
		return "", errors.New("invalid authorization header format")
	}
	
	if fields[0] != authorizationTypeBearer {
		return "", errors.New("unsupported authorization header type")
	}
	
	return fields[1], nil
}

// internalKeyMiddleware guards the endpoints other marketplace services call.
func internalKeyMiddleware(internalKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		provided := ctx.GetHeader(internalKeyHeader)
		if internalKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(internalKey)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(ErrMissingInternalKey))
			return
		}
		
		ctx.Next()
	}
}

func authenticatedRecipientID(ctx *gin.Context) string {
	return ctx.MustGet(recipientIDKey).(string)
}
