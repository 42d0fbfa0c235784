package api

import (
	"net/http"
	
	"github.com/gin-gonic/gin"
)

type verifyAccessTokenRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type verifyAccessTokenResponse struct {
	ID string `json:"id"`
}

//	@Summary		Verify an access token
//	@Description	Returns the id of the user owning the token. Other services use it to identify notification recipients.
//	@Tags			tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyAccessTokenRequest	true	"Access token"
//	@Success		200		{object}	verifyAccessTokenResponse
//	@Failure		400		"Invalid request body"
//	@Failure		401		"Invalid or expired token"
//	@Router			/v1/tokens/verify [post]
func (server *Server) verifyAccessToken(c *gin.Context) {
	req := new(verifyAccessTokenRequest)
	
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	
	recipientID, err := server.verifier.VerifyRecipient(c.Request.Context(), req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(err))
		return
	}
	
	c.JSON(http.StatusOK, verifyAccessTokenResponse{ID: recipientID})
}
