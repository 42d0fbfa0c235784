package api

import (
	"fmt"
	"net/http"
	
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/validator"
	"github.com/katatrina/gundam-notification/internal/worker"
	"github.com/rs/zerolog/log"
)

type notifyResponse struct {
	Created int  `json:"created"`
	Queued  bool `json:"queued"`
}

func createdCount(created bool) int {
	if created {
		return 1
	}
	return 0
}

//	@Summary		Report a new comment
//	@Description	Called by the comment service after a comment was stored. Notifies the content owner unless they wrote the comment.
//	@Tags			internal
//	@Accept			json
//	@Produce		json
//	@Param			X-Internal-Key	header		string						true	"Internal API key"
//	@Param			request			body		notification.CommentEvent	true	"Comment details"
//	@Success		202				{object}	notifyResponse
//	@Failure		400				"Invalid request body"
//	@Failure		401				"Invalid internal API key"
//	@Router			/internal/events/comment-created [post]
func (server *Server) handleCommentCreated(c *gin.Context) {
	req := new(notification.CommentEvent)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if violations := validateContext(req.ProductID, req.ArticleID); violations != nil {
		c.JSON(http.StatusBadRequest, failedValidationError(violations))
		return
	}
	
	created := server.notificationService.NotifyOnComment(c.Request.Context(), *req)
	c.JSON(http.StatusAccepted, notifyResponse{Created: createdCount(created)})
}

//	@Summary		Report a new like
//	@Tags			internal
//	@Accept			json
//	@Produce		json
//	@Param			X-Internal-Key	header		string					true	"Internal API key"
//	@Param			request			body		notification.LikeEvent	true	"Like details"
//	@Success		202				{object}	notifyResponse
//	@Failure		400				"Invalid request body"
//	@Failure		401				"Invalid internal API key"
//	@Router			/internal/events/product-liked [post]
func (server *Server) handleProductLiked(c *gin.Context) {
	req := new(notification.LikeEvent)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if violations := validateContext(req.ProductID, req.ArticleID); violations != nil {
		c.JSON(http.StatusBadRequest, failedValidationError(violations))
		return
	}
	
	created := server.notificationService.NotifyOnLike(c.Request.Context(), *req)
	c.JSON(http.StatusAccepted, notifyResponse{Created: createdCount(created)})
}

//	@Summary		Report a product price change
//	@Description	Notifies everyone who liked the product except its owner. The fan-out runs in the background worker when Redis is configured.
//	@Tags			internal
//	@Accept			json
//	@Produce		json
//	@Param			X-Internal-Key	header		string							true	"Internal API key"
//	@Param			request			body		notification.PriceChangeEvent	true	"Price change details"
//	@Success		202				{object}	notifyResponse
//	@Failure		400				"Invalid request body"
//	@Failure		401				"Invalid internal API key"
//	@Router			/internal/events/price-changed [post]
func (server *Server) handlePriceChanged(c *gin.Context) {
	req := new(notification.PriceChangeEvent)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	
	if req.OldPrice == req.NewPrice {
		c.JSON(http.StatusAccepted, notifyResponse{})
		return
	}
	
	if server.taskDistributor != nil {
		err := server.taskDistributor.DistributeTaskPriceChange(c.Request.Context(), &worker.PayloadPriceChange{PriceChangeEvent: *req},
			asynq.MaxRetry(0),
			asynq.Queue(worker.QueueDefault),
		)
		if err == nil {
			c.JSON(http.StatusAccepted, notifyResponse{Queued: true})
			return
		}
		
		// Không đưa được vào hàng đợi: xử lý ngay trong request
		log.Error().Err(err).Int64("product_id", req.ProductID).Msg("failed to enqueue price change, notifying inline")
	}
	
	created := server.notificationService.NotifyOnPriceChange(c.Request.Context(), *req)
	c.JSON(http.StatusAccepted, notifyResponse{Created: created})
}

type createSystemNotificationsRequest struct {
	RecipientIDs []string `json:"recipient_ids" binding:"required,min=1,max=1000,dive,required"`
	Title        string   `json:"title" binding:"required"`
	Message      string   `json:"message" binding:"required"`
}

//	@Summary		Send a system notification
//	@Description	Creates a SYSTEM notification for each recipient. With Redis configured, one task per recipient is queued instead.
//	@Tags			internal
//	@Accept			json
//	@Produce		json
//	@Param			X-Internal-Key	header		string								true	"Internal API key"
//	@Param			request			body		createSystemNotificationsRequest	true	"Notification content"
//	@Success		202				{object}	notifyResponse
//	@Failure		400				"Invalid request body"
//	@Failure		401				"Invalid internal API key"
//	@Router			/internal/notifications [post]
func (server *Server) createSystemNotifications(c *gin.Context) {
	req := new(createSystemNotificationsRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if violations := validateNotificationText(req.Title, req.Message); violations != nil {
		c.JSON(http.StatusBadRequest, failedValidationError(violations))
		return
	}
	
	if server.taskDistributor != nil {
		queued := 0
		for _, recipientID := range req.RecipientIDs {
			err := server.taskDistributor.DistributeTaskSendNotification(c.Request.Context(), &worker.PayloadSendNotification{
				RecipientID: recipientID,
				Title:       req.Title,
				Message:     req.Message,
			}, asynq.MaxRetry(3), asynq.Queue(worker.QueueDefault))
			if err != nil {
				err = fmt.Errorf("queued %d of %d notifications: %w", queued, len(req.RecipientIDs), err)
				c.JSON(http.StatusInternalServerError, errorResponse(err))
				return
			}
			queued++
		}
		
		c.JSON(http.StatusAccepted, notifyResponse{Queued: true})
		return
	}
	
	created := 0
	for _, recipientID := range req.RecipientIDs {
		if server.notificationService.NotifySystem(c.Request.Context(), recipientID, req.Title, req.Message) {
			created++
		}
	}
	c.JSON(http.StatusAccepted, notifyResponse{Created: created})
}

// validateContext rejects events that reference both a product and an article.
func validateContext(productID, articleID *int64) []*FieldViolation {
	if productID != nil && articleID != nil {
		return []*FieldViolation{fieldViolation("article_id", ErrBothContexts)}
	}
	return nil
}

// validateNotificationText applies the limits the service enforces on
// creation, so queued tasks never carry text that cannot be stored.
func validateNotificationText(title, message string) (violations []*FieldViolation) {
	if err := validator.ValidateNotificationTitle(title); err != nil {
		violations = append(violations, fieldViolation("title", err))
	}
	if err := validator.ValidateNotificationMessage(message); err != nil {
		violations = append(violations, fieldViolation("message", err))
	}
	if violations == nil {
		if err := validator.ValidateNotificationSize(title, message); err != nil {
			violations = append(violations, fieldViolation("message", err))
		}
	}
	return violations
}
