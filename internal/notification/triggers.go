package notification

import (
	"context"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/rs/zerolog/log"
)

// The Notify* methods are called by content handlers after their own write
// succeeded. They never return an error: notifications are a side effect and
// a failure here is logged, not propagated to the triggering request.

// NotifyOnComment tells the content owner that someone else commented.
// It reports whether a notification was created.
func (s *Service) NotifyOnComment(ctx context.Context, e CommentEvent) bool {
	if e.ContentOwnerID == e.CommenterID {
		return false
	}
	
	title, message := commentTemplate(e)
	_, err := s.Create(ctx, db.CreateNotificationParams{
		RecipientID:      e.ContentOwnerID,
		Type:             db.NotificationTypeComment,
		Title:            title,
		Message:          message,
		RelatedProductID: e.ProductID,
		RelatedArticleID: e.ArticleID,
		RelatedCommentID: &e.CommentID,
	})
	if err != nil {
		log.Error().Err(err).
			Str("recipient_id", e.ContentOwnerID).
			Int64("comment_id", e.CommentID).
			Msg("failed to create comment notification")
		return false
	}
	
	return true
}

// NotifyOnLike tells the content owner that someone else liked their content.
func (s *Service) NotifyOnLike(ctx context.Context, e LikeEvent) bool {
	if e.ContentOwnerID == e.LikerID {
		return false
	}
	
	title, message := likeTemplate(e)
	_, err := s.Create(ctx, db.CreateNotificationParams{
		RecipientID:      e.ContentOwnerID,
		Type:             db.NotificationTypeLike,
		Title:            title,
		Message:          message,
		RelatedProductID: e.ProductID,
		RelatedArticleID: e.ArticleID,
	})
	if err != nil {
		log.Error().Err(err).
			Str("recipient_id", e.ContentOwnerID).
			Str("liker_id", e.LikerID).
			Msg("failed to create like notification")
		return false
	}
	
	return true
}

// NotifyOnPriceChange tells every user who liked the product that its price
// changed. The owner is never notified about their own product. It returns
// the number of notifications created.
func (s *Service) NotifyOnPriceChange(ctx context.Context, e PriceChangeEvent) int {
	if e.OldPrice == e.NewPrice {
		return 0
	}
	
	likerIDs, err := s.store.ListProductLikerIDs(ctx, e.ProductID)
	if err != nil {
		log.Error().Err(err).Int64("product_id", e.ProductID).Msg("failed to list product likers")
		return 0
	}
	
	title, message := priceChangeTemplate(e)
	productID := e.ProductID
	created := 0
	
	for _, likerID := range likerIDs {
		if likerID == e.OwnerID {
			continue
		}
		
		_, err := s.Create(ctx, db.CreateNotificationParams{
			RecipientID:      likerID,
			Type:             db.NotificationTypePriceChange,
			Title:            title,
			Message:          message,
			RelatedProductID: &productID,
		})
		if err != nil {
			log.Error().Err(err).
				Str("recipient_id", likerID).
				Int64("product_id", e.ProductID).
				Msg("failed to create price change notification")
			continue
		}
		created++
	}
	
	log.Info().
		Int64("product_id", e.ProductID).
		Int("likers", len(likerIDs)).
		Int("created", created).
		Msg("price change notifications created")
	
	return created
}

// NotifySystem sends a platform message to a single recipient.
func (s *Service) NotifySystem(ctx context.Context, recipientID, title, message string) bool {
	_, err := s.Create(ctx, db.CreateNotificationParams{
		RecipientID: recipientID,
		Type:        db.NotificationTypeSystem,
		Title:       title,
		Message:     message,
	})
	if err != nil {
		log.Error().Err(err).Str("recipient_id", recipientID).Msg("failed to create system notification")
		return false
	}
	
	return true
}
