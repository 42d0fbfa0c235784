package notification

// CommentEvent describes a comment that was just written on a product or an
// article. Exactly one of ProductID and ArticleID is set.
type CommentEvent struct {
	ContentOwnerID string `json:"content_owner_id" binding:"required"`
	CommenterID    string `json:"commenter_id" binding:"required"`
	CommenterName  string `json:"commenter_name"`
	CommentID      int64  `json:"comment_id" binding:"required"`
	ProductID      *int64 `json:"product_id"`
	ArticleID      *int64 `json:"article_id"`
	ContentTitle   string `json:"content_title"`
}

// LikeEvent describes a user liking someone's product or article.
type LikeEvent struct {
	ContentOwnerID string `json:"content_owner_id" binding:"required"`
	LikerID        string `json:"liker_id" binding:"required"`
	LikerName      string `json:"liker_name"`
	ProductID      *int64 `json:"product_id"`
	ArticleID      *int64 `json:"article_id"`
	ContentTitle   string `json:"content_title"`
}

// PriceChangeEvent describes a product price update.
type PriceChangeEvent struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	ProductName string `json:"product_name"`
	OwnerID     string `json:"owner_id"`
	OldPrice    int64  `json:"old_price"`
	NewPrice    int64  `json:"new_price"`
}
