package notification

import (
	"fmt"
	
	"github.com/katatrina/gundam-notification/internal/util"
)

const maxContentTitleLength = 50

func displayName(name string) string {
	if name == "" {
		return "Một người dùng"
	}
	return name
}

func contentLabel(productID *int64, title string) string {
	kind := "bài viết"
	if productID != nil {
		kind = "sản phẩm"
	}
	if title == "" {
		return kind + " của bạn"
	}
	return fmt.Sprintf("%s \"%s\"", kind, util.TruncateContent(title, maxContentTitleLength))
}

func commentTemplate(e CommentEvent) (title, message string) {
	title = "Bình luận mới"
	message = fmt.Sprintf("%s đã bình luận về %s.", displayName(e.CommenterName), contentLabel(e.ProductID, e.ContentTitle))
	return
}

func likeTemplate(e LikeEvent) (title, message string) {
	title = "Lượt thích mới"
	message = fmt.Sprintf("%s đã thích %s.", displayName(e.LikerName), contentLabel(e.ProductID, e.ContentTitle))
	return
}

func priceChangeTemplate(e PriceChangeEvent) (title, message string) {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("#%d", e.ProductID)
	}
	
	title = "Sản phẩm bạn thích đã thay đổi giá"
	if e.NewPrice < e.OldPrice {
		title = "Sản phẩm bạn thích đang giảm giá"
	}
	message = fmt.Sprintf("Giá của %s đã thay đổi từ %s thành %s.",
		util.TruncateContent(name, maxContentTitleLength),
		util.FormatVND(e.OldPrice),
		util.FormatVND(e.NewPrice))
	return
}
