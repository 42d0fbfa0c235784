package util

import (
	"github.com/dustin/go-humanize"
)

// FormatVND chuyển đổi số tiền từ int64 sang chuỗi định dạng VND.
// Ví dụ: 1000000 -> "1.000.000 ₫".
func FormatVND(amount int64) string {
	return humanize.FormatInteger("#.###,", int(amount)) + " ₫"
}

// TruncateContent shortens s to at most maxLength runes, appending "..." when cut.
func TruncateContent(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength]) + "..."
}

func Int64Pointer(i int64) *int64 {
	return &i
}
