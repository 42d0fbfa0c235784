package util

import (
	"strings"
	"testing"
	
	"github.com/stretchr/testify/require"
)

func TestFormatVND(t *testing.T) {
	require.Equal(t, "10.000 ₫", FormatVND(10000))
	require.Equal(t, "1.000.000 ₫", FormatVND(1000000))
	require.Equal(t, "500 ₫", FormatVND(500))
}

func TestTruncateContent(t *testing.T) {
	require.Equal(t, "Gundam", TruncateContent("Gundam", 10))
	require.Equal(t, "Bình...", TruncateContent("Bình luận", 4))
}

func TestGenerateConnectionID(t *testing.T) {
	a, b := GenerateConnectionID(), GenerateConnectionID()
	require.True(t, strings.HasPrefix(a, "CONN-"))
	require.Len(t, a, len("CONN-")+10)
	require.NotEqual(t, a, b)
}
