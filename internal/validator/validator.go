package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Notification text limits.
const (
	MaxTitleLength   = 255
	MaxMessageLength = 2000
	
	// MaxTextBytes bounds the JSON-encoded title and message together. The
	// insert trigger sends the whole row through pg_notify, whose payload must
	// stay under 8000 bytes; the other columns take well under 1000.
	MaxTextBytes = 7000
)

// ValidateString checks the length of value in characters, not bytes.
func ValidateString(value string, minLength int, maxLength int) error {
	n := utf8.RuneCountInString(value)
	if n < minLength || n > maxLength {
		return fmt.Errorf("must contain from %d to %d characters", minLength, maxLength)
	}
	
	return nil
}

func ValidateNotificationTitle(value string) error {
	if err := ValidateString(value, 1, MaxTitleLength); err != nil {
		return fmt.Errorf("title %w", err)
	}
	return nil
}

func ValidateNotificationMessage(value string) error {
	if err := ValidateString(value, 1, MaxMessageLength); err != nil {
		return fmt.Errorf("message %w", err)
	}
	return nil
}

// ValidateNotificationSize checks the byte budget of title and message once
// encoded as JSON strings, the way they appear in the change feed payload.
func ValidateNotificationSize(title, message string) error {
	size := encodedLength(title) + encodedLength(message)
	if size > MaxTextBytes {
		return fmt.Errorf("title and message take %d bytes once encoded, at most %d allowed", size, MaxTextBytes)
	}
	return nil
}

func encodedLength(value string) int {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return len(value)
	}
	// Encode appends a newline.
	return buf.Len() - 1
}
