package util

import (
	"fmt"
	
	"github.com/lithammer/shortuuid/v4"
)

const (
	alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// GenerateConnectionID generates a connection identifier in the format "CONN-XXXXXXXXXX".
func GenerateConnectionID() string {
	id := shortuuid.NewWithAlphabet(alphabet)
	
	return fmt.Sprintf("CONN-%s", id[:10])
}
