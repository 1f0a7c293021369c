package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SanitizeOrderID keeps only the characters the gateway accepts in an order id: [A-Za-z0-9_-]
func SanitizeOrderID(orderID string) string {
	var b strings.Builder
	b.Grow(len(orderID))
	for i := 0; i < len(orderID); i++ {
		c := orderID[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NewOrderID generates a unique order id that survives sanitization unchanged
func NewOrderID() string {
	return uuid.New().String()
}
