package utils

import (
	"fmt"
	"regexp"
)

// ValidateQuantity validates a requested line item quantity
func ValidateQuantity(qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive: %v", qty)
	}

	if qty > 1000000 {
		return fmt.Errorf("quantity exceeds maximum limit: %v", qty)
	}

	return nil
}

// ValidateUnitPrice validates an estimated unit price
func ValidateUnitPrice(price float64) error {
	if price < 0 {
		return fmt.Errorf("unit price must not be negative: %.2f", price)
	}

	return nil
}

// SanitizeString removes potentially harmful characters
func SanitizeString(s string) string {
	// Remove control characters and potential SQL injection patterns
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
	return sanitized
}
