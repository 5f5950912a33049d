package handlers

import (
	"fmt"
	"strings"
)

const (
	maxNameLength  = 200
	maxQueryLength = 500
)

// validateCardName rejects empty, oversized, and path-traversal shaped input
// before it reaches the resolver.
func validateCardName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%s must be %d characters or fewer", field, maxNameLength)
	}
	if strings.Contains(name, "../") || strings.Contains(name, "..\\") {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	if strings.ContainsAny(name, "\x00\n\r") {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	if len(query) > maxQueryLength {
		return fmt.Errorf("query must be %d characters or fewer", maxQueryLength)
	}
	return nil
}
