package services

import "strings"

// normaliseTags trims, deduplicates and drops empty tags while preserving order.
func normaliseTags(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

// normaliseEmail lowercases and trims an address for storage and lookups.
func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
