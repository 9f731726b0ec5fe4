package config

import "os"

// Get returns the first non-empty environment variable from the provided keys.
func Get(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

// GetOr is Get with a fallback for when none of the keys are set.
func GetOr(fallback string, keys ...string) string {
	if value := Get(keys...); value != "" {
		return value
	}
	return fallback
}
