// Package env reads settings from environment variables.
package env

import (
	"os"
	"strings"
)

// GetStringEnv returns an environment variable by the given key, or returns the given fallback value if the env variable is not present.
func GetStringEnv(key string, fallback string) string {
	if val, ok := LookupEnv(key); ok {
		return val
	}

	return fallback
}

// LookupEnv behaves the same as `os.LookupEnv`, but additionally trims spaces in the value.
// A variable set to an empty value is reported as not present.
func LookupEnv(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)

	isPresent := ok && val != ""

	return val, isPresent
}

// IsSet reports whether the variable is present with a non-empty value, e.g. NO_COLOR.
func IsSet(key string) bool {
	_, ok := LookupEnv(key)
	return ok
}
