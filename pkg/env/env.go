// Package env reads raw environment variables for the few knobs that must be
// available before config parsing, such as log formatting.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
