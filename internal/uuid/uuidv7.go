// Package uuid generates time-ordered identifiers for request tracing and
// backup artifacts.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. UUIDv7 sorts by creation time, so request
// ids in the log line up with the order requests arrived. Falls back to a
// random v4 if the clock-based generator fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// Version returns the UUID version of s, or 0 if s is not a UUID.
func Version(s string) int {
	id, err := googleuuid.Parse(s)
	if err != nil {
		return 0
	}
	return int(id.Version())
}
