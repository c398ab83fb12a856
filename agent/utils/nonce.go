package utils

import (
	"github.com/google/uuid"
)

// UUID generates new random UUID and returns it as a string.
func UUID() string {
	return uuid.New().String()
}
