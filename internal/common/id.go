package common

import (
	"github.com/google/uuid"
)

// NewClipID generates a unique clip session ID with the "clip_" prefix
// Format: clip_<uuid>
func NewClipID() string {
	return "clip_" + uuid.New().String()
}
