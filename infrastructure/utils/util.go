package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}
