package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash fingerprints an article by its title and source name. Case and
// surrounding whitespace are ignored so repeated fetches map to the same key.
func Hash(title, source string) string {
	content := strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(source))

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
