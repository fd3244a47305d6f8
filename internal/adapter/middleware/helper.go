package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// buildKey scopes a client key to the concrete request path, so the same key
// on /tasks/a/approve and /tasks/b/approve never collides.
func buildKey(method, path, idempKey string) string {
	return strings.ToLower(method) + ":" + path + ":" + strings.ToLower(idempKey)
}
