package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"
)

// Hash returns the hex SHA-256 digest of data. Input documents, layouts and
// file cache paths are all addressed by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns kind + ":" + Hash of the JSON encoding of parts. Parts
// are plain option structs, so encoding cannot fail.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
