package duckdb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// RequestKey returns a stable fingerprint for a topic and description.
// Case and surrounding whitespace do not change the key, so repeated
// requests for the same book group together in v_topic_stats.
func RequestKey(topic, description string) string {
	payload := map[string]string{
		"description": normalizeText(description),
		"topic":       normalizeText(topic),
	}
	// encoding/json sorts map keys, which keeps the bytes canonical.
	data, _ := json.Marshal(payload)
	return fingerprintBytes(data)
}

func fingerprintBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func normalizeText(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
