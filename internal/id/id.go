package id

import "crypto/rand"

const chars = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID creates a unique 16-character alphanumeric ID.
func GenerateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	for i := range b {
		b[i] = chars[b[i]%byte(len(chars))]
	}
	return string(b)
}

// WithPrefix returns a generated ID carrying an entity tag, e.g.
// WithPrefix("crs") -> "crs_x7k2...". The tag makes the entity type
// visible in logs and exported data.
func WithPrefix(prefix string) string {
	return prefix + "_" + GenerateID()
}
