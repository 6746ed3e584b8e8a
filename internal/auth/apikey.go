package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const apiKeyScheme = "vv"

// ErrMalformedAPIKey is returned when a key does not have the vv_<prefix>_<secret> shape.
var ErrMalformedAPIKey = errors.New("malformed api key")

// GenerateAPIKey returns a new key of the form vv_<prefix>_<secret> and its prefix.
func GenerateAPIKey() (key, prefix string, err error) {
	p := make([]byte, 4)
	s := make([]byte, 24)
	if _, err := rand.Read(p); err != nil {
		return "", "", fmt.Errorf("failed to generate api key prefix: %w", err)
	}
	if _, err := rand.Read(s); err != nil {
		return "", "", fmt.Errorf("failed to generate api key secret: %w", err)
	}
	prefix = hex.EncodeToString(p)
	return fmt.Sprintf("%s_%s_%s", apiKeyScheme, prefix, hex.EncodeToString(s)), prefix, nil
}

// APIKeyPrefix extracts the lookup prefix from a key.
func APIKeyPrefix(key string) (string, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 || parts[0] != apiKeyScheme || len(parts[1]) != 8 || parts[2] == "" {
		return "", ErrMalformedAPIKey
	}
	return parts[1], nil
}

// HashAPIKey generates a bcrypt hash of the key.
func HashAPIKey(key string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hashed), nil
}

// CheckAPIKeyHash compares a presented key with a stored bcrypt hash.
func CheckAPIKeyHash(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
