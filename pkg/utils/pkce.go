package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	stateAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	stateLength   = 32

	// 32 random bytes render as 64 hex chars, inside RFC 7636's 43-128 range.
	verifierBytes = 32
)

// GenerateState returns a fresh anti-forgery token of alphanumeric characters.
func GenerateState() (string, error) {
	state, err := gonanoid.Generate(stateAlphabet, stateLength)
	if err != nil {
		return "", fmt.Errorf("state: %w", err)
	}
	return state, nil
}

// GenerateCodeVerifier returns a PKCE code verifier rendered as lowercase hex.
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, verifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("pkce: failed to generate verifier: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CodeChallenge returns the S256 challenge for verifier: base64url without padding.
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
