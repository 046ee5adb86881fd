package auth

import "time"

// TokenEncryptor protects the pre-shared KSeF token with the challenge
// timestamp before submission. Implemented by cipher.TokenEncryptor.
type TokenEncryptor interface {
	EncryptToken(token string, timestamp time.Time) ([]byte, error)
}
