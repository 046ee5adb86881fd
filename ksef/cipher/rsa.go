package cipher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/go-faster/errors"
)

// Scheme selects the asymmetric padding used to protect the KSeF token and
// the export symmetric key. The choice is static configuration, never a
// per-call decision.
type Scheme int

const (
	// RSAOAEP is RSA-OAEP with SHA-256, required by the v2 API.
	RSAOAEP Scheme = iota
	// RSAPKCS1 is RSA PKCS#1 v1.5, kept for the legacy endpoints.
	RSAPKCS1
)

func (s Scheme) String() string {
	switch s {
	case RSAOAEP:
		return "rsa-oaep"
	case RSAPKCS1:
		return "rsa-pkcs1"
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

// ParseScheme maps a configuration value onto a Scheme.
func ParseScheme(v string) (Scheme, error) {
	switch v {
	case "", "rsa-oaep", "oaep":
		return RSAOAEP, nil
	case "rsa-pkcs1", "pkcs1":
		return RSAPKCS1, nil
	}
	return RSAOAEP, errors.Errorf("unknown encryption scheme: %q", v)
}

// LoadPublicKey reads an RSA public key from a PEM file (PKIX format), as
// published by the ministry for each environment.
func LoadPublicKey(fileName string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read public key file %s", fileName)
	}

	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.Errorf("no PEM block in %s", fileName)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse public key from %s", fileName)
	}

	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Errorf("%s does not contain an RSA public key (got %T)", fileName, parsed)
	}
	return pub, nil
}

// TokenEncryptor encrypts material for the platform with its public key
// under the configured scheme.
type TokenEncryptor struct {
	pub    *rsa.PublicKey
	scheme Scheme
}

func NewTokenEncryptor(pub *rsa.PublicKey, scheme Scheme) *TokenEncryptor {
	return &TokenEncryptor{pub: pub, scheme: scheme}
}

func NewTokenEncryptorFromFile(fileName string, scheme Scheme) (*TokenEncryptor, error) {
	pub, err := LoadPublicKey(fileName)
	if err != nil {
		return nil, err
	}
	return &TokenEncryptor{pub: pub, scheme: scheme}, nil
}

func (e *TokenEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	switch e.scheme {
	case RSAOAEP:
		out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, e.pub, plaintext, nil)
		if err != nil {
			return nil, errors.Wrap(err, "rsa-oaep encrypt")
		}
		return out, nil
	case RSAPKCS1:
		out, err := rsa.EncryptPKCS1v15(rand.Reader, e.pub, plaintext)
		if err != nil {
			return nil, errors.Wrap(err, "rsa-pkcs1 encrypt")
		}
		return out, nil
	}
	return nil, errors.Errorf("unsupported scheme: %v", e.scheme)
}

// EncryptToken encrypts the pre-shared KSeF token bound to the challenge
// timestamp, wire format "token|timestampMillis".
func (e *TokenEncryptor) EncryptToken(token string, timestamp time.Time) ([]byte, error) {
	payload := fmt.Sprintf("%s|%d", token, timestamp.UnixMilli())
	return e.Encrypt([]byte(payload))
}
