// Package qr builds KSeF invoice verification links for fetched documents.
package qr

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/Filip850/ksef-fetch-demo/ksef"
)

// VerificationLink builds the KOD I link:
// https://{qr-host}/client-app/invoice/{NIP}/{DD-MM-YYYY}/{Base64URL(SHA256(xml))}
func VerificationLink(env ksef.Environment, nip string, issueDate time.Time, invoiceXML []byte) (string, error) {
	base, err := QRBaseURL(env.BaseURL())
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(invoiceXML)
	hash := base64.RawURLEncoding.EncodeToString(sum[:])
	date := issueDate.Format("02-01-2006")

	return fmt.Sprintf("%s/client-app/invoice/%s/%s/%s", strings.TrimRight(base, "/"), nip, date, hash), nil
}

// CertificateLink builds the KOD II link and signs "{host}{path}" with the
// seller certificate key (RSA-PSS salt 32 or ECDSA ASN.1).
func CertificateLink(env ksef.Environment, sellerNip, certSerial string, invoiceHash []byte, key crypto.PrivateKey) (string, error) {
	if len(invoiceHash) == 0 {
		return "", errors.New("invoice hash is empty")
	}

	base, err := QRBaseURL(env.BaseURL())
	if err != nil {
		return "", err
	}
	base = strings.TrimRight(base, "/")

	path := fmt.Sprintf(
		"/client-app/certificate/Nip/%s/%s/%s/%s",
		sellerNip,
		sellerNip,
		certSerial,
		base64.RawURLEncoding.EncodeToString(invoiceHash),
	)

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	signature, err := signBase64URL([]byte(u.Host+path), key)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s/%s", base, path, signature), nil
}

// QRBaseURL maps the API base URL onto the qr- host serving verification
// links.
func QRBaseURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", errors.Wrap(err, "invalid base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("base URL must include scheme and host, got: %q", base)
	}

	host := u.Host
	host = strings.Replace(host, "api-", "qr-", 1)
	host = strings.Replace(host, "api.", "qr.", 1)

	u.Host = host
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func signBase64URL(data []byte, key crypto.PrivateKey) (string, error) {
	digest := sha256.Sum256(data)

	switch k := key.(type) {
	case *rsa.PrivateKey:
		sig, err := rsa.SignPSS(rand.Reader, k, crypto.SHA256, digest[:], &rsa.PSSOptions{
			SaltLength: 32,
			Hash:       crypto.SHA256,
		})
		if err != nil {
			return "", errors.Wrap(err, "rsa-pss sign")
		}
		return base64.RawURLEncoding.EncodeToString(sig), nil

	case *ecdsa.PrivateKey:
		sig, err := ecdsa.SignASN1(rand.Reader, k, digest[:])
		if err != nil {
			return "", errors.Wrap(err, "ecdsa sign")
		}
		return base64.RawURLEncoding.EncodeToString(sig), nil

	default:
		return "", errors.Errorf("unsupported private key type: %T", key)
	}
}
