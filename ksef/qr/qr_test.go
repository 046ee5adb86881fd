package qr

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filip850/ksef-fetch-demo/ksef"
)

func TestQRBaseURL(t *testing.T) {
	tests := []struct {
		base     string
		expected string
	}{
		{"https://api-test.ksef.mf.gov.pl/v2", "https://qr-test.ksef.mf.gov.pl"},
		{"https://api-demo.ksef.mf.gov.pl/v2", "https://qr-demo.ksef.mf.gov.pl"},
		{"https://api.ksef.mf.gov.pl/v2", "https://qr.ksef.mf.gov.pl"},
	}

	for _, tc := range tests {
		got, err := QRBaseURL(tc.base)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got)
	}
}

func TestQRBaseURL_Invalid(t *testing.T) {
	_, err := QRBaseURL("not-a-url")
	assert.Error(t, err)

	_, err = QRBaseURL("")
	assert.Error(t, err)
}

func TestVerificationLink(t *testing.T) {
	xml := []byte("<Faktura>treść</Faktura>")
	issueDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	link, err := VerificationLink(ksef.Test, "5265877635", issueDate, xml)
	require.NoError(t, err)

	sum := sha256.Sum256(xml)
	expected := fmt.Sprintf("https://qr-test.ksef.mf.gov.pl/client-app/invoice/5265877635/10-01-2024/%s",
		base64.RawURLEncoding.EncodeToString(sum[:]))
	assert.Equal(t, expected, link)
}

func TestCertificateLink_RSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("<Faktura/>"))
	link, err := CertificateLink(ksef.Test, "5265877635", "01F20B12ED", hash[:], key)
	require.NoError(t, err)

	prefix := fmt.Sprintf("https://qr-test.ksef.mf.gov.pl/client-app/certificate/Nip/5265877635/5265877635/01F20B12ED/%s/",
		base64.RawURLEncoding.EncodeToString(hash[:]))
	require.True(t, strings.HasPrefix(link, prefix), "link: %s", link)

	// The signature covers "{host}{path}" without the scheme and signature
	// segment.
	sig, err := base64.RawURLEncoding.DecodeString(link[len(prefix):])
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	signedPath := u.Path[:strings.LastIndex(u.Path, "/")]
	digest := sha256.Sum256([]byte(u.Host + signedPath))

	err = rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: 32,
		Hash:       crypto.SHA256,
	})
	assert.NoError(t, err)
}

func TestCertificateLink_ECDSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("<Faktura/>"))
	link, err := CertificateLink(ksef.Test, "5265877635", "01F20B12ED", hash[:], key)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	i := strings.LastIndex(u.Path, "/")
	sig, err := base64.RawURLEncoding.DecodeString(u.Path[i+1:])
	require.NoError(t, err)

	digest := sha256.Sum256([]byte(u.Host + u.Path[:i]))
	assert.True(t, ecdsa.VerifyASN1(&key.PublicKey, digest[:], sig))
}

func TestCertificateLink_EmptyHash(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = CertificateLink(ksef.Test, "5265877635", "01F20B12ED", nil, key)
	assert.Error(t, err)
}

func TestCertificateLink_UnsupportedKey(t *testing.T) {
	hash := sha256.Sum256([]byte("<Faktura/>"))
	_, err := CertificateLink(ksef.Test, "5265877635", "01F20B12ED", hash[:], "not a key")
	assert.Error(t, err)
}
