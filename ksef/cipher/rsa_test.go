package cipher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func writePublicKeyPEM(t *testing.T, pub *rsa.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "publicKey.pem")
	err = os.WriteFile(file, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600)
	require.NoError(t, err)
	return file
}

func TestParseScheme(t *testing.T) {
	for _, v := range []string{"", "rsa-oaep", "oaep"} {
		s, err := ParseScheme(v)
		require.NoError(t, err)
		assert.Equal(t, RSAOAEP, s)
	}
	for _, v := range []string{"rsa-pkcs1", "pkcs1"} {
		s, err := ParseScheme(v)
		require.NoError(t, err)
		assert.Equal(t, RSAPKCS1, s)
	}

	_, err := ParseScheme("des")
	assert.Error(t, err)
}

func TestLoadPublicKey(t *testing.T) {
	key := testKey(t)
	file := writePublicKeyPEM(t, &key.PublicKey)

	pub, err := LoadPublicKey(file)
	require.NoError(t, err)
	assert.True(t, pub.Equal(&key.PublicKey))
}

func TestLoadPublicKey_MissingFile(t *testing.T) {
	_, err := LoadPublicKey(filepath.Join(t.TempDir(), "nope.pem"))
	assert.Error(t, err)
}

func TestLoadPublicKey_NotPEM(t *testing.T) {
	file := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(file, []byte("not a pem"), 0o600))

	_, err := LoadPublicKey(file)
	assert.Error(t, err)
}

func TestEncryptToken_OAEP(t *testing.T) {
	key := testKey(t)
	enc := NewTokenEncryptor(&key.PublicKey, RSAOAEP)

	ts := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	ct, err := enc.EncryptToken("sekretny-token", ts)
	require.NoError(t, err)

	plain, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, key, ct, nil)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("sekretny-token|%d", ts.UnixMilli()), string(plain))
}

func TestEncryptToken_PKCS1(t *testing.T) {
	key := testKey(t)
	enc := NewTokenEncryptor(&key.PublicKey, RSAPKCS1)

	ts := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	ct, err := enc.EncryptToken("sekretny-token", ts)
	require.NoError(t, err)

	plain, err := rsa.DecryptPKCS1v15(rand.Reader, key, ct)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("sekretny-token|%d", ts.UnixMilli()), string(plain))
}

func TestNewTokenEncryptorFromFile(t *testing.T) {
	key := testKey(t)
	file := writePublicKeyPEM(t, &key.PublicKey)

	enc, err := NewTokenEncryptorFromFile(file, RSAOAEP)
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	plain, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, key, ct, nil)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plain))
}

func TestNewContextFactory(t *testing.T) {
	key := testKey(t)
	factory := NewContextFactory(NewTokenEncryptor(&key.PublicKey, RSAOAEP))

	ctx, err := factory()
	require.NoError(t, err)
	assert.Len(t, ctx.Key, 32)
	assert.Len(t, ctx.IV, 16)

	unwrapped, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, key, ctx.EncryptedKey, nil)
	require.NoError(t, err)
	assert.Equal(t, ctx.Key, unwrapped, "wrapped key must unwrap to the session key")

	next, err := factory()
	require.NoError(t, err)
	assert.NotEqual(t, ctx.Key, next.Key, "each export gets fresh material")
}
