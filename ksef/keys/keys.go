// Package keys loads private keys used to sign certificate verification
// links (KOD II).
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/pem"
	"os"

	"github.com/go-faster/errors"
	"github.com/youmark/pkcs8"
)

const encryptedKeyBlock = "ENCRYPTED PRIVATE KEY"

// LoadEncryptedSignerFromFile reads a PEM file and returns the signer from
// its first encrypted PKCS#8 block.
func LoadEncryptedSignerFromFile(path string, password []byte) (crypto.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read key file %s", path)
	}
	return LoadEncryptedSigner(b, password)
}

// LoadEncryptedSigner scans pemBytes for the first ENCRYPTED PRIVATE KEY
// block, decrypts it with password and returns an RSA or ECDSA signer.
func LoadEncryptedSigner(pemBytes, password []byte) (crypto.Signer, error) {
	if len(password) == 0 {
		return nil, errors.New("password is required for an encrypted key")
	}

	block := findBlock(pemBytes, encryptedKeyBlock)
	if block == nil {
		return nil, errors.Errorf("no %s block found in PEM", encryptedKeyBlock)
	}

	keyAny, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt PKCS#8 key")
	}
	return asSigner(keyAny)
}

func findBlock(pemBytes []byte, blockType string) *pem.Block {
	for len(pemBytes) > 0 {
		var block *pem.Block
		block, pemBytes = pem.Decode(pemBytes)
		if block == nil {
			return nil
		}
		if block.Type == blockType {
			return block
		}
	}
	return nil
}

func asSigner(key any) (crypto.Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	}
	return nil, errors.Errorf("unsupported key type %T, want RSA or ECDSA", key)
}
