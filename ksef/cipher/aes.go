package cipher

import (
	"bytes"
	aes2 "crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// GenerateKey256 generuje losowy 256-bitowy klucz (32 bajty)
func GenerateKey256() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("błąd generowania losowego klucza: %w", err)
	}
	return key, nil
}

// GenerateIV generuje losowy 16-bajtowy wektor inicjalizacji
func GenerateIV() ([]byte, error) {
	iv := make([]byte, 16)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("błąd generowania losowego IV: %w", err)
	}
	return iv, nil
}

// EncryptAES256CBC encrypts content using AES-256-CBC with PKCS#7 padding,
// the scheme the platform mandates for package payloads.
func EncryptAES256CBC(content, key, iv []byte) ([]byte, error) {
	if err := checkKeyAndIV(key, iv); err != nil {
		return nil, err
	}

	block, err := aes2.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("NewCipher: %w", err)
	}

	padded := pkcs7Pad(content, aes2.BlockSize)
	out := make([]byte, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out, padded)
	return out, nil
}

// DecryptAES256CBC decrypts an AES-256-CBC buffer and strips validated PKCS#7
// padding. Each package part is decrypted independently with the same key/IV.
func DecryptAES256CBC(ciphertext, key, iv []byte) ([]byte, error) {
	if err := checkKeyAndIV(key, iv); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes2.BlockSize != 0 {
		return nil, fmt.Errorf("dane nie są wielokrotnością rozmiaru bloku")
	}

	block, err := aes2.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("NewCipher: %w", err)
	}
	mode := cipher.NewCBCDecrypter(block, iv)

	plain := make([]byte, len(ciphertext))
	mode.CryptBlocks(plain, ciphertext)

	return pkcs7Unpad(plain)
}

func checkKeyAndIV(key, iv []byte) error {
	if len(key) != 32 {
		return fmt.Errorf("nieprawidłowa długość klucza: %d, oczekiwano 32 bajty (AES-256)", len(key))
	}
	if len(iv) != aes2.BlockSize {
		return fmt.Errorf("nieprawidłowa długość IV: %d, oczekiwano %d", len(iv), aes2.BlockSize)
	}
	return nil
}

func pkcs7Pad(src []byte, blockSize int) []byte {
	padLen := blockSize - (len(src) % blockSize)
	if padLen == 0 {
		padLen = blockSize
	}
	// Copy into a fresh buffer: appending to src directly would write the
	// padding into the caller's backing array when src has spare capacity.
	padded := make([]byte, 0, len(src)+padLen)
	padded = append(padded, src...)
	return append(padded, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, fmt.Errorf("puste dane po deszyfrowaniu")
	}
	pad := int(plain[len(plain)-1])
	if pad <= 0 || pad > aes2.BlockSize || pad > len(plain) {
		return nil, fmt.Errorf("niepoprawny padding")
	}
	for i := 0; i < pad; i++ {
		if plain[len(plain)-1-i] != byte(pad) {
			return nil, fmt.Errorf("niepoprawny padding")
		}
	}
	return plain[:len(plain)-pad], nil
}
