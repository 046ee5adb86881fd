package cipher

// EncryptionContext holds the symmetric material for one export: the raw
// key/IV used to decrypt downloaded parts and the RSA-wrapped key sent to the
// platform in the export request.
type EncryptionContext struct {
	Key          []byte
	IV           []byte
	EncryptedKey []byte
}

// ContextFactory produces a fresh EncryptionContext per export job.
type ContextFactory func() (*EncryptionContext, error)

// NewContextFactory builds a factory generating a random AES-256 key and IV
// and wrapping the key with the platform public key.
func NewContextFactory(enc *TokenEncryptor) ContextFactory {
	return func() (*EncryptionContext, error) {
		key, err := GenerateKey256()
		if err != nil {
			return nil, err
		}
		iv, err := GenerateIV()
		if err != nil {
			return nil, err
		}
		wrapped, err := enc.Encrypt(key)
		if err != nil {
			return nil, err
		}
		return &EncryptionContext{Key: key, IV: iv, EncryptedKey: wrapped}, nil
	}
}
