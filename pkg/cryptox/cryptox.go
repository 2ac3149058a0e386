package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
)

const keySize = 16 // AES-128

// Cipher is a stateless, concurrency-safe AES-128-CTR encryptor/decryptor.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

// New builds a Cipher from a passphrase and an IV.
//
// The passphrase is padded with '0' bytes or truncated to exactly 16
// bytes. The IV must be exactly 16 bytes; any other length fails
// initialisation, which fails server startup (§6).
func New(passphrase, iv string) (*Cipher, error) {
	if len(iv) != keySize {
		return nil, fmt.Errorf("cryptox: iv must be exactly %d bytes, got %d", keySize, len(iv))
	}

	key := normalizeKey(passphrase)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: new cipher: %w", err)
	}

	return &Cipher{block: block, iv: []byte(iv)}, nil
}

func normalizeKey(passphrase string) []byte {
	key := make([]byte, keySize)
	for i := range key {
		key[i] = '0'
	}
	copy(key, passphrase)
	return key
}

// Encrypt returns the AES-128-CTR ciphertext of plaintext. Total and pure:
// it never fails and carries no authentication tag.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	stream := cipher.NewCTR(c.block, c.iv)
	out := make([]byte, len(plaintext))
	stream.XORKeyStream(out, plaintext)
	return out
}

// Decrypt returns the AES-128-CTR plaintext of ciphertext. Since CTR is a
// symmetric stream cipher keyed on a fixed IV, decryption is the same
// keystream XOR as encryption: any ciphertext decodes to *some* plaintext.
func (c *Cipher) Decrypt(ciphertext []byte) []byte {
	return c.Encrypt(ciphertext)
}

// EncryptName encrypts a plaintext name and hex-encodes the result
// (lowercase, two characters per byte) so it is a valid path component on
// every filesystem.
func (c *Cipher) EncryptName(name string) string {
	return hex.EncodeToString(c.Encrypt([]byte(name)))
}

// DecryptName is the inverse of EncryptName.
func (c *Cipher) DecryptName(encoded string) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("cryptox: decode name: %w", err)
	}
	return string(c.Decrypt(raw)), nil
}
