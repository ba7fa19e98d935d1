package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// sealedPrefix marks values written by AesGcmCryptoService so plaintext rows
// stored before a key was configured can still be read.
const sealedPrefix = "gcm:"

type Service interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(stored string) ([]byte, error)
}

// New returns an AES-GCM service for hexKey, or a NoopService when hexKey is empty.
func New(hexKey string) (Service, error) {
	if hexKey == "" {
		return NoopService{}, nil
	}
	return NewAesGcmCryptoService(hexKey)
}

// NoopService stores blobs as plain text (dev/test mode).
type NoopService struct{}

func (NoopService) Encrypt(plaintext []byte) (string, error) { return string(plaintext), nil }

func (NoopService) Decrypt(stored string) ([]byte, error) {
	if len(stored) >= len(sealedPrefix) && stored[:len(sealedPrefix)] == sealedPrefix {
		return nil, errors.New("value is encrypted but no encryption key is configured")
	}
	return []byte(stored), nil
}

type AesGcmCryptoService struct {
	gcm cipher.AEAD
}

func NewAesGcmCryptoService(hexKey string) (*AesGcmCryptoService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AesGcmCryptoService{gcm: gcm}, nil
}

func (c *AesGcmCryptoService) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// nonce || ciphertext || tag
	sealed := c.gcm.Seal(nonce, nonce, plaintext, nil)
	return sealedPrefix + hex.EncodeToString(sealed), nil
}

func (c *AesGcmCryptoService) Decrypt(stored string) ([]byte, error) {
	if len(stored) < len(sealedPrefix) || stored[:len(sealedPrefix)] != sealedPrefix {
		return []byte(stored), nil
	}

	buffer, err := hex.DecodeString(stored[len(sealedPrefix):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(buffer) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, cipherBytes := buffer[:nonceSize], buffer[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, cipherBytes, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plain, nil
}
