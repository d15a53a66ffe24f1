package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// NonceSize is the AES-GCM nonce length in bytes.
const NonceSize = 12

var (
	// ErrEncrypt is returned when a secret cannot be encrypted.
	ErrEncrypt = errors.New("加密失败")
	// ErrDecrypt is returned when a secret cannot be decrypted, most often
	// because the device fingerprint changed since encryption.
	ErrDecrypt = errors.New("解密失败，可能是设备指纹已变化")
)

// Sealed is an encrypted secret ready for storage.
type Sealed struct {
	Ciphertext string // base64, includes the GCM tag
	IV         string // base64 nonce
}

// Service encrypts and decrypts secrets with AES-256-GCM. The key is
// derived from the fingerprint on every call and never kept.
type Service struct {
	source FingerprintSource
}

// NewService creates a crypto service bound to a fingerprint source.
func NewService(source FingerprintSource) *Service {
	return &Service{source: source}
}

// DeriveKey hashes a fingerprint into a 256-bit key.
func DeriveKey(fingerprint string) []byte {
	sum := sha256.Sum256([]byte(fingerprint))
	return sum[:]
}

func (s *Service) aead() (cipher.AEAD, error) {
	fingerprint, err := s.source.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("failed to read device fingerprint: %w", err)
	}
	block, err := aes.NewCipher(DeriveKey(fingerprint))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a fresh random nonce.
func (s *Service) Encrypt(plaintext string) (Sealed, error) {
	gcm, err := s.aead()
	if err != nil {
		log.Error().Err(err).Msg("Encryption setup failed")
		return Sealed{}, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		log.Error().Err(err).Msg("Nonce generation failed")
		return Sealed{}, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return Sealed{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

// Decrypt opens a sealed secret with the key of the current fingerprint.
func (s *Service) Decrypt(ciphertext, iv string) (string, error) {
	gcm, err := s.aead()
	if err != nil {
		log.Error().Err(err).Msg("Decryption setup failed")
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext encoding: %v", ErrDecrypt, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("%w: invalid iv encoding: %v", ErrDecrypt, err)
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrDecrypt, gcm.NonceSize(), len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		log.Warn().Msg("Decryption failed, device fingerprint may have changed")
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
