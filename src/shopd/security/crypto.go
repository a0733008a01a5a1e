// Package security encrypts provider credentials before they are written to
// the settings table.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/megaskyshop/storefront/src/common/paths"
	"golang.org/x/crypto/hkdf"
)

const (
	// encryptedPrefix marks encrypted values in the database
	encryptedPrefix = "enc:v1:"
	// masterKeySize is the size of the master key file in bytes
	masterKeySize = 32
	// keyInfo binds derived keys to their use
	keyInfo = "shopd settings encryption v1"
)

// SecretManager encrypts and decrypts sensitive settings with AES-256-GCM.
// The cipher key is derived from a master key with HKDF-SHA256, so the
// master key file is never used directly.
type SecretManager struct {
	aead cipher.AEAD
}

// NewSecretManager loads the master key from keyPath, generating and saving
// a new one when the file is missing or malformed
func NewSecretManager(keyPath string) (*SecretManager, error) {
	keyPath = paths.Expand(keyPath)

	key, err := os.ReadFile(keyPath)
	if err == nil && len(key) == masterKeySize {
		return NewSecretManagerFromKey(key)
	}

	key = make([]byte, masterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write master key: %w", err)
	}

	return NewSecretManagerFromKey(key)
}

// NewSecretManagerFromKey derives the cipher key from master
func NewSecretManagerFromKey(master []byte) (*SecretManager, error) {
	if len(master) < 16 {
		return nil, fmt.Errorf("master key too short: %d bytes", len(master))
	}

	derived := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(keyInfo)), derived); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &SecretManager{aead: gcm}, nil
}

// Encrypt returns "enc:v1:" followed by the base64 nonce and ciphertext.
// The empty string stays empty.
func (sm *SecretManager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, sm.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := sm.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Values without the prefix are plaintext and are
// returned unchanged.
func (sm *SecretManager) Decrypt(value string) (string, error) {
	if !sm.IsEncrypted(value) {
		return value, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	nonceSize := sm.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := sm.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the encryption prefix
func (sm *SecretManager) IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encryptedPrefix)
}
