package security

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) (*SecretManager, string) {
	t.Helper()
	keyPath := filepath.Join(t.TempDir(), "keys", "master.key")
	sm, err := NewSecretManager(keyPath)
	if err != nil {
		t.Fatalf("NewSecretManager failed: %v", err)
	}
	return sm, keyPath
}

func TestEncryptDecrypt(t *testing.T) {
	sm, _ := newTestManager(t)

	plaintext := "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY"
	encrypted, err := sm.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !sm.IsEncrypted(encrypted) {
		t.Fatal("encrypted value should have encryption prefix")
	}
	if encrypted == plaintext {
		t.Fatal("encrypted value should differ from plaintext")
	}

	again, _ := sm.Encrypt(plaintext)
	if again == encrypted {
		t.Fatal("each encryption should use a fresh nonce")
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("decrypted value = %q, want %q", decrypted, plaintext)
	}
}

func TestEncrypt_EmptyString(t *testing.T) {
	sm, _ := newTestManager(t)

	encrypted, err := sm.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt empty string failed: %v", err)
	}
	if encrypted != "" {
		t.Fatalf("encrypting empty string should return empty, got %q", encrypted)
	}
}

func TestDecrypt_PlaintextPassthrough(t *testing.T) {
	sm, _ := newTestManager(t)

	result, err := sm.Decrypt("vercel_blob_rw_plain")
	if err != nil {
		t.Fatalf("Decrypt plaintext failed: %v", err)
	}
	if result != "vercel_blob_rw_plain" {
		t.Fatalf("plaintext passthrough: got %q", result)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	sm1, _ := newTestManager(t)
	sm2, _ := newTestManager(t)

	encrypted, err := sm1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := sm2.Decrypt(encrypted); err == nil {
		t.Fatal("decrypting with another key should fail")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	sm, _ := newTestManager(t)

	if _, err := sm.Decrypt(encryptedPrefix + "!!!not-base64"); err == nil {
		t.Fatal("invalid base64 should fail")
	}
	if _, err := sm.Decrypt(encryptedPrefix + "AAAA"); err == nil {
		t.Fatal("short ciphertext should fail")
	}
}

func TestNewSecretManager_ReusesKeyFile(t *testing.T) {
	sm1, keyPath := newTestManager(t)

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("key file should exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("key file mode = %v, want 0600", info.Mode().Perm())
	}
	key1, _ := os.ReadFile(keyPath)

	sm2, err := NewSecretManager(keyPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	key2, _ := os.ReadFile(keyPath)
	if !bytes.Equal(key1, key2) {
		t.Fatal("existing key file should not be replaced")
	}

	encrypted, _ := sm1.Encrypt("token")
	decrypted, err := sm2.Decrypt(encrypted)
	if err != nil || decrypted != "token" {
		t.Fatalf("managers sharing a key file should interoperate: %q, %v", decrypted, err)
	}
}

func TestNewSecretManagerFromKey_TooShort(t *testing.T) {
	if _, err := NewSecretManagerFromKey([]byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}
