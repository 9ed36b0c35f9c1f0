package export

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// EncryptionMagicHeader starts every encrypted backup.
	EncryptionMagicHeader = "EDHENC1\n"

	// Argon2id parameters (RFC 9106 second recommended option).
	defaultArgon2Time    = 1
	defaultArgon2Memory  = 64 * 1024 // KiB
	defaultArgon2Threads = 4
	argon2KeyLen         = 32 // AES-256

	saltLength = 32
)

// ErrEncrypted is returned by ReadBackup for an encrypted backup.
var ErrEncrypted = errors.New("backup is encrypted, a password is required")

// EncryptionConfig holds the password and key derivation cost.
type EncryptionConfig struct {
	Password string

	Argon2Time    uint32
	Argon2Memory  uint32 // KiB
	Argon2Threads uint8
}

// DefaultEncryptionConfig returns encryption settings for password.
func DefaultEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password:      password,
		Argon2Time:    defaultArgon2Time,
		Argon2Memory:  defaultArgon2Memory,
		Argon2Threads: defaultArgon2Threads,
	}
}

func (c *EncryptionConfig) deriveKey(salt []byte) []byte {
	return argon2.IDKey([]byte(c.Password), salt, c.Argon2Time, c.Argon2Memory, c.Argon2Threads, argon2KeyLen)
}

func (c *EncryptionConfig) gcm(salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// EncryptData seals plaintext with AES-256-GCM under an Argon2id key.
// The result is salt || nonce || ciphertext.
func EncryptData(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, fmt.Errorf("encryption config with password required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := config.gcm(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	result := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	result = append(result, salt...)
	result = append(result, nonce...)
	return gcm.Seal(result, nonce, plaintext, nil), nil
}

// DecryptData opens data sealed by EncryptData.
func DecryptData(encrypted []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, fmt.Errorf("encryption config with password required")
	}
	if len(encrypted) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}

	salt, rest := encrypted[:saltLength], encrypted[saltLength:]
	gcm, err := config.gcm(salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}

	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted data): %w", err)
	}
	return plaintext, nil
}

// WriteEncryptedBackup writes b like WriteBackup, then encrypts the result.
func WriteEncryptedBackup(w io.Writer, b *Backup, compress bool, config *EncryptionConfig) error {
	var plain bytes.Buffer
	if err := WriteBackup(&plain, b, compress); err != nil {
		return err
	}

	sealed, err := EncryptData(plain.Bytes(), config)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, EncryptionMagicHeader); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ReadEncryptedBackup decodes a backup written by WriteEncryptedBackup. Backups
// without the encryption header are read as plain backups.
func ReadEncryptedBackup(r io.Reader, config *EncryptionConfig) (*Backup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	if !bytes.HasPrefix(data, []byte(EncryptionMagicHeader)) {
		return ReadBackup(bytes.NewReader(data))
	}

	if config == nil || config.Password == "" {
		return nil, ErrEncrypted
	}
	plain, err := DecryptData(data[len(EncryptionMagicHeader):], config)
	if err != nil {
		return nil, err
	}
	return ReadBackup(bytes.NewReader(plain))
}
