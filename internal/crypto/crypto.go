// Package crypto seals and opens the data file.
//
// A sealed file is a 24 byte random nonce followed by the XChaCha20-Poly1305
// ciphertext and its 16 byte tag.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the width every password is truncated or zero-padded to.
const KeySize = chacha20poly1305.KeySize

var (
	ErrEncryption = errors.New("could not encrypt data")
	ErrDecryption = errors.New("cannot decrypt data with provided password")
)

type Key [KeySize]byte

// DeriveKey copies the password bytes into a key, truncating after KeySize
// bytes and zero-padding shorter passwords.
//
// This is not a password hash. Existing files were sealed with exactly this
// key, so it has to stay as is until the file format is versioned.
func DeriveKey(password string) *Key {
	var k Key
	copy(k[:], password)
	return &k
}

// PasswordKey is DeriveKey for a non-empty password. An empty password means
// the file is stored unencrypted, reported as a nil key.
func PasswordKey(password string) *Key {
	if password == "" {
		return nil
	}
	return DeriveKey(password)
}

// Seal encrypts plaintext under key.
func Seal(key *Key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryption, err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrEncryption, err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a sealed file. Any failure, including a
// wrong key, is reported as ErrDecryption.
func Open(key *Key, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}
