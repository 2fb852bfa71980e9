// Package sealbox seals small local secrets (the token file) with a passphrase.
package sealbox

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Params
const (
	KeyLen  = 32
	SaltLen = 16

	argonTime    uint32 = 2
	argonMemory  uint32 = 19 * 1024
	argonThreads uint8  = 1
)

// ErrEmptyPassphrase is returned by New for an empty passphrase.
var ErrEmptyPassphrase = errors.New("sealbox: empty passphrase")

// Box seals and opens blobs with a key derived from a passphrase.
type Box struct {
	passphrase []byte
}

// New returns a Box for passphrase.
func New(passphrase string) (*Box, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &Box{passphrase: []byte(passphrase)}, nil
}

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives the sealing key from passphrase and salt using Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// Seal encrypts plain with XChaCha20-Poly1305. Layout: salt || nonce || ciphertext.
func (b *Box) Seal(plain []byte) ([]byte, error) {
	salt, err := Rand(SaltLen)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(DeriveKey(b.passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, SaltLen+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plain, salt)...)
	return out, nil
}

// Open decrypts a blob produced by Seal.
func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < SaltLen+chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed blob too short")
	}
	salt := sealed[:SaltLen]
	nonce := sealed[SaltLen : SaltLen+chacha20poly1305.NonceSizeX]
	ct := sealed[SaltLen+chacha20poly1305.NonceSizeX:]
	aead, err := chacha20poly1305.NewX(DeriveKey(b.passphrase, salt))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ct, salt)
}
