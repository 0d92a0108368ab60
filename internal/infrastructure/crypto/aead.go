// Package crypto seals payment receipts at rest with AES-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

var ErrShortCiphertext = errors.New("ciphertext too short")

// Sealer encrypts blobs as nonce||ciphertext.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(sealed, aad []byte) ([]byte, error)
}

type AEAD struct{ aead cipher.AEAD }

// New takes a 16, 24 or 32 byte AES key.
func New(key []byte) (*AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("receipt key: %w", err)
	}
	a, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AEAD{aead: a}, nil
}

func (a *AEAD) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plaintext)+a.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return a.aead.Seal(nonce, nonce, plaintext, aad), nil
}

func (a *AEAD) Open(sealed, aad []byte) ([]byte, error) {
	ns := a.aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrShortCiphertext
	}
	return a.aead.Open(nil, sealed[:ns], sealed[ns:], aad)
}
