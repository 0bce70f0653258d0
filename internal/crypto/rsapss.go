// Package crypto implements the RSA-PSS signature primitives used for
// message authentication. The parameters (SHA-256 digest and MGF1 hash,
// salt length equal to the digest length, 2048-bit modulus) are fixed
// process-wide; changing any of them is a protocol break and invalidates
// every previously produced signature.
package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
)

const (
	// KeyBits is the RSA modulus size for all keypairs.
	KeyBits = 2048

	// SaltLength is the PSS salt length in bytes, equal to the digest length.
	SaltLength = sha256.Size
)

var (
	ErrInvalidPrivateKey  = errors.New("invalid RSA private key")
	ErrInvalidPublicKey   = errors.New("invalid RSA public key")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrMalformedSignature = errors.New("malformed signature")
)

var pssOptions = &rsa.PSSOptions{
	SaltLength: SaltLength,
	Hash:       crypto.SHA256,
}

// Sign computes an RSA-PSS signature over data. A fresh random salt is drawn
// per call, so two signatures over identical bytes are not byte-identical,
// but both verify.
func Sign(data []byte, priv *rsa.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, ErrInvalidPrivateKey
	}
	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if priv.Size() != KeyBits/8 {
		return nil, fmt.Errorf("%w: modulus must be %d bits", ErrInvalidPrivateKey, KeyBits)
	}

	digest := sha256.Sum256(data)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return sig, nil
}

// Verify checks an RSA-PSS signature over data. It returns nil when the
// signature matches and ErrInvalidSignature when a well-formed signature does
// not; structural problems (nil key, wrong key size, wrong signature length)
// yield distinct errors so callers can tell malformed input apart from a
// failed verification.
func Verify(data, sig []byte, pub *rsa.PublicKey) error {
	if pub == nil {
		return ErrInvalidPublicKey
	}
	if pub.Size() != KeyBits/8 {
		return fmt.Errorf("%w: modulus must be %d bits", ErrInvalidPublicKey, KeyBits)
	}
	if len(sig) != pub.Size() {
		return fmt.Errorf("%w: %d bytes, want %d", ErrMalformedSignature, len(sig), pub.Size())
	}

	digest := sha256.Sum256(data)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, pssOptions); err != nil {
		return ErrInvalidSignature
	}
	return nil
}
