package crypto

import (
	"errors"
	"testing"
)

func TestPrivateKeyPEMRoundTrip(t *testing.T) {
	priv := testKey(t)

	pemBytes, err := EncodePrivateKeyPEM(priv)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodePrivateKeyPEM(pemBytes)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.N.Cmp(priv.N) != 0 || decoded.D.Cmp(priv.D) != 0 {
		t.Fatal("decoded private key differs from original")
	}
}

func TestPublicKeyPEMRoundTrip(t *testing.T) {
	priv := testKey(t)

	pemBytes, err := EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodePublicKeyPEM(pemBytes)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.N.Cmp(priv.N) != 0 || decoded.E != priv.E {
		t.Fatal("decoded public key differs from original")
	}
}

func TestDecodePublicKeyRejectsGarbage(t *testing.T) {
	_, err := DecodePublicKeyPEM([]byte("not a pem block"))
	if !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("expected ErrInvalidPublicKey, got %v", err)
	}
}

func TestDecodePrivateKeyRejectsPublicPEM(t *testing.T) {
	priv := testKey(t)

	pubPEM, err := EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecodePrivateKeyPEM(pubPEM); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Fatalf("expected ErrInvalidPrivateKey, got %v", err)
	}
}
