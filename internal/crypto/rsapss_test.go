package crypto

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
)

var (
	testKeyOnce sync.Once
	testKeyPriv *rsa.PrivateKey
)

// testKey returns a shared keypair; generation is slow enough to amortize.
func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		priv, err := GenerateKeyPair()
		if err != nil {
			panic(err)
		}
		testKeyPriv = priv
	})
	return testKeyPriv
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := testKey(t)
	data := []byte("canonical message bytes")

	sig, err := Sign(data, priv)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(data, sig, &priv.PublicKey); err != nil {
		t.Fatalf("round-trip verification failed: %v", err)
	}
}

func TestSignaturesDifferButBothVerify(t *testing.T) {
	priv := testKey(t)
	data := []byte("same bytes")

	sig1, err := Sign(data, priv)
	if err != nil {
		t.Fatal(err)
	}
	sig2, err := Sign(data, priv)
	if err != nil {
		t.Fatal(err)
	}

	// PSS draws a fresh random salt per call.
	if bytes.Equal(sig1, sig2) {
		t.Fatal("two PSS signatures over the same bytes were byte-identical")
	}
	if err := Verify(data, sig1, &priv.PublicKey); err != nil {
		t.Fatal(err)
	}
	if err := Verify(data, sig2, &priv.PublicKey); err != nil {
		t.Fatal(err)
	}
}

func TestTamperedDataFails(t *testing.T) {
	priv := testKey(t)
	data := []byte("original bytes")

	sig, err := Sign(data, priv)
	if err != nil {
		t.Fatal(err)
	}

	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0x01

	err = Verify(tampered, sig, &priv.PublicKey)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestWrongKeyFails(t *testing.T) {
	priv := testKey(t)
	data := []byte("some bytes")

	sig, err := Sign(data, priv)
	if err != nil {
		t.Fatal(err)
	}

	other, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	err = Verify(data, sig, &other.PublicKey)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestWrongLengthSignatureIsMalformed(t *testing.T) {
	priv := testKey(t)

	err := Verify([]byte("data"), []byte("too short"), &priv.PublicKey)
	if !errors.Is(err, ErrMalformedSignature) {
		t.Fatalf("expected ErrMalformedSignature, got %v", err)
	}
}

func TestNilKeys(t *testing.T) {
	if _, err := Sign([]byte("data"), nil); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Fatalf("expected ErrInvalidPrivateKey, got %v", err)
	}
	if err := Verify([]byte("data"), []byte("sig"), nil); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("expected ErrInvalidPublicKey, got %v", err)
	}
}

func TestSignatureBase64RoundTrip(t *testing.T) {
	priv := testKey(t)

	sig, err := Sign([]byte("data"), priv)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeSignature(EncodeSignature(sig))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sig, decoded) {
		t.Fatal("base64 round trip changed signature bytes")
	}
}

func TestDecodeSignatureRejectsBadBase64(t *testing.T) {
	_, err := DecodeSignature("not-base64!!")
	if !errors.Is(err, ErrMalformedSignature) {
		t.Fatalf("expected ErrMalformedSignature, got %v", err)
	}
}
