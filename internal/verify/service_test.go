package verify

import (
	"context"
	"crypto/rsa"
	"strings"
	"sync"
	"testing"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/envelope"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/models"
)

var (
	keyOnce sync.Once
	keyPriv *rsa.PrivateKey
)

func serviceTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		priv, err := crypto.GenerateKeyPair()
		if err != nil {
			panic(err)
		}
		keyPriv = priv
	})
	return keyPriv
}

func newTestService(t *testing.T, keyID string, priv *rsa.PrivateKey) *Service {
	t.Helper()
	ring := keyring.NewRing()
	ring.AddPublicKey(keyID, &priv.PublicKey)
	return NewService(ring)
}

func sealed(t *testing.T, msg models.Message, keyID string, priv *rsa.PrivateKey) *models.Envelope {
	t.Helper()
	env, err := envelope.Seal(msg, keyID, priv)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestValidSignature(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}
	env := sealed(t, msg, "a", priv)

	result := svc.Verify(context.Background(), msg, env.Signature, "a")
	if result.Verdict != VerdictValid {
		t.Fatalf("expected valid, got %s (%s)", result.Verdict, result.Reason)
	}
}

func TestTamperedBodyInvalid(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}
	env := sealed(t, msg, "a", priv)

	// Flip one character of the text; same signature must now fail.
	tampered := msg
	tampered.Body = "hj"

	result := svc.Verify(context.Background(), tampered, env.Signature, "a")
	if result.Verdict != VerdictInvalid {
		t.Fatalf("expected invalid, got %s (%s)", result.Verdict, result.Reason)
	}
	if result.Reason != "" {
		t.Fatalf("invalid verdict should carry no reason, got %q", result.Reason)
	}
}

func TestWrongKeyInvalid(t *testing.T) {
	priv := serviceTestKey(t)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}
	env := sealed(t, msg, "a", priv)

	other, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	svc := newTestService(t, "a", other)

	result := svc.Verify(context.Background(), msg, env.Signature, "a")
	if result.Verdict != VerdictInvalid {
		t.Fatalf("expected invalid, got %s (%s)", result.Verdict, result.Reason)
	}
}

func TestBadBase64IsMalformedNotInvalid(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}

	result := svc.Verify(context.Background(), msg, "not-base64!!", "a")
	if result.Verdict != VerdictMalformed {
		t.Fatalf("expected malformed, got %s", result.Verdict)
	}
	if result.Reason != "invalid signature encoding" {
		t.Fatalf("expected reason %q, got %q", "invalid signature encoding", result.Reason)
	}
}

func TestUnknownKeyReferenceMalformed(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}
	env := sealed(t, msg, "a", priv)

	result := svc.Verify(context.Background(), msg, env.Signature, "nobody")
	if result.Verdict != VerdictMalformed {
		t.Fatalf("expected malformed, got %s", result.Verdict)
	}
	if result.Reason != "unknown key reference" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEmptyFieldsMalformed(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)

	cases := []struct {
		name string
		msg  models.Message
		sig  string
		ref  string
	}{
		{"empty sender", models.Message{Body: "hi"}, "c2ln", "a"},
		{"empty body", models.Message{Sender: "alice"}, "c2ln", "a"},
		{"empty signature", models.Message{Sender: "alice", Body: "hi"}, "", "a"},
		{"empty key ref", models.Message{Sender: "alice", Body: "hi"}, "c2ln", ""},
	}

	for _, tc := range cases {
		result := svc.Verify(context.Background(), tc.msg, tc.sig, tc.ref)
		if result.Verdict != VerdictMalformed {
			t.Fatalf("%s: expected malformed, got %s", tc.name, result.Verdict)
		}
		if result.Reason == "" {
			t.Fatalf("%s: malformed verdict must name the failure", tc.name)
		}
	}
}

func TestUnencodableMessageMalformed(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: strings.Repeat("x", 64*1024+1), Timestamp: 1000}

	result := svc.Verify(context.Background(), msg, "c2ln", "a")
	if result.Verdict != VerdictMalformed {
		t.Fatalf("expected malformed, got %s", result.Verdict)
	}
}

func TestWrongLengthSignatureMalformed(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}

	// "c2ln" decodes fine but is far too short for a 2048-bit key.
	result := svc.Verify(context.Background(), msg, "c2ln", "a")
	if result.Verdict != VerdictMalformed {
		t.Fatalf("expected malformed, got %s", result.Verdict)
	}
	if result.Reason != "invalid signature length" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestVerifyEnvelopeScenario(t *testing.T) {
	priv := serviceTestKey(t)
	svc := newTestService(t, "a", priv)
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: 1000}
	env := sealed(t, msg, "a", priv)

	if r := svc.VerifyEnvelope(context.Background(), env); r.Verdict != VerdictValid {
		t.Fatalf("expected valid, got %s", r.Verdict)
	}

	env.Body = "hI"
	if r := svc.VerifyEnvelope(context.Background(), env); r.Verdict != VerdictInvalid {
		t.Fatalf("expected invalid after tampering, got %s", r.Verdict)
	}
}
