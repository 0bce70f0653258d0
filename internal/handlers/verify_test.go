package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/envelope"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/verify"
)

func verifyTestHandler(t *testing.T) (*Handler, *models.Envelope) {
	t.Helper()

	priv, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	ring := keyring.NewRing()
	ring.SetIdentity("alice-key", priv)

	msg := models.Message{Sender: "alice", Body: "hi", Kind: models.KindUser, Timestamp: 1000}
	env, err := envelope.Seal(msg, "alice-key", priv)
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(nil, nil, verify.NewService(ring), ring, nil, nil)
	return h, env
}

func postVerify(t *testing.T, h *Handler, req VerifyRequest) (*httptest.ResponseRecorder, verify.Result) {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.VerifyMessage(w, r)

	var result verify.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("response was not JSON: %v", err)
	}
	return w, result
}

func TestVerifyMessageValid(t *testing.T) {
	h, env := verifyTestHandler(t)

	w, result := postVerify(t, h, VerifyRequest{
		Sender:    env.Sender,
		Body:      env.Body,
		Kind:      env.Kind,
		Timestamp: env.Timestamp,
		Signature: env.Signature,
		KeyID:     env.KeyID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if result.Verdict != verify.VerdictValid {
		t.Fatalf("expected valid, got %s (%s)", result.Verdict, result.Reason)
	}
}

func TestVerifyMessageTamperedStillOK(t *testing.T) {
	h, env := verifyTestHandler(t)

	// A failed signature is a normal answer, not a client error.
	w, result := postVerify(t, h, VerifyRequest{
		Sender:    env.Sender,
		Body:      "something else",
		Kind:      env.Kind,
		Timestamp: env.Timestamp,
		Signature: env.Signature,
		KeyID:     env.KeyID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if result.Verdict != verify.VerdictInvalid {
		t.Fatalf("expected invalid, got %s", result.Verdict)
	}
}

func TestVerifyMessageMalformedIsBadRequest(t *testing.T) {
	h, env := verifyTestHandler(t)

	w, result := postVerify(t, h, VerifyRequest{
		Sender:    env.Sender,
		Body:      env.Body,
		Timestamp: env.Timestamp,
		Signature: "not-base64!!",
		KeyID:     env.KeyID,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if result.Verdict != verify.VerdictMalformed {
		t.Fatalf("expected malformed, got %s", result.Verdict)
	}
	if result.Reason == "" {
		t.Fatal("malformed verdict must carry a reason")
	}
}

func TestVerifyMessageRejectsBadJSON(t *testing.T) {
	h, _ := verifyTestHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.VerifyMessage(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
