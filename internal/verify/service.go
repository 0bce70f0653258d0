// Package verify exposes the verification verdict contract consumed by the
// HTTP boundary and the message ingest path.
package verify

import (
	"context"
	"errors"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/wire"
)

// Verdict is the tri-state outcome of a verification attempt. Malformed
// means the input could not be checked at all and is never collapsed into
// Invalid: a caller must be able to tell a bad request from a bad signature.
type Verdict string

const (
	VerdictValid     Verdict = "valid"
	VerdictInvalid   Verdict = "invalid"
	VerdictMalformed Verdict = "malformed"
)

// Result is a verification verdict plus, for malformed input, the failure
// category.
type Result struct {
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason,omitempty"`
}

// Service checks message signatures against a key source. It is stateless
// and safe for concurrent use; each call is independent.
type Service struct {
	keys keyring.Source
}

// NewService creates a verification service over the given key source.
func NewService(keys keyring.Source) *Service {
	return &Service{keys: keys}
}

// Verify checks signatureB64 over the canonical encoding of msg against the
// public key named by keyRef. It never fails outright: every outcome is a
// Result.
func (s *Service) Verify(ctx context.Context, msg models.Message, signatureB64, keyRef string) Result {
	if msg.Sender == "" {
		return malformed("empty sender")
	}
	if msg.Body == "" {
		return malformed("empty message body")
	}
	if signatureB64 == "" {
		return malformed("empty signature")
	}
	if keyRef == "" {
		return malformed("empty key reference")
	}

	data, err := wire.Encode(msg)
	if err != nil {
		return malformed("invalid message encoding")
	}

	sig, err := crypto.DecodeSignature(signatureB64)
	if err != nil {
		return malformed("invalid signature encoding")
	}

	pub, err := s.keys.PublicKey(ctx, keyRef)
	if err != nil {
		if errors.Is(err, keyring.ErrUnknownKey) {
			return malformed("unknown key reference")
		}
		return malformed("invalid public key")
	}

	switch err := crypto.Verify(data, sig, pub); {
	case err == nil:
		return Result{Verdict: VerdictValid}
	case errors.Is(err, crypto.ErrInvalidSignature):
		return Result{Verdict: VerdictInvalid}
	case errors.Is(err, crypto.ErrMalformedSignature):
		return malformed("invalid signature length")
	default:
		return malformed("invalid public key")
	}
}

// VerifyEnvelope checks a sealed envelope through the same verdict contract.
func (s *Service) VerifyEnvelope(ctx context.Context, env *models.Envelope) Result {
	return s.Verify(ctx, env.Message, env.Signature, env.KeyID)
}

func malformed(reason string) Result {
	return Result{Verdict: VerdictMalformed, Reason: reason}
}
