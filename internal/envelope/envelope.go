// Package envelope seals messages into signed envelopes and opens them
// again. Sealing is encode, sign, bundle; opening is re-encode, look up the
// referenced key, verify. Authenticity is returned as data, not an error.
package envelope

import (
	"context"
	"crypto/rsa"
	"errors"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/wire"
)

// Seal signs msg with priv and bundles the result with keyID, the reference
// verifiers will use to find the matching public key.
func Seal(msg models.Message, keyID string, priv *rsa.PrivateKey) (*models.Envelope, error) {
	data, err := wire.Encode(msg)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(data, priv)
	if err != nil {
		return nil, err
	}

	return &models.Envelope{
		Message:   msg,
		KeyID:     keyID,
		Signature: crypto.EncodeSignature(sig),
	}, nil
}

// Open re-encodes the envelope's message and checks its signature against
// the key named by the envelope. A signature that simply does not match
// returns (msg, false, nil); errors are reserved for structural failures
// such as an undecodable signature or an unresolvable key reference.
func Open(ctx context.Context, env *models.Envelope, keys keyring.Source) (models.Message, bool, error) {
	data, err := wire.Encode(env.Message)
	if err != nil {
		return env.Message, false, err
	}

	sig, err := crypto.DecodeSignature(env.Signature)
	if err != nil {
		return env.Message, false, err
	}

	pub, err := keys.PublicKey(ctx, env.KeyID)
	if err != nil {
		return env.Message, false, err
	}

	if err := crypto.Verify(data, sig, pub); err != nil {
		if errors.Is(err, crypto.ErrInvalidSignature) {
			return env.Message, false, nil
		}
		return env.Message, false, err
	}

	return env.Message, true, nil
}
