package keyring

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/google/uuid"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/store"
)

// Directory resolves public keys through the participant directory,
// consulting the local ring first for process-owned identities.
type Directory struct {
	local *Ring
	db    store.DataStore
}

// NewDirectory creates a Directory backed by the given ring and store.
func NewDirectory(local *Ring, db store.DataStore) *Directory {
	return &Directory{local: local, db: db}
}

// Identity returns the local signing identity.
func (d *Directory) Identity() (string, *rsa.PrivateKey, error) {
	return d.local.Identity()
}

// PublicKey resolves a key reference: local ring first, then the directory
// store by participant UUID. A reference found in neither yields ErrUnknownKey.
func (d *Directory) PublicKey(ctx context.Context, ref string) (*rsa.PublicKey, error) {
	if pub, err := d.local.PublicKey(ctx, ref); err == nil {
		return pub, nil
	}

	if d.db == nil {
		return nil, ErrUnknownKey
	}

	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, ref)
	}

	participant, err := d.db.GetParticipantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	if participant == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, ref)
	}

	return crypto.DecodePublicKeyPEM([]byte(participant.PublicKey))
}
