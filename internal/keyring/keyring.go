// Package keyring provides key resolution for signing and verification.
// Private keys are loaded once, held immutably, and never serialized;
// rotation swaps the whole identity atomically.
package keyring

import (
	"context"
	"crypto/rsa"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrUnknownKey = errors.New("unknown key reference")
	ErrNoIdentity = errors.New("no signing identity configured")
)

// Source resolves a key reference to a public key.
type Source interface {
	PublicKey(ctx context.Context, ref string) (*rsa.PublicKey, error)
}

// Provider is the full key capability: a signing identity plus lookup of
// other participants' public keys.
type Provider interface {
	Source
	Identity() (string, *rsa.PrivateKey, error)
}

type identity struct {
	id  string
	key *rsa.PrivateKey
}

// Ring is an in-memory Provider. Public keys are registered explicitly; the
// signing identity, if any, is set once and replaced whole on rotation.
type Ring struct {
	self atomic.Pointer[identity]

	mu     sync.RWMutex
	public map[string]*rsa.PublicKey
}

// NewRing creates an empty ring.
func NewRing() *Ring {
	return &Ring{public: make(map[string]*rsa.PublicKey)}
}

// SetIdentity installs the signing identity and registers its public half
// under the same reference. Safe to call concurrently with readers: the
// identity is swapped as one value, never mutated in place.
func (r *Ring) SetIdentity(id string, priv *rsa.PrivateKey) {
	r.self.Store(&identity{id: id, key: priv})
	r.AddPublicKey(id, &priv.PublicKey)
}

// Identity returns the signing identity, or ErrNoIdentity when the ring is
// verification-only.
func (r *Ring) Identity() (string, *rsa.PrivateKey, error) {
	self := r.self.Load()
	if self == nil {
		return "", nil, ErrNoIdentity
	}
	return self.id, self.key, nil
}

// AddPublicKey registers a public key under a reference.
func (r *Ring) AddPublicKey(ref string, pub *rsa.PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.public[ref] = pub
}

// PublicKey resolves a reference registered with AddPublicKey.
func (r *Ring) PublicKey(_ context.Context, ref string) (*rsa.PublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pub, ok := r.public[ref]
	if !ok {
		return nil, ErrUnknownKey
	}
	return pub, nil
}
