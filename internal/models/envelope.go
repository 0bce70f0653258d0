package models

// Delivery scopes. Routing is transport policy, decided by the hub.
const (
	ScopeBroadcast = "broadcast" // all connected sessions
	ScopeSender    = "sender"    // only the originating session
)

// Envelope bundles a message with its signature and the reference to the
// signer's public key. The signature covers the Message fields only, so
// transport metadata (ID, Scope) can be assigned after sealing.
type Envelope struct {
	Message
	KeyID     string `json:"key_id"`          // participant UUID or local key ref
	Signature string `json:"sig"`             // base64 (std alphabet, padded)
	ID        string `json:"id,omitempty"`    // ULID, assigned at ingest
	Scope     string `json:"scope,omitempty"` // delivery hint for the hub
}
