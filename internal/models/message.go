package models

// Message kinds.
const (
	KindUser = "user"
	KindBot  = "bot"
)

// Message is the logical chat payload covered by a signature.
// Immutable once created; any change invalidates the signature.
type Message struct {
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	Kind      string `json:"kind,omitempty"` // "user" or "bot"
	Timestamp int64  `json:"ts"`             // Unix ms
}
