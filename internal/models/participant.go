package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a registered chat identity (human or responder).
type Participant struct {
	ID        uuid.UUID `json:"id"`
	PublicKey string    `json:"public_key"` // PEM (PKIX)
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
