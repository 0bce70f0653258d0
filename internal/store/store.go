package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/parley-protocol/parley/internal/models"
)

// DataStore is the participant directory: registered identities and their
// public keys. Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Participant operations
	CreateParticipant(ctx context.Context, publicKey, name string) (*models.Participant, error)
	GetParticipantByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	GetParticipantByPublicKey(ctx context.Context, publicKey string) (*models.Participant, error)
	CountParticipants(ctx context.Context) (int64, error)
}
