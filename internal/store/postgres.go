package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"

	"github.com/parley-protocol/parley/internal/metrics"
	"github.com/parley-protocol/parley/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// RunMigrations creates the participants schema if it does not exist.
func RunMigrations(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			public_key TEXT UNIQUE NOT NULL,
			name TEXT DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_participants_public_key ON participants(public_key);
	`)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateParticipant creates a new participant record.
func (s *PostgresStore) CreateParticipant(ctx context.Context, publicKey, name string) (*models.Participant, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO participants (public_key, name)
		VALUES ($1, $2)
		RETURNING id, public_key, name, created_at, updated_at
	`, publicKey, name).Scan(
		&p.ID,
		&p.PublicKey,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetParticipantByID retrieves a participant by ID.
func (s *PostgresStore) GetParticipantByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, public_key, name, created_at, updated_at
		FROM participants WHERE id = $1
	`, id).Scan(
		&p.ID,
		&p.PublicKey,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetParticipantByPublicKey retrieves a participant by public key.
func (s *PostgresStore) GetParticipantByPublicKey(ctx context.Context, publicKey string) (*models.Participant, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, public_key, name, created_at, updated_at
		FROM participants WHERE public_key = $1
	`, publicKey).Scan(
		&p.ID,
		&p.PublicKey,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// CountParticipants returns the number of registered participants.
func (s *PostgresStore) CountParticipants(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count)
	return count, err
}
